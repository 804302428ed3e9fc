package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"impostor/internal/pipeline"
	"impostor/internal/storage"

	"github.com/gorilla/mux"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "impostor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", store, nil, log), store
}

func serve(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	s.setupRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := serve(t, s, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz returned %d %q", rec.Code, rec.Body.String())
	}
}

func TestBuildsEndpoint(t *testing.T) {
	s, store := newTestServer(t)

	err := store.RecordBuildQueued(storage.BuildRecord{
		ID:         "build-1",
		Status:     "queued",
		Inputs:     []string{"/in/a.png"},
		OutputPath: "/out/sheet.png",
	})
	if err != nil {
		t.Fatalf("seed build: %v", err)
	}

	rec := serve(t, s, http.MethodGet, "/builds")
	if rec.Code != http.StatusOK {
		t.Fatalf("builds returned %d: %s", rec.Code, rec.Body.String())
	}
	var recs []storage.BuildRecord
	if err := json.NewDecoder(rec.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "build-1" {
		t.Fatalf("unexpected builds payload: %+v", recs)
	}
}

func TestBuildMetaEndpoint(t *testing.T) {
	s, store := newTestServer(t)

	if err := store.RecordBuildQueued(storage.BuildRecord{ID: "build-2", Status: "queued"}); err != nil {
		t.Fatalf("seed build: %v", err)
	}
	meta := map[string]any{"crop_px": "84x40"}
	if err := store.RecordBuildResult("build-2", "completed", meta, ""); err != nil {
		t.Fatalf("seed result: %v", err)
	}

	rec := serve(t, s, http.MethodGet, "/builds/build-2/meta")
	if rec.Code != http.StatusOK {
		t.Fatalf("meta returned %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["crop_px"] != "84x40" {
		t.Fatalf("unexpected meta payload: %v", got)
	}

	if rec := serve(t, s, http.MethodGet, "/builds/no-such/meta"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown build meta returned %d", rec.Code)
	}
}

func TestResultView(t *testing.T) {
	res := pipeline.Result{
		Job:  pipeline.Job{ID: "build-3", Output: "/out/sheet.png"},
		Meta: map[string]any{"count": 3},
	}
	v := viewOf(res)
	if v.ID != "build-3" || v.Output != "/out/sheet.png" || v.Error != "" {
		t.Fatalf("unexpected view: %+v", v)
	}

	res.Error = errors.New("capture too small")
	if v := viewOf(res); v.Error != "capture too small" {
		t.Fatalf("error not flattened: %+v", v)
	}
}
