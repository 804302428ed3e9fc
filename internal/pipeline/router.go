package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"impostor/internal/sheet"
	"impostor/internal/storage"
)

// SheetBuilder is the build entry point the router dispatches to.
type SheetBuilder interface {
	Build(ctx context.Context, req sheet.BuildRequest) (sheet.BuildSummary, error)
}

// router implements Processor and routes jobs to their concrete handlers.
type router struct {
	log     *slog.Logger
	store   *storage.Store
	builder SheetBuilder
}

func newRouter(logger *slog.Logger, store *storage.Store, builder SheetBuilder) Processor {
	return &router{
		log:     logger,
		store:   store,
		builder: builder,
	}
}

func (r *router) Process(ctx context.Context, job Job) Result {
	switch job.Type {
	case JobBuild:
		return r.handleBuild(ctx, job)
	default:
		return Result{Job: job, Error: fmt.Errorf("unknown job type: %s", job.Type)}
	}
}

func (r *router) handleBuild(ctx context.Context, job Job) Result {
	req := sheet.BuildRequest{
		Files:      job.Files,
		Output:     job.Output,
		Frame:      sheet.FrameSize{Width: optFloat(job.Options, "frame_width"), Height: optFloat(job.Options, "frame_height")},
		TileWidth:  optInt(job.Options, "tile_width"),
		TileHeight: optInt(job.Options, "tile_height"),
		Faces:      optString(job.Options, "faces"),
		Form:       optString(job.Options, "form"),
	}

	summary, err := r.builder.Build(ctx, req)
	if err != nil {
		return Result{Job: job, Error: err}
	}

	if r.store != nil {
		_ = r.store.RecordSheet(storage.SheetRecord{
			BuildID:        job.ID,
			OutputPath:     summary.Output,
			CaptureCount:   summary.Count,
			TileWidth:      summary.TileWidth,
			TileHeight:     summary.TileHeight,
			PhysicalWidth:  summary.Physical.Width,
			PhysicalHeight: summary.Physical.Height,
		})
	}

	return Result{Job: job, Meta: summary.Meta()}
}

func optFloat(opts map[string]any, key string) float64 {
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func optInt(opts map[string]any, key string) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func optString(opts map[string]any, key string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return ""
}
