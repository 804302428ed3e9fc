package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps SQLite-backed persistence for builds and finished sheets.
type Store struct {
	DB *sql.DB
}

// New opens (or creates) the database at path and ensures schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS builds (
            id TEXT PRIMARY KEY,
            status TEXT NOT NULL,
            inputs_json TEXT,
            output_path TEXT,
            options_json TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            started_at TIMESTAMP,
            completed_at TIMESTAMP,
            error_message TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS build_results (
            build_id TEXT,
            meta_json TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS sheets (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            build_id TEXT,
            output_path TEXT NOT NULL,
            capture_count INTEGER,
            tile_width INTEGER,
            tile_height INTEGER,
            physical_width REAL,
            physical_height REAL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sheets_build_id ON sheets(build_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// BuildRecord captures persisted build info.
type BuildRecord struct {
	ID          string
	Status      string
	Inputs      []string
	OutputPath  string
	OptionsJSON string
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// SheetRecord captures one finished composite.
type SheetRecord struct {
	BuildID        string
	OutputPath     string
	CaptureCount   int
	TileWidth      int
	TileHeight     int
	PhysicalWidth  float64
	PhysicalHeight float64
}

// RecordBuildQueued inserts a pending build.
func (s *Store) RecordBuildQueued(rec BuildRecord) error {
	if s == nil {
		return nil
	}
	inputsJSON, _ := json.Marshal(rec.Inputs)
	_, err := s.DB.Exec(`INSERT OR REPLACE INTO builds (id, status, inputs_json, output_path, options_json) VALUES (?, ?, ?, ?, ?);`,
		rec.ID, rec.Status, string(inputsJSON), rec.OutputPath, rec.OptionsJSON)
	return err
}

// RecordBuildStart marks a build as running.
func (s *Store) RecordBuildStart(id string) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`UPDATE builds SET status='running', started_at=CURRENT_TIMESTAMP WHERE id=?;`, id)
	return err
}

// RecordBuildResult finalizes a build with status and meta.
func (s *Store) RecordBuildResult(id string, status string, meta map[string]any, errMsg string) error {
	if s == nil {
		return nil
	}
	metaJSON, _ := json.Marshal(meta)
	_, err := s.DB.Exec(`UPDATE builds SET status=?, completed_at=CURRENT_TIMESTAMP, error_message=? WHERE id=?;`, status, errMsg, id)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(`INSERT INTO build_results (build_id, meta_json) VALUES (?, ?);`, id, string(metaJSON))
	return err
}

// RecordSheet persists one finished composite.
func (s *Store) RecordSheet(rec SheetRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`INSERT INTO sheets (build_id, output_path, capture_count, tile_width, tile_height, physical_width, physical_height)
        VALUES (?, ?, ?, ?, ?, ?, ?);`,
		rec.BuildID, rec.OutputPath, rec.CaptureCount, rec.TileWidth, rec.TileHeight, rec.PhysicalWidth, rec.PhysicalHeight)
	return err
}

// RecentBuilds returns the latest builds up to limit.
func (s *Store) RecentBuilds(limit int) ([]BuildRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(`SELECT id, status, inputs_json, output_path, options_json, created_at, started_at, completed_at, error_message FROM builds ORDER BY created_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var inputsJSON string
		var created time.Time
		var started, completed sql.NullTime
		var errorMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Status, &inputsJSON, &rec.OutputPath, &rec.OptionsJSON, &created, &started, &completed, &errorMsg); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(inputsJSON), &rec.Inputs)
		rec.CreatedAt = created
		if started.Valid {
			rec.StartedAt = &started.Time
		}
		if completed.Valid {
			rec.CompletedAt = &completed.Time
		}
		if errorMsg.Valid {
			rec.Error = errorMsg.String
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// BuildMeta fetches the last meta blob for a build.
func (s *Store) BuildMeta(id string) (map[string]any, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	var metaJSON string
	err := s.DB.QueryRow(`SELECT meta_json FROM build_results WHERE build_id=? ORDER BY created_at DESC LIMIT 1;`, id).Scan(&metaJSON)
	if err != nil {
		return nil, err
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return meta, nil
}
