package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	input_root  TEXT NOT NULL,
	output_root TEXT NOT NULL,
	ocr_mode    TEXT NOT NULL,
	dpi         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS file_outcomes (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	input_path   TEXT NOT NULL,
	output_txt   TEXT NOT NULL,
	pages        INTEGER NOT NULL,
	ocr_pages    INTEGER NOT NULL,
	text_chars   INTEGER NOT NULL,
	ocr_chars    INTEGER NOT NULL,
	duration_sec REAL NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_file_outcomes_run ON file_outcomes(run_id);
`

// Store keeps run history in a single-file SQLite database next to the
// extraction output. It is supplementary: resume decisions key off the
// output files, never off this store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// RunMeta describes one extraction run.
type RunMeta struct {
	InputRoot  string
	OutputRoot string
	OCRMode    string
	DPI        int
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init run store schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a new run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, meta RunMeta) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_root, output_root, ocr_mode, dpi) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), time.Now().UTC().Format(time.RFC3339), meta.InputRoot, meta.OutputRoot, meta.OCRMode, meta.DPI)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	s.logger.Info("runlog.run.started", "run_id", id.String(), "input", meta.InputRoot)
	return id, nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), runID.String())
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordOutcome stores one file outcome under the run.
func (s *Store) RecordOutcome(ctx context.Context, runID uuid.UUID, row Row) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_outcomes
		 (run_id, input_path, output_txt, pages, ocr_pages, text_chars, ocr_chars, duration_sec, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID.String(), row.InputPath, row.OutputTxt, row.Pages, row.OCRPages,
		row.TextChars, row.OCRChars, row.DurationSec, string(row.Status), row.Error,
		row.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// RunStats summarizes a run's outcomes by status.
func (s *Store) RunStats(ctx context.Context, runID uuid.UUID) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM file_outcomes WHERE run_id = ? GROUP BY status`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[status] = n
	}
	return stats, rows.Err()
}
