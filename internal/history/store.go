// Package history persists batch outcomes to an embedded SQLite database
// so past runs can be inspected from the CLI. It is bookkeeping only: the
// engine never reads from it and a broken store never blocks a batch.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/odexlab/deodexer/pkg/deodex"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id              TEXT PRIMARY KEY,
	started_at      TIMESTAMP NOT NULL,
	total_files     INTEGER NOT NULL,
	succeeded       INTEGER NOT NULL,
	failed          INTEGER NOT NULL,
	success_rate    REAL NOT NULL,
	duration_seconds REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS jobs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id         TEXT NOT NULL REFERENCES batches(id),
	file             TEXT NOT NULL,
	status           TEXT NOT NULL,
	output_path      TEXT,
	error            TEXT,
	duration_seconds REAL NOT NULL,
	size_bytes       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_batch ON jobs(batch_id);
`

// BatchRecord is one row of the batches table.
type BatchRecord struct {
	ID              string
	StartedAt       time.Time
	TotalFiles      int
	Succeeded       int
	Failed          int
	SuccessRate     float64
	DurationSeconds float64
}

// JobRecord is one row of the jobs table.
type JobRecord struct {
	BatchID         string
	File            string
	Status          string
	OutputPath      string
	Error           string
	DurationSeconds float64
	SizeBytes       int64
}

// Store wraps the SQLite connection.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates (or opens) the database at path and applies the schema.
// Parent directories are created as needed.
func Open(path string, loggerHandler slog.Handler) (*Store, error) {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: slog.New(loggerHandler).With(slog.String("component", "history")),
	}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// SaveBatch records a completed batch and its per-file jobs in a single
// transaction and returns the generated batch ID.
func (s *Store) SaveBatch(ctx context.Context, startedAt time.Time, report deodex.BatchReport, results []deodex.ConversionResult) (string, error) {
	batchID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, started_at, total_files, succeeded, failed, success_rate, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, startedAt.UTC(),
		report.Summary.TotalFiles, report.Summary.Succeeded, report.Summary.Failed,
		report.Summary.SuccessRate, report.Summary.TotalDuration,
	)
	if err != nil {
		return "", fmt.Errorf("insert batch row: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jobs (batch_id, file, status, output_path, error, duration_seconds, size_bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare job insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			batchID, r.SourcePath, string(r.Status), r.OutputPath, r.ErrorDetail,
			r.DurationSeconds, r.SizeBytes,
		); err != nil {
			return "", fmt.Errorf("insert job row for %q: %w", r.SourcePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history transaction: %w", err)
	}
	s.logger.Debug("Batch persisted", slog.String("batchID", batchID), slog.Int("jobs", len(results)))
	return batchID, nil
}

// RecentBatches returns up to limit batches, newest first.
func (s *Store) RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, total_files, succeeded, failed, success_rate, duration_seconds
		 FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		var b BatchRecord
		if err := rows.Scan(&b.ID, &b.StartedAt, &b.TotalFiles, &b.Succeeded, &b.Failed, &b.SuccessRate, &b.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// JobsForBatch returns all job rows of one batch in insertion order.
func (s *Store) JobsForBatch(ctx context.Context, batchID string) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, file, status, COALESCE(output_path, ''), COALESCE(error, ''), duration_seconds, size_bytes
		 FROM jobs WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRecord
	for rows.Next() {
		var j JobRecord
		if err := rows.Scan(&j.BatchID, &j.File, &j.Status, &j.OutputPath, &j.Error, &j.DurationSeconds, &j.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
