package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// Run is one recorded estimation run.
type Run struct {
	ID                   int64
	RunID                string
	CreatedAt            time.Time
	AverageSpeedKmPerSec float64
	SampleCount          int
	CorrectionFactor     float64
	Source               string // "exif" or "nmea"
}

// History is a SQLite-backed log of estimation runs.
type History struct {
	conn *sql.DB
}

// OpenHistory opens (and if needed creates) the history database at path.
func OpenHistory(path string) (*History, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	h := &History{conn: conn}
	if err := h.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return h, nil
}

// Close releases the underlying connection.
func (h *History) Close() error { return h.conn.Close() }

func (h *History) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		average_speed_km_per_sec REAL NOT NULL,
		sample_count INTEGER NOT NULL,
		correction_factor REAL NOT NULL,
		source TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	_, err := h.conn.Exec(schema)
	return err
}

// Record appends one run to the history.
func (h *History) Record(ctx context.Context, runID string, estimate model.SpeedEstimate, correction float64, source string) error {
	_, err := h.conn.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, average_speed_km_per_sec, sample_count, correction_factor, source)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), estimate.AverageSpeedKmPerSec, estimate.SampleCount, correction, source,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.conn.QueryContext(ctx, `
		SELECT id, run_id, created_at, average_speed_km_per_sec, sample_count, correction_factor, source
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.RunID, &r.CreatedAt, &r.AverageSpeedKmPerSec, &r.SampleCount, &r.CorrectionFactor, &r.Source); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
