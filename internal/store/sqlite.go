package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS readings (
	date              TEXT NOT NULL,
	sensor_id         TEXT NOT NULL,
	timestamp         TEXT NOT NULL,
	reading_type      TEXT,
	value             REAL,
	battery_level     REAL,
	normalized_value  REAL NOT NULL,
	daily_avg         REAL NOT NULL,
	rolling_7d_avg    REAL NOT NULL,
	anomalous_reading INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	rows_in     INTEGER NOT NULL DEFAULT 0,
	rows_out    INTEGER NOT NULL DEFAULT 0,
	files_read  INTEGER NOT NULL DEFAULT 0,
	report_path TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_readings_date_sensor ON readings(date, sensor_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveReadings inserts the transformed rows inside one transaction and
// returns the number written.
func (s *SQLiteStore) SaveReadings(ctx context.Context, rows []model.Reading) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (date, sensor_id, timestamp, reading_type, value, battery_level,
			normalized_value, daily_avg, rolling_7d_avg, anomalous_reading)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, readingValues(r)...); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert reading")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(rows), nil
}

// ListDates returns the distinct partition dates present, ascending.
func (s *SQLiteStore) ListDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT date FROM readings ORDER BY date`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list dates")
	}
	defer rows.Close() //nolint:errcheck

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan date")
		}
		dates = append(dates, d)
	}
	return dates, eris.Wrap(rows.Err(), "sqlite: iterate dates")
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (*model.RunSummary, error) {
	run := &model.RunSummary{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Status:    model.RunStatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, run model.RunSummary) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, rows_in = ?, rows_out = ?, files_read = ?, report_path = ?, finished_at = ? WHERE id = ?`,
		run.Status, run.RowsIn, run.RowsOut, run.FilesRead, run.ReportPath, time.Now().UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", run.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", run.ID)
	}
	return nil
}
