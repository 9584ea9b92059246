package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS readings (
	date              TEXT NOT NULL,
	sensor_id         TEXT NOT NULL,
	timestamp         TEXT NOT NULL,
	reading_type      TEXT,
	value             DOUBLE PRECISION,
	battery_level     DOUBLE PRECISION,
	normalized_value  DOUBLE PRECISION NOT NULL,
	daily_avg         DOUBLE PRECISION NOT NULL,
	rolling_7d_avg    DOUBLE PRECISION NOT NULL,
	anomalous_reading BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	rows_in     INTEGER NOT NULL DEFAULT 0,
	rows_out    INTEGER NOT NULL DEFAULT 0,
	files_read  INTEGER NOT NULL DEFAULT 0,
	report_path TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_readings_date_sensor ON readings(date, sensor_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveReadings bulk-loads the transformed rows with the COPY protocol and
// returns the number written.
func (s *PostgresStore) SaveReadings(ctx context.Context, rows []model.Reading) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = readingValues(r)
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"readings"}, readingColumns, pgx.CopyFromRows(values))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: COPY INTO readings")
	}
	return int(n), nil
}

// ListDates returns the distinct partition dates present, ascending.
func (s *PostgresStore) ListDates(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT date FROM readings ORDER BY date`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list dates")
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "postgres: scan date")
		}
		dates = append(dates, d)
	}
	return dates, eris.Wrap(rows.Err(), "postgres: iterate dates")
}

func (s *PostgresStore) CreateRun(ctx context.Context) (*model.RunSummary, error) {
	run := &model.RunSummary{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Status:    model.RunStatusRunning,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES ($1, $2, $3)`,
		run.ID, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, run model.RunSummary) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, rows_in = $2, rows_out = $3, files_read = $4, report_path = $5, finished_at = $6 WHERE id = $7`,
		run.Status, run.RowsIn, run.RowsOut, run.FilesRead, run.ReportPath, time.Now().UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", run.ID)
	}
	return nil
}
