// Package store persists transformed readings, partitioned by
// (date, sensor_id), and records pipeline runs. Backends: SQLite (default)
// and Postgres, selected by the store.driver config.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// Store is the persistence interface for the ETL pipeline.
type Store interface {
	// Readings
	SaveReadings(ctx context.Context, rows []model.Reading) (int, error)
	ListDates(ctx context.Context) ([]string, error)

	// Runs
	CreateRun(ctx context.Context) (*model.RunSummary, error)
	CompleteRun(ctx context.Context, run model.RunSummary) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// readingColumns is the column order shared by both backends.
var readingColumns = []string{
	"date", "sensor_id", "timestamp", "reading_type", "value", "battery_level",
	"normalized_value", "daily_avg", "rolling_7d_avg", "anomalous_reading",
}

// readingValues renders one transformed row in readingColumns order. The
// timestamp keeps its display-zone offset.
func readingValues(r model.Reading) []any {
	return []any{
		r.Date,
		r.SensorID.String,
		r.Timestamp.Time.Format("2006-01-02T15:04:05-0700"),
		r.ReadingType,
		r.Value,
		r.BatteryLevel,
		r.NormalizedValue,
		r.DailyAvg,
		r.Rolling7dAvg,
		r.AnomalousReading,
	}
}

// Open constructs the configured backend.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
