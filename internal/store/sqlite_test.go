package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsense/sensor-etl/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func transformedReading(date, sensor string, hour int) model.Reading {
	zone := time.FixedZone("IST", 5*3600+30*60)
	d, _ := time.Parse("2006-01-02", date)
	return model.Reading{
		SensorID:         null.StringFrom(sensor),
		Timestamp:        null.TimeFrom(time.Date(d.Year(), d.Month(), d.Day(), hour, 30, 0, 0, zone)),
		ReadingType:      null.StringFrom("temperature"),
		Value:            null.FloatFrom(25),
		BatteryLevel:     null.FloatFrom(80),
		NormalizedValue:  28,
		Date:             date,
		DailyAvg:         28,
		Rolling7dAvg:     28,
		AnomalousReading: false,
	}
}

func TestSQLiteStore_SaveAndListDates(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := s.SaveReadings(ctx, []model.Reading{
		transformedReading("2023-07-31", "s1", 10),
		transformedReading("2023-07-30", "s1", 10),
		transformedReading("2023-07-30", "s2", 11),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dates, err := s.ListDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-07-30", "2023-07-31"}, dates)
}

func TestSQLiteStore_SaveReadingsEmpty(t *testing.T) {
	s := newTestSQLiteStore(t)

	n, err := s.SaveReadings(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)

	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	run.Status = model.RunStatusComplete
	run.RowsIn = 10
	run.RowsOut = 9
	run.FilesRead = 2
	run.ReportPath = "data_quality_report.csv"
	assert.NoError(t, s.CompleteRun(ctx, *run))
}

func TestSQLiteStore_CompleteRunUnknownID(t *testing.T) {
	s := newTestSQLiteStore(t)

	err := s.CompleteRun(context.Background(), model.RunSummary{ID: "no-such-run"})

	assert.Error(t, err)
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "", filepath.Join(t.TempDir(), "default.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "duckdb", "whatever")
	assert.Error(t, err)
}
