package transform

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// ts parses a naive timestamp as UTC.
func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	require.NoError(t, err)
	return parsed
}

// reading builds a fully populated input row.
func reading(t *testing.T, sensor, typ, stamp string, value float64) model.Reading {
	t.Helper()
	return model.Reading{
		SensorID:     null.StringFrom(sensor),
		Timestamp:    null.TimeFrom(ts(t, stamp)),
		ReadingType:  null.StringFrom(typ),
		Value:        null.FloatFrom(value),
		BatteryLevel: null.FloatFrom(80),
	}
}

// dataset wraps rows with the canonical input column metadata.
func dataset(rows ...model.Reading) model.Dataset {
	return model.Dataset{
		Columns: []model.Column{
			{Name: "sensor_id", Type: model.TypeVarchar},
			{Name: "timestamp", Type: model.TypeTimestamp},
			{Name: "reading_type", Type: model.TypeVarchar},
			{Name: "value", Type: model.TypeDouble},
			{Name: "battery_level", Type: model.TypeDouble},
		},
		Rows: rows,
	}
}

// values extracts the raw values of a dataset in row order.
func values(ds model.Dataset) []float64 {
	out := make([]float64, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		out = append(out, r.Value.Float64)
	}
	return out
}
