package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsense/sensor-etl/internal/model"
)

func TestBuildDataset_NoHeaderIsInputTypeError(t *testing.T) {
	_, err := buildDataset(nil, nil)

	assert.ErrorIs(t, err, ErrInputType)
}

func TestBuildDataset_OnlyBlankColumnNamesIsInputTypeError(t *testing.T) {
	_, err := buildDataset([]string{"", "  "}, [][]string{{"a", "b"}})

	assert.ErrorIs(t, err, ErrInputType)
}

func TestBuildDataset_TrimsHeaderWhitespace(t *testing.T) {
	ds, err := buildDataset(
		[]string{" sensor_id ", "timestamp", "reading_type", "value", "battery_level"},
		[][]string{{"A1", "2023-07-30 10:00:00", "temperature", "25", "80"}},
	)

	require.NoError(t, err)
	_, ok := ds.ColumnType("sensor_id")
	assert.True(t, ok)
	assert.Equal(t, "A1", ds.Rows[0].SensorID.String)
}

func TestInferColumnType(t *testing.T) {
	records := [][]string{
		{"A1", "2023-07-30 10:00:00", "temperature", "25.0"},
		{"A2", "2023-07-30T11:00:00", "humidity", "45"},
	}

	assert.Equal(t, model.TypeVarchar, inferColumnType("sensor_id", 0, records))
	assert.Equal(t, model.TypeTimestamp, inferColumnType("timestamp", 1, records))
	assert.Equal(t, model.TypeVarchar, inferColumnType("reading_type", 2, records))
	assert.Equal(t, model.TypeDouble, inferColumnType("value", 3, records))
}

func TestInferColumnType_MixedCellsAreVarchar(t *testing.T) {
	records := [][]string{{"25.0"}, {"warm"}}

	assert.Equal(t, model.TypeVarchar, inferColumnType("value", 0, records))
}

func TestInferColumnType_EmptyKnownColumnFallsBackToExpected(t *testing.T) {
	records := [][]string{{""}, {""}}

	assert.Equal(t, model.TypeDouble, inferColumnType("value", 0, records))
	assert.Equal(t, model.TypeVarchar, inferColumnType("mystery", 0, records))
}

func TestParseTimestamp_AcceptedLayouts(t *testing.T) {
	for _, s := range []string{
		"2023-07-30 10:00:00",
		"2023-07-30T10:00:00",
		"2023-07-30T10:00:00Z",
		"2023-07-30T15:30:00+0530",
	} {
		_, ok := parseTimestamp(s)
		assert.True(t, ok, s)
	}

	_, ok := parseTimestamp("30/07/2023")
	assert.False(t, ok)
}

func TestParseTimestamp_NaiveReadAsUTC(t *testing.T) {
	got, ok := parseTimestamp("2023-07-30 10:00:00")

	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 7, 30, 10, 0, 0, 0, time.UTC), got)
}

func TestCellHelpers_ShortRecordsReadAsMissing(t *testing.T) {
	header := []string{"sensor_id", "timestamp", "reading_type", "value", "battery_level"}
	ds, err := buildDataset(header, [][]string{{"A1", "2023-07-30 10:00:00"}})

	require.NoError(t, err)
	r := ds.Rows[0]
	assert.True(t, r.SensorID.Valid)
	assert.True(t, r.Timestamp.Valid)
	assert.False(t, r.ReadingType.Valid)
	assert.False(t, r.Value.Valid)
	assert.False(t, r.BatteryLevel.Valid)
}

func TestFloatCell_UnparseableIsNull(t *testing.T) {
	header := []string{"sensor_id", "timestamp", "reading_type", "value", "battery_level"}
	ds, err := buildDataset(header, [][]string{
		{"A1", "2023-07-30 10:00:00", "temperature", "not-a-number", "80"},
	})

	require.NoError(t, err)
	assert.False(t, ds.Rows[0].Value.Valid)
	assert.True(t, ds.Rows[0].BatteryLevel.Valid)
}
