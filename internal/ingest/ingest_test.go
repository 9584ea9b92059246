package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBatch = `sensor_id,timestamp,reading_type,value,battery_level
A1,2023-07-30 10:00:00,temperature,25.0,80.5
A2,2023-07-30 10:00:00,humidity,45.0,77.0
`

func writeBatch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractFileDate(t *testing.T) {
	d, err := ExtractFileDate("data/raw/2023-07-30.csv")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 7, 30, 0, 0, 0, 0, time.UTC), d)
}

func TestExtractFileDate_RejectsUndatedName(t *testing.T) {
	_, err := ExtractFileDate("data/raw/readings.csv")

	assert.Error(t, err)
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	h := New(dir)
	csvPath := writeBatch(t, dir, "2023-07-30.csv", validBatch)
	txtPath := writeBatch(t, dir, "2023-07-30.txt", "not a batch")
	undated := writeBatch(t, dir, "readings.csv", validBatch)

	assert.NoError(t, h.ValidatePath(csvPath))
	assert.Error(t, h.ValidatePath(txtPath))
	assert.Error(t, h.ValidatePath(undated))
	assert.Error(t, h.ValidatePath(""))
	assert.Error(t, h.ValidatePath(filepath.Join(dir, "2023-07-31.csv")))
}

func TestListUnprocessed_AllWhenNoCheckpoint(t *testing.T) {
	dir := t.TempDir()
	a := writeBatch(t, dir, "2023-07-30.csv", validBatch)
	b := writeBatch(t, dir, "2023-07-31.csv", validBatch)
	writeBatch(t, dir, "notes.txt", "ignored")

	files, err := New(dir).ListUnprocessed(nil)

	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestListUnprocessed_FiltersUpToLatest(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "2023-07-30.csv", validBatch)
	newer := writeBatch(t, dir, "2023-07-31.csv", validBatch)
	latest := time.Date(2023, 7, 30, 0, 0, 0, 0, time.UTC)

	files, err := New(dir).ListUnprocessed(&latest)

	require.NoError(t, err)
	assert.Equal(t, []string{newer}, files)
}

func TestListUnprocessed_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent")).ListUnprocessed(nil)

	assert.Error(t, err)
}

func TestReadFile_CSV(t *testing.T) {
	path := writeBatch(t, t.TempDir(), "2023-07-30.csv", validBatch)

	ds, err := ReadFile(path)

	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "A1", ds.Rows[0].SensorID.String)
	assert.Equal(t, "temperature", ds.Rows[0].ReadingType.String)
	assert.Equal(t, 25.0, ds.Rows[0].Value.Float64)
	assert.Equal(t, 80.5, ds.Rows[0].BatteryLevel.Float64)
	assert.Equal(t, time.Date(2023, 7, 30, 10, 0, 0, 0, time.UTC), ds.Rows[0].Timestamp.Time)
}

func TestReadFile_CSVMissingCellsBecomeNulls(t *testing.T) {
	path := writeBatch(t, t.TempDir(), "2023-07-30.csv",
		"sensor_id,timestamp,reading_type,value,battery_level\nA1,2023-07-30 10:00:00,temperature,,\n")

	ds, err := ReadFile(path)

	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.True(t, ds.Rows[0].SensorID.Valid)
	assert.False(t, ds.Rows[0].Value.Valid)
	assert.False(t, ds.Rows[0].BatteryLevel.Valid)
}

func TestReadFile_EmptyCSVIsInputTypeError(t *testing.T) {
	path := writeBatch(t, t.TempDir(), "2023-07-30.csv", "")

	_, err := ReadFile(path)

	assert.ErrorIs(t, err, ErrInputType)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile("2023-07-30.parquet")

	assert.Error(t, err)
}

func TestInspectSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeBatch(t, dir, "2023-07-30.csv", validBatch)

	cols, err := New(dir).InspectSchema(path)

	require.NoError(t, err)
	byName := make(map[string]string, len(cols))
	for _, c := range cols {
		byName[c.Name] = c.Type
	}
	assert.Equal(t, "VARCHAR", byName["sensor_id"])
	assert.Equal(t, "TIMESTAMP", byName["timestamp"])
	assert.Equal(t, "VARCHAR", byName["reading_type"])
	assert.Equal(t, "DOUBLE", byName["value"])
	assert.Equal(t, "DOUBLE", byName["battery_level"])
}

func TestLoadFiles_ConcatenatesValidBatches(t *testing.T) {
	dir := t.TempDir()
	a := writeBatch(t, dir, "2023-07-30.csv", validBatch)
	b := writeBatch(t, dir, "2023-07-31.csv", validBatch)

	ds, processed, sum := New(dir).LoadFiles([]string{a, b})

	assert.Len(t, ds.Rows, 4)
	assert.Equal(t, map[string][]string{
		"2023-07-30": {a},
		"2023-07-31": {b},
	}, processed)
	assert.Equal(t, Summary{TotalFiles: 2, LoadedFiles: 2, TotalRecords: 4}, sum)
}

func TestLoadFiles_SkipsBadSchemaAndKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	bad := writeBatch(t, dir, "2023-07-30.csv",
		"sensor_id,timestamp,reading_type\nA1,2023-07-30 10:00:00,temperature\n")
	good := writeBatch(t, dir, "2023-07-31.csv", validBatch)

	ds, processed, sum := New(dir).LoadFiles([]string{bad, good})

	assert.Len(t, ds.Rows, 2)
	assert.NotContains(t, processed, "2023-07-30")
	assert.Equal(t, 1, sum.SkippedFiles)
	assert.Equal(t, 1, sum.SkippedRecords)
	assert.Equal(t, 1, sum.LoadedFiles)
}

func TestLoadFiles_SkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	good := writeBatch(t, dir, "2023-07-31.csv", validBatch)

	ds, _, sum := New(dir).LoadFiles([]string{filepath.Join(dir, "2023-07-30.csv"), good})

	assert.Len(t, ds.Rows, 2)
	assert.Equal(t, Summary{TotalFiles: 2, LoadedFiles: 1, SkippedFiles: 1, TotalRecords: 2}, sum)
}
