// Package model defines the working dataset types shared by the ingestion,
// transformation, validation, and persistence layers.
package model

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Storage types reported by the schema inspector and checked by the validator.
const (
	TypeVarchar   = "VARCHAR"
	TypeTimestamp = "TIMESTAMP"
	TypeDouble    = "DOUBLE"
	TypeDate      = "DATE"
	TypeBoolean   = "BOOLEAN"
)

// Required input columns, in canonical order.
var RequiredColumns = []string{"sensor_id", "timestamp", "reading_type", "value", "battery_level"}

// ExpectedSchema maps required columns to their expected storage types.
var ExpectedSchema = map[string]string{
	"sensor_id":     TypeVarchar,
	"timestamp":     TypeTimestamp,
	"reading_type":  TypeVarchar,
	"value":         TypeDouble,
	"battery_level": TypeDouble,
}

// Reading is one sensor measurement row. The five input columns are nullable
// until cleaning; the derived fields are each owned by one pipeline stage and
// never mutated after being set.
type Reading struct {
	SensorID     null.String `json:"sensor_id"`
	Timestamp    null.Time   `json:"timestamp"`
	ReadingType  null.String `json:"reading_type"`
	Value        null.Float  `json:"value"`
	BatteryLevel null.Float  `json:"battery_level"`

	// Derived by the Normalizer.
	NormalizedValue float64 `json:"normalized_value"`
	// Derived by the Aggregator.
	Date         string  `json:"date"`
	DailyAvg     float64 `json:"daily_avg"`
	Rolling7dAvg float64 `json:"rolling_7d_avg"`
	// Derived by the Anomaly Flagger.
	AnomalousReading bool `json:"anomalous_reading"`
}

// DedupKey renders the five input columns into a string key for exact-duplicate
// detection. Derived fields are excluded; duplicates are judged on input data.
func (r Reading) DedupKey() string {
	ts := "<null>"
	if r.Timestamp.Valid {
		ts = r.Timestamp.Time.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%t|%s|%s|%t|%s|%t|%v|%t|%v",
		r.SensorID.Valid, r.SensorID.String,
		ts,
		r.ReadingType.Valid, r.ReadingType.String,
		r.Value.Valid, r.Value.Float64,
		r.BatteryLevel.Valid, r.BatteryLevel.Float64,
	)
}

// Column describes one column of the working dataset as captured at ingest.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Dataset is the in-memory tabular batch handed through the pipeline. Columns
// carries the storage-type metadata inferred at ingest so the validator has a
// real schema to check; stages append metadata for the columns they add.
type Dataset struct {
	Columns []Column
	Rows    []Reading
}

// Empty reports whether the dataset has no rows.
func (d Dataset) Empty() bool { return len(d.Rows) == 0 }

// ColumnType returns the storage type of a named column and whether it exists.
func (d Dataset) ColumnType(name string) (string, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}

// WithColumn returns a copy of the column metadata with one column appended,
// replacing any existing entry of the same name.
func (d Dataset) WithColumn(name, typ string) []Column {
	cols := make([]Column, 0, len(d.Columns)+1)
	for _, c := range d.Columns {
		if c.Name != name {
			cols = append(cols, c)
		}
	}
	return append(cols, Column{Name: name, Type: typ})
}

// RunSummary records one pipeline run for the store's run table.
type RunSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	RowsIn     int       `json:"rows_in"`
	RowsOut    int       `json:"rows_out"`
	FilesRead  int       `json:"files_read"`
	ReportPath string    `json:"report_path"`
	Status     string    `json:"status"`
}

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)
