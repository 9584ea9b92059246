package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_RenderFullLayout(t *testing.T) {
	r := &Report{
		MissingSummary: &MissingSummary{Total: 5, MissingValue: 1},
		RangeChecks: []RangeCheck{
			{ReadingType: "temperature", Total: 3, OutOfRange: 1},
			{ReadingType: "humidity", Total: 2, OutOfRange: 0},
		},
		TimeGaps: []TimeGap{
			{SensorID: "s1", ObservedHours: 2, ExpectedHours: 4, PercentMissingHours: 50},
		},
		AnomalyProfile: []AnomalyStat{
			{ReadingType: "temperature", TotalReadings: 3, Anomalies: 1, PercentAnomalous: 33.33},
		},
	}

	want := `=== SCHEMA VALIDATION: MISSING VALUES ===
total,missing_sensor_id,missing_timestamp,missing_reading_type,missing_value,missing_battery_level
5,0,0,0,1,0

=== SCHEMA VALIDATION: TYPE CHECKS ===
All column types match expected schema.

=== VALUE RANGE CHECKS ===
reading_type,total,out_of_range
temperature,3,1
humidity,2,0

=== TIME GAPS ===
sensor_id,observed_hours,expected_hours,percent_missing_hours
s1,2,4,50.00

=== ANOMALY PROFILE ===
reading_type,total_readings,anomalies,percent_anomalous
temperature,3,1,33.33
`
	assert.Equal(t, want, r.Render())
}

func TestReport_RenderTypeErrors(t *testing.T) {
	r := &Report{
		MissingSummary: &MissingSummary{},
		TypeErrors: []string{
			"Missing column: battery_level",
			"Column 'value' has type 'VARCHAR', expected 'DOUBLE'",
		},
	}

	out := r.Render()

	assert.Contains(t, out, "=== SCHEMA VALIDATION: TYPE CHECKS ===\nMissing column: battery_level\nColumn 'value' has type 'VARCHAR', expected 'DOUBLE'\n")
	assert.NotContains(t, out, "All column types match expected schema.")
}

func TestReport_RenderCatastrophicSchemaFailure(t *testing.T) {
	r := &Report{
		MissingSummary: nil,
		TypeErrors:     []string{"schema validation failed: dataset carries no column metadata"},
	}

	out := r.Render()

	assert.Contains(t, out, "=== SCHEMA VALIDATION: MISSING VALUES ===\nFailed to compute missing summary.\n")
	assert.Contains(t, out, "schema validation failed: dataset carries no column metadata")
}

func TestReport_RenderEmptySections(t *testing.T) {
	r := &Report{MissingSummary: &MissingSummary{}}

	out := r.Render()

	// Section headers appear even when there is nothing to report.
	assert.Contains(t, out, "=== VALUE RANGE CHECKS ===\nreading_type,total,out_of_range\n")
	assert.Contains(t, out, "=== TIME GAPS ===\nsensor_id,observed_hours,expected_hours,percent_missing_hours\n")
	assert.Contains(t, out, "=== ANOMALY PROFILE ===\nreading_type,total_readings,anomalies,percent_anomalous\n")
}

func TestReport_WriteFile(t *testing.T) {
	r := &Report{MissingSummary: &MissingSummary{Total: 1}}
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, r.Render(), string(data))
}
