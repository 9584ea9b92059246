package validate

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// MissingSummary is the one-row per-column null-count summary.
type MissingSummary struct {
	Total               int
	MissingSensorID     int
	MissingTimestamp    int
	MissingReadingType  int
	MissingValue        int
	MissingBatteryLevel int
}

// RangeCheck counts out-of-range raw values for one known reading type.
type RangeCheck struct {
	ReadingType string
	Total       int
	OutOfRange  int
}

// TimeGap summarizes hourly coverage for one sensor.
type TimeGap struct {
	SensorID            string
	ObservedHours       int
	ExpectedHours       int
	PercentMissingHours float64
}

// AnomalyStat profiles flagged readings for one reading type.
type AnomalyStat struct {
	ReadingType      string
	TotalReadings    int
	Anomalies        int
	PercentAnomalous float64
}

// Report is the structured data-quality report. Sections render in fixed
// order: missing values, type checks, value ranges, time gaps, anomaly
// profile. A nil MissingSummary means the schema check failed catastrophically
// and the failure notice replaces the summary.
type Report struct {
	MissingSummary *MissingSummary
	TypeErrors     []string
	RangeChecks    []RangeCheck
	TimeGaps       []TimeGap
	AnomalyProfile []AnomalyStat
}

// Render produces the plain-text report layout.
func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString("=== SCHEMA VALIDATION: MISSING VALUES ===\n")
	if r.MissingSummary != nil {
		m := r.MissingSummary
		b.WriteString("total,missing_sensor_id,missing_timestamp,missing_reading_type,missing_value,missing_battery_level\n")
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d\n",
			m.Total, m.MissingSensorID, m.MissingTimestamp,
			m.MissingReadingType, m.MissingValue, m.MissingBatteryLevel)
	} else {
		b.WriteString("Failed to compute missing summary.\n")
	}

	b.WriteString("\n=== SCHEMA VALIDATION: TYPE CHECKS ===\n")
	if len(r.TypeErrors) > 0 {
		for _, e := range r.TypeErrors {
			b.WriteString(e)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("All column types match expected schema.\n")
	}

	b.WriteString("\n=== VALUE RANGE CHECKS ===\n")
	b.WriteString("reading_type,total,out_of_range\n")
	for _, c := range r.RangeChecks {
		fmt.Fprintf(&b, "%s,%d,%d\n", c.ReadingType, c.Total, c.OutOfRange)
	}

	b.WriteString("\n=== TIME GAPS ===\n")
	b.WriteString("sensor_id,observed_hours,expected_hours,percent_missing_hours\n")
	for _, g := range r.TimeGaps {
		fmt.Fprintf(&b, "%s,%d,%d,%.2f\n",
			g.SensorID, g.ObservedHours, g.ExpectedHours, g.PercentMissingHours)
	}

	b.WriteString("\n=== ANOMALY PROFILE ===\n")
	b.WriteString("reading_type,total_readings,anomalies,percent_anomalous\n")
	for _, a := range r.AnomalyProfile {
		fmt.Fprintf(&b, "%s,%d,%d,%.2f\n",
			a.ReadingType, a.TotalReadings, a.Anomalies, a.PercentAnomalous)
	}

	return b.String()
}

// WriteFile persists the rendered report as UTF-8 plain text.
func (r *Report) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(r.Render()), 0o644); err != nil {
		return eris.Wrapf(err, "validate: write report %s", path)
	}
	return nil
}
