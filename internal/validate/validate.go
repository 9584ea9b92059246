// Package validate re-examines the transformed dataset and produces the
// data-quality report: schema conformance, value-range violations, hourly
// coverage gaps, and anomaly ratios. All checks are read-only; findings are
// reported, never raised, and every check runs even when an earlier one fails.
package validate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fieldsense/sensor-etl/internal/calibration"
	"github.com/fieldsense/sensor-etl/internal/model"
)

// Validator runs the four data-quality checks against a transformed dataset.
type Validator struct {
	table *calibration.Table
}

// New creates a Validator bound to an immutable calibration table.
func New(table *calibration.Table) *Validator {
	return &Validator{table: table}
}

// RunValidations executes all checks and assembles the report. The dataset is
// only read, never mutated.
func (v *Validator) RunValidations(ds model.Dataset) *Report {
	zap.L().Info("validate: running data quality validations", zap.Int("rows", len(ds.Rows)))

	report := &Report{}
	report.MissingSummary, report.TypeErrors = v.checkSchema(ds)
	report.RangeChecks = v.checkValueRanges(ds)
	report.TimeGaps = v.detectTimeGaps(ds)
	report.AnomalyProfile = v.profileAnomalies(ds)

	return report
}

// checkSchema verifies column presence and storage types against the expected
// schema and computes per-column null counts. A dataset without column
// metadata cannot be inspected at all; that is the catastrophic case, reported
// as a nil summary plus a single failure message.
func (v *Validator) checkSchema(ds model.Dataset) (*MissingSummary, []string) {
	if len(ds.Columns) == 0 {
		msg := "schema validation failed: dataset carries no column metadata"
		zap.L().Error("validate: " + msg)
		return nil, []string{msg}
	}

	summary := &MissingSummary{Total: len(ds.Rows)}
	for _, r := range ds.Rows {
		if !r.SensorID.Valid {
			summary.MissingSensorID++
		}
		if !r.Timestamp.Valid {
			summary.MissingTimestamp++
		}
		if !r.ReadingType.Valid {
			summary.MissingReadingType++
		}
		if !r.Value.Valid {
			summary.MissingValue++
		}
		if !r.BatteryLevel.Valid {
			summary.MissingBatteryLevel++
		}
	}

	var errs []string
	for _, col := range model.RequiredColumns {
		expected := model.ExpectedSchema[col]
		actual, ok := ds.ColumnType(col)
		if !ok {
			errs = append(errs, fmt.Sprintf("Missing column: %s", col))
			continue
		}
		if actual != expected {
			errs = append(errs, fmt.Sprintf("Column '%s' has type '%s', expected '%s'", col, actual, expected))
		}
	}

	return summary, errs
}

// checkValueRanges counts, per known reading type, the rows whose raw value
// lies strictly outside the expected range. Boundary values are in-range,
// consistent with the flagger's closed-interval semantics.
func (v *Validator) checkValueRanges(ds model.Dataset) []RangeCheck {
	checks := make([]RangeCheck, 0, len(v.table.KnownTypes()))

	for _, typ := range v.table.KnownTypes() {
		rng, _ := v.table.Range(typ)
		c := RangeCheck{ReadingType: typ}
		for _, r := range ds.Rows {
			if !r.ReadingType.Valid || r.ReadingType.String != typ {
				continue
			}
			c.Total++
			if r.Value.Valid && (r.Value.Float64 < rng.Low || r.Value.Float64 > rng.High) {
				c.OutOfRange++
			}
		}
		checks = append(checks, c)
	}

	return checks
}

// detectTimeGaps floors timestamps to the hour per sensor and compares
// distinct observed hours against the expected span (max-min)+1. A sensor
// with a single observed hour has no gap.
func (v *Validator) detectTimeGaps(ds model.Dataset) []TimeGap {
	type span struct {
		hours    map[time.Time]struct{}
		min, max time.Time
	}
	sensors := make(map[string]*span)

	for _, r := range ds.Rows {
		if !r.SensorID.Valid || !r.Timestamp.Valid {
			continue
		}
		h := floorHour(r.Timestamp.Time)
		s := sensors[r.SensorID.String]
		if s == nil {
			s = &span{hours: make(map[time.Time]struct{}), min: h, max: h}
			sensors[r.SensorID.String] = s
		}
		s.hours[h] = struct{}{}
		if h.Before(s.min) {
			s.min = h
		}
		if h.After(s.max) {
			s.max = h
		}
	}

	gaps := make([]TimeGap, 0, len(sensors))
	for id, s := range sensors {
		expected := int(s.max.Sub(s.min)/time.Hour) + 1
		observed := len(s.hours)
		pct := round2(100 * float64(expected-observed) / float64(expected))
		gaps = append(gaps, TimeGap{
			SensorID:            id,
			ObservedHours:       observed,
			ExpectedHours:       expected,
			PercentMissingHours: pct,
		})
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].SensorID < gaps[j].SensorID })

	return gaps
}

// profileAnomalies counts flagged readings per observed reading type.
func (v *Validator) profileAnomalies(ds model.Dataset) []AnomalyStat {
	stats := make(map[string]*AnomalyStat)

	for _, r := range ds.Rows {
		if !r.ReadingType.Valid {
			continue
		}
		s := stats[r.ReadingType.String]
		if s == nil {
			s = &AnomalyStat{ReadingType: r.ReadingType.String}
			stats[r.ReadingType.String] = s
		}
		s.TotalReadings++
		if r.AnomalousReading {
			s.Anomalies++
		}
	}

	profile := make([]AnomalyStat, 0, len(stats))
	for _, s := range stats {
		s.PercentAnomalous = round2(100 * float64(s.Anomalies) / float64(s.TotalReadings))
		profile = append(profile, *s)
	}
	sort.Slice(profile, func(i, j int) bool { return profile[i].ReadingType < profile[j].ReadingType })

	return profile
}

// floorHour truncates a timestamp to the top of its wall-clock hour,
// preserving the location. Plain Truncate would floor relative to UTC, which
// misplaces half-hour-offset zones like IST.
func floorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
