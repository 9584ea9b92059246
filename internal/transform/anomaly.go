package transform

import (
	"github.com/fieldsense/sensor-etl/internal/calibration"
	"github.com/fieldsense/sensor-etl/internal/model"
)

// FlagAnomalies marks rows whose raw value falls outside the closed expected
// range [low, high] for their reading type. Boundary values are not anomalous.
// Unrecognized reading types have an unbounded range and are never flagged.
// The check uses the raw value, not the calibrated one.
func FlagAnomalies(ds model.Dataset, table *calibration.Table) model.Dataset {
	out := model.Dataset{
		Columns: ds.WithColumn("anomalous_reading", model.TypeBoolean),
		Rows:    make([]model.Reading, len(ds.Rows)),
	}

	for i, r := range ds.Rows {
		rng, known := table.Range(r.ReadingType.String)
		if !r.ReadingType.Valid {
			known = false
		}
		switch {
		case !known:
			r.AnomalousReading = false
		case !r.Value.Valid:
			// An unrepaired null cannot be shown in-range.
			r.AnomalousReading = true
		default:
			r.AnomalousReading = r.Value.Float64 < rng.Low || r.Value.Float64 > rng.High
		}
		out.Rows[i] = r
	}

	return out
}
