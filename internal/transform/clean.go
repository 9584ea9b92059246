package transform

import (
	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// Clean deduplicates the batch and repairs missing fields:
//   - exact-duplicate rows (all input columns equal) are removed, first wins
//   - rows with a null sensor_id or timestamp are dropped silently
//   - missing values are imputed with the batch-wide mean of the non-null
//     values remaining after the drop; this is a population-level imputation,
//     computed once before outlier filtering
//   - missing battery levels get the sentinel -1.0
//
// Cleaning never fails; an empty input yields an empty output.
func Clean(ds model.Dataset) model.Dataset {
	out := model.Dataset{Columns: ds.Columns}
	if ds.Empty() {
		return out
	}

	seen := make(map[string]struct{}, len(ds.Rows))
	kept := make([]model.Reading, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		key := r.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if !r.SensorID.Valid || !r.Timestamp.Valid {
			continue
		}
		kept = append(kept, r)
	}

	var values []float64
	for _, r := range kept {
		if r.Value.Valid {
			values = append(values, r.Value.Float64)
		}
	}
	haveMean := len(values) > 0
	mean := 0.0
	if haveMean {
		mean = stat.Mean(values, nil)
	}

	for i := range kept {
		if !kept[i].Value.Valid && haveMean {
			kept[i].Value = null.FloatFrom(mean)
		}
		if !kept[i].BatteryLevel.Valid {
			kept[i].BatteryLevel = null.FloatFrom(-1.0)
		}
	}

	out.Rows = kept
	return out
}
