package transform

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// zScoreLimit is the retention threshold for the batch-wide Z-score filter.
const zScoreLimit = 3.0

// FilterOutliers drops rows whose raw value is a statistical outlier across
// the entire batch: |value - mean| / stddev > 3, with the sample standard
// deviation. The filter is deliberately not partition-aware (not per sensor or
// per reading type).
//
// When the Z-score is undefined (zero variance, fewer than two values, or a
// null value) the row is retained: zero variance means no injected values.
func FilterOutliers(ds model.Dataset) model.Dataset {
	out := model.Dataset{Columns: ds.Columns}
	if ds.Empty() {
		return out
	}

	var values []float64
	for _, r := range ds.Rows {
		if r.Value.Valid {
			values = append(values, r.Value.Float64)
		}
	}
	if len(values) < 2 {
		out.Rows = append(out.Rows, ds.Rows...)
		return out
	}

	mean := stat.Mean(values, nil)
	stddev := stat.StdDev(values, nil)
	if stddev == 0 || math.IsNaN(stddev) {
		out.Rows = append(out.Rows, ds.Rows...)
		return out
	}

	kept := make([]model.Reading, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		if r.Value.Valid {
			z := math.Abs(r.Value.Float64-mean) / stddev
			if z > zScoreLimit {
				continue
			}
		}
		kept = append(kept, r)
	}

	out.Rows = kept
	return out
}
