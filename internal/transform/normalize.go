package transform

import (
	"math"

	"github.com/fieldsense/sensor-etl/internal/calibration"
	"github.com/fieldsense/sensor-etl/internal/model"
)

// Normalize applies the per-reading-type linear calibration to each row:
// normalized_value = value * multiplier + offset. Unrecognized reading types
// use the identity calibration. No clamping or rounding is applied.
func Normalize(ds model.Dataset, table *calibration.Table) model.Dataset {
	out := model.Dataset{
		Columns: ds.WithColumn("normalized_value", model.TypeDouble),
		Rows:    make([]model.Reading, len(ds.Rows)),
	}

	for i, r := range ds.Rows {
		p := table.Params(r.ReadingType.String)
		if !r.ReadingType.Valid {
			p = calibration.Identity
		}
		if r.Value.Valid {
			r.NormalizedValue = r.Value.Float64*p.Multiplier + p.Offset
		} else {
			r.NormalizedValue = math.NaN()
		}
		out.Rows[i] = r
	}

	return out
}
