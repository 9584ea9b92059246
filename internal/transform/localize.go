package transform

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// DisplayZone is the fixed display timezone for finalized timestamps:
// India Standard Time, UTC+05:30. IST observes no daylight saving, so a fixed
// offset is exact.
var DisplayZone = time.FixedZone("IST", 5*3600+30*60)

// localizedLayout is ISO-8601 with a numeric UTC offset, e.g.
// 2023-07-30T17:30:00+0530.
const localizedLayout = "2006-01-02T15:04:05-0700"

// Localize rewrites every timestamp into the display timezone. Input
// timestamps are treated as UTC instants (naive timestamps get the UTC label
// attached, never shifted), converted to IST, rendered as an ISO-8601 string,
// and re-parsed so downstream consumers see a timestamp value tagged with the
// display zone rather than a plain string.
func Localize(ds model.Dataset) model.Dataset {
	out := model.Dataset{
		Columns: ds.Columns,
		Rows:    make([]model.Reading, len(ds.Rows)),
	}

	for i, r := range ds.Rows {
		if r.Timestamp.Valid {
			rendered := r.Timestamp.Time.UTC().In(DisplayZone).Format(localizedLayout)
			parsed, err := time.Parse(localizedLayout, rendered)
			if err == nil {
				r.Timestamp = null.TimeFrom(parsed)
			}
		}
		out.Rows[i] = r
	}

	return out
}
