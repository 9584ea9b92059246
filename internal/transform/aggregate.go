package transform

import (
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// rollingWindow is the span of the trailing time window.
const rollingWindow = 7 * 24 * time.Hour

const dateLayout = "2006-01-02"

// partKey identifies one (sensor_id, reading_type) series.
type partKey struct {
	sensor  string
	typ     string
	typNull bool
}

// dayKey identifies one (sensor_id, reading_type, date) group.
type dayKey struct {
	part partKey
	date string
}

// Aggregate adds the three derived aggregate columns:
//   - date: calendar date component of the timestamp
//   - daily_avg: mean normalized_value over (sensor_id, reading_type, date),
//     broadcast back onto every row of the group
//   - rolling_7d_avg: trailing time-windowed mean of normalized_value per
//     (sensor_id, reading_type) series ordered by timestamp; the window is the
//     7 days ending at the row's own timestamp, so sparse or irregular series
//     still average correctly
//
// Row count and row order are unchanged; the per-series windowing is computed
// on a sorted view and written back by original index. Rows sharing a
// timestamp keep their input order as the secondary sort key.
func Aggregate(ds model.Dataset) model.Dataset {
	cols := ds.WithColumn("date", model.TypeDate)
	cols = model.Dataset{Columns: cols}.WithColumn("daily_avg", model.TypeDouble)
	cols = model.Dataset{Columns: cols}.WithColumn("rolling_7d_avg", model.TypeDouble)

	out := model.Dataset{Columns: cols, Rows: make([]model.Reading, len(ds.Rows))}
	copy(out.Rows, ds.Rows)
	if ds.Empty() {
		return out
	}

	for i := range out.Rows {
		out.Rows[i].Date = out.Rows[i].Timestamp.Time.Format(dateLayout)
	}

	broadcastDailyAverages(out.Rows)
	computeRollingAverages(out.Rows)

	return out
}

// broadcastDailyAverages assigns each row the mean normalized_value of its
// (sensor_id, reading_type, date) group.
func broadcastDailyAverages(rows []model.Reading) {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[dayKey]*acc)

	for _, r := range rows {
		k := dayKey{part: rowPartKey(r), date: r.Date}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += r.NormalizedValue
		a.count++
	}

	for i := range rows {
		k := dayKey{part: rowPartKey(rows[i]), date: rows[i].Date}
		a := groups[k]
		rows[i].DailyAvg = a.sum / float64(a.count)
	}
}

// computeRollingAverages fills rolling_7d_avg for every row. Partitions are
// independent and write to disjoint indices, so they run in parallel.
func computeRollingAverages(rows []model.Reading) {
	parts := make(map[partKey][]int)
	order := make([]partKey, 0)
	for i, r := range rows {
		k := rowPartKey(r)
		if _, ok := parts[k]; !ok {
			order = append(order, k)
		}
		parts[k] = append(parts[k], i)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, k := range order {
		indices := parts[k]
		g.Go(func() error {
			rollPartition(rows, indices)
			return nil
		})
	}
	_ = g.Wait() // partitions never fail
}

// rollPartition computes the trailing window mean for one series. indices are
// in input order; sorting is stable on timestamp so identical timestamps keep
// their input order. Window membership is (t-7d, t]: a reading exactly seven
// days old has aged out.
func rollPartition(rows []model.Reading, indices []int) {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.SliceStable(sorted, func(a, b int) bool {
		return rows[sorted[a]].Timestamp.Time.Before(rows[sorted[b]].Timestamp.Time)
	})

	start := 0
	for i, idx := range sorted {
		t := rows[idx].Timestamp.Time
		cutoff := t.Add(-rollingWindow)
		for !rows[sorted[start]].Timestamp.Time.After(cutoff) {
			start++
		}

		sum := 0.0
		for _, j := range sorted[start : i+1] {
			sum += rows[j].NormalizedValue
		}
		rows[idx].Rolling7dAvg = sum / float64(i-start+1)
	}
}

func rowPartKey(r model.Reading) partKey {
	return partKey{
		sensor:  r.SensorID.String,
		typ:     r.ReadingType.String,
		typNull: !r.ReadingType.Valid,
	}
}
