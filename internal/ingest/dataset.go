package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rotisserie/eris"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// ErrInputType signals input that does not resemble a tabular dataset at all.
var ErrInputType = eris.New("input does not resemble a tabular dataset")

// timestampLayouts are the accepted timestamp renderings, tried in order.
// Naive timestamps are read as UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// buildDataset assembles a Dataset from a header row and string records,
// inferring a storage type for each expected column from its cell contents.
func buildDataset(header []string, records [][]string) (model.Dataset, error) {
	if len(header) == 0 {
		return model.Dataset{}, eris.Wrap(ErrInputType, "ingest: no header row")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	ds := model.Dataset{Rows: make([]model.Reading, 0, len(records))}
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ds.Columns = append(ds.Columns, model.Column{
			Name: name,
			Type: inferColumnType(name, index[name], records),
		})
	}
	if len(ds.Columns) == 0 {
		return model.Dataset{}, eris.Wrap(ErrInputType, "ingest: no named columns")
	}

	for _, rec := range records {
		ds.Rows = append(ds.Rows, model.Reading{
			SensorID:     stringCell(rec, index, "sensor_id"),
			Timestamp:    timeCell(rec, index, "timestamp"),
			ReadingType:  stringCell(rec, index, "reading_type"),
			Value:        floatCell(rec, index, "value"),
			BatteryLevel: floatCell(rec, index, "battery_level"),
		})
	}

	return ds, nil
}

// inferColumnType inspects every non-empty cell of a column. A column is
// DOUBLE when all cells parse as floats, TIMESTAMP when all parse as
// timestamps, otherwise VARCHAR. A fully empty column falls back to the
// expected type when the column is a known one.
func inferColumnType(name string, col int, records [][]string) string {
	allFloat, allTime, nonEmpty := true, true, 0

	for _, rec := range records {
		cell := cellAt(rec, col)
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
		if _, ok := parseTimestamp(cell); !ok {
			allTime = false
		}
		if !allFloat && !allTime {
			return model.TypeVarchar
		}
	}

	if nonEmpty == 0 {
		if expected, ok := model.ExpectedSchema[name]; ok {
			return expected
		}
		return model.TypeVarchar
	}
	if allFloat {
		return model.TypeDouble
	}
	if allTime {
		return model.TypeTimestamp
	}
	return model.TypeVarchar
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cellAt(rec []string, col int) string {
	if col < 0 || col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}

func lookupCell(rec []string, index map[string]int, name string) (string, bool) {
	col, ok := index[name]
	if !ok {
		return "", false
	}
	cell := cellAt(rec, col)
	return cell, cell != ""
}

func stringCell(rec []string, index map[string]int, name string) null.String {
	cell, ok := lookupCell(rec, index, name)
	if !ok {
		return null.String{}
	}
	return null.StringFrom(cell)
}

func floatCell(rec []string, index map[string]int, name string) null.Float {
	cell, ok := lookupCell(rec, index, name)
	if !ok {
		return null.Float{}
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

func timeCell(rec []string, index map[string]int, name string) null.Time {
	cell, ok := lookupCell(rec, index, name)
	if !ok {
		return null.Time{}
	}
	t, parsed := parseTimestamp(cell)
	if !parsed {
		return null.Time{}
	}
	return null.TimeFrom(t)
}
