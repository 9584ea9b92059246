package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// readXLSX parses a raw XLSX batch from the first sheet. The first row is the
// header.
func readXLSX(path string) (model.Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return model.Dataset{}, eris.Wrapf(err, "ingest: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return model.Dataset{}, eris.Wrapf(ErrInputType, "ingest: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return model.Dataset{}, eris.Wrapf(ErrInputType, "ingest: %s is empty", path)
	}

	header := rowToStrings(sheet.Rows[0])
	records := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		records = append(records, rowToStrings(row))
	}

	return buildDataset(header, records)
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
