package ingest

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/fieldsense/sensor-etl/internal/model"
)

// readCSV parses a raw CSV batch. The first row is the header; short rows are
// tolerated and read as missing cells.
func readCSV(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return model.Dataset{}, eris.Wrapf(ErrInputType, "ingest: %s is empty", path)
	}
	if err != nil {
		return model.Dataset{}, eris.Wrapf(err, "ingest: read header of %s", path)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Dataset{}, eris.Wrapf(err, "ingest: read %s", path)
		}
		records = append(records, rec)
	}

	return buildDataset(header, records)
}
