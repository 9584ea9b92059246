// Package ingest discovers dated raw sensor batch files, parses them into the
// working dataset, and validates their schema before the pipeline runs.
// File names carry the batch date, e.g. 2023-07-30.csv.
package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fieldsense/sensor-etl/internal/model"
)

const fileDateLayout = "2006-01-02"

// Handler discovers and reads raw batch files from one directory.
type Handler struct {
	rawDir string
}

// New creates a Handler for the given raw data directory.
func New(rawDir string) *Handler {
	return &Handler{rawDir: rawDir}
}

// Summary accounts for one discovery-and-load pass.
type Summary struct {
	TotalFiles     int
	LoadedFiles    int
	SkippedFiles   int
	TotalRecords   int
	SkippedRecords int
}

// ExtractFileDate parses the batch date from a file name like 2023-07-30.csv.
func ExtractFileDate(path string) (time.Time, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	d, err := time.Parse(fileDateLayout, stem)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "ingest: invalid date in filename %s", path)
	}
	return d, nil
}

// ValidatePath checks that a path exists, has a supported extension, and
// carries a parseable batch date.
func (h *Handler) ValidatePath(path string) error {
	if path == "" {
		return eris.New("ingest: empty file path")
	}
	if _, err := os.Stat(path); err != nil {
		return eris.Wrapf(err, "ingest: stat %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return eris.Errorf("ingest: unsupported file type %s", path)
	}
	if _, err := ExtractFileDate(path); err != nil {
		return err
	}
	return nil
}

// ListUnprocessed returns the raw batch files dated after latest, sorted by
// path. A nil latest returns every valid file.
func (h *Handler) ListUnprocessed(latest *time.Time) ([]string, error) {
	entries, err := os.ReadDir(h.rawDir)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read raw dir %s", h.rawDir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(h.rawDir, e.Name())
		if err := h.ValidatePath(path); err != nil {
			zap.L().Warn("ingest: skipping invalid file", zap.String("path", path), zap.Error(err))
			continue
		}
		date, _ := ExtractFileDate(path)
		if latest == nil || date.After(*latest) {
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ReadFile parses one raw batch file into a Dataset.
func ReadFile(path string) (model.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return model.Dataset{}, eris.Errorf("ingest: unsupported file type %s", path)
	}
}

// InspectSchema returns the inferred column schema of a raw file.
func (h *Handler) InspectSchema(path string) ([]model.Column, error) {
	if err := h.ValidatePath(path); err != nil {
		return nil, err
	}
	ds, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ds.Columns, nil
}

// validateDataset checks a parsed batch against the expected input schema.
// Failures are reported, and the file is skipped rather than aborting the run.
func validateDataset(ds model.Dataset, path string) bool {
	if ds.Empty() {
		zap.L().Warn("ingest: empty batch", zap.String("path", path))
		return false
	}
	for _, col := range model.RequiredColumns {
		actual, ok := ds.ColumnType(col)
		if !ok {
			zap.L().Error("ingest: missing expected column",
				zap.String("path", path), zap.String("column", col))
			return false
		}
		if expected := model.ExpectedSchema[col]; actual != expected {
			zap.L().Error("ingest: column type mismatch",
				zap.String("path", path), zap.String("column", col),
				zap.String("expected", expected), zap.String("actual", actual))
			return false
		}
	}
	return true
}

// LoadFiles reads and validates each file, concatenating the valid batches
// into one dataset. It returns the combined dataset, the loaded file paths
// keyed by batch date for checkpointing, and the load accounting.
func (h *Handler) LoadFiles(files []string) (model.Dataset, map[string][]string, Summary) {
	var combined model.Dataset
	processed := make(map[string][]string)
	sum := Summary{TotalFiles: len(files)}

	for _, path := range files {
		ds, err := ReadFile(path)
		if err != nil {
			zap.L().Warn("ingest: failed to read file", zap.String("path", path), zap.Error(err))
			sum.SkippedFiles++
			continue
		}
		if !validateDataset(ds, path) {
			zap.L().Warn("ingest: skipped file", zap.String("path", path))
			sum.SkippedFiles++
			sum.SkippedRecords += len(ds.Rows)
			continue
		}

		zap.L().Info("ingest: valid file", zap.String("path", path), zap.Int("records", len(ds.Rows)))
		if combined.Empty() {
			combined.Columns = ds.Columns
		}
		combined.Rows = append(combined.Rows, ds.Rows...)
		sum.LoadedFiles++
		sum.TotalRecords += len(ds.Rows)

		date, _ := ExtractFileDate(path)
		key := date.Format(fileDateLayout)
		processed[key] = append(processed[key], path)
	}

	zap.L().Info("ingest: summary",
		zap.Int("total_files", sum.TotalFiles),
		zap.Int("loaded_files", sum.LoadedFiles),
		zap.Int("skipped_files", sum.SkippedFiles),
		zap.Int("total_records", sum.TotalRecords),
		zap.Int("skipped_records", sum.SkippedRecords),
	)

	return combined, processed, sum
}
