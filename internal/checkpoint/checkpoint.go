// Package checkpoint tracks which dated raw files have already been
// processed, as a JSON document mapping batch date to file paths.
package checkpoint

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Data maps batch date (YYYY-MM-DD) to the files processed for that date.
type Data map[string][]string

// Load reads the checkpoint file. A missing file yields an empty checkpoint;
// a corrupt file yields an empty checkpoint with a warning, so a damaged
// checkpoint never blocks ingestion.
func Load(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Data{}, nil
		}
		return nil, eris.Wrapf(err, "checkpoint: read %s", path)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		zap.L().Warn("checkpoint: corrupt file, starting fresh",
			zap.String("path", path), zap.Error(err))
		return Data{}, nil
	}
	return data, nil
}

// Save writes the checkpoint file.
func Save(path string, data Data) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrapf(err, "checkpoint: write %s", path)
	}
	return nil
}

// LatestDate returns the most recent processed batch date, or nil for an
// empty checkpoint. Unparseable keys are ignored.
func (d Data) LatestDate() *time.Time {
	var latest *time.Time
	for key := range d {
		t, err := time.Parse(dateLayout, key)
		if err != nil {
			continue
		}
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest
}

// Dates returns the processed batch dates in ascending order.
func (d Data) Dates() []string {
	dates := make([]string, 0, len(d))
	for key := range d {
		dates = append(dates, key)
	}
	sort.Strings(dates)
	return dates
}

// Update merges newly processed files into the checkpoint at path, deduping
// per date, and saves it.
func Update(path string, processed map[string][]string) error {
	data, err := Load(path)
	if err != nil {
		return err
	}

	for date, files := range processed {
		merged := make(map[string]struct{}, len(data[date])+len(files))
		for _, f := range data[date] {
			merged[f] = struct{}{}
		}
		for _, f := range files {
			merged[f] = struct{}{}
		}
		list := make([]string, 0, len(merged))
		for f := range merged {
			list = append(list, f)
		}
		sort.Strings(list)
		data[date] = list
	}

	return Save(path, data)
}
