// Package transform implements the cleaning, outlier-rejection,
// normalization, aggregation, anomaly-flagging, and timestamp-localization
// pipeline. Every stage is a pure function from dataset to dataset; no state
// is shared between runs.
package transform

import (
	"go.uber.org/zap"

	"github.com/fieldsense/sensor-etl/internal/calibration"
	"github.com/fieldsense/sensor-etl/internal/model"
)

// Transformer runs the full transformation pipeline against one batch.
type Transformer struct {
	table *calibration.Table
}

// New creates a Transformer bound to an immutable calibration table.
func New(table *calibration.Table) *Transformer {
	return &Transformer{table: table}
}

// Run executes the pipeline stages in order. An empty batch short-circuits
// before cleaning and is returned as-is with a warning.
func (t *Transformer) Run(ds model.Dataset) model.Dataset {
	if ds.Empty() {
		zap.L().Warn("transform: empty batch, skipping pipeline")
		return ds
	}

	zap.L().Info("transform: starting", zap.Int("rows", len(ds.Rows)))

	out := Clean(ds)
	cleaned := len(out.Rows)
	out = FilterOutliers(out)
	retained := len(out.Rows)
	out = Normalize(out, t.table)
	out = Aggregate(out)
	out = FlagAnomalies(out, t.table)
	out = Localize(out)

	zap.L().Info("transform: complete",
		zap.Int("rows_in", len(ds.Rows)),
		zap.Int("rows_cleaned", cleaned),
		zap.Int("outliers_dropped", cleaned-retained),
		zap.Int("rows_out", len(out.Rows)),
	)

	return out
}
