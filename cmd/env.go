package main

import (
	"github.com/rotisserie/eris"

	"github.com/fieldsense/sensor-etl/internal/calibration"
)

// loadCalibration builds the calibration table, applying the configured
// override file when one is set.
func loadCalibration() (*calibration.Table, error) {
	if cfg.Calibration.Path == "" {
		return calibration.Default(), nil
	}
	table, err := calibration.Load(cfg.Calibration.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load calibration overrides")
	}
	return table, nil
}
