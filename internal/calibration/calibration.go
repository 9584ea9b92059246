// Package calibration holds the per-reading-type calibration parameters and
// expected value ranges. The table is built once and passed explicitly into
// each pipeline stage; it is never mutated after construction.
package calibration

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Params is the linear correction applied to raw values of one reading type.
type Params struct {
	Multiplier float64 `yaml:"multiplier"`
	Offset     float64 `yaml:"offset"`
}

// Range is the closed expected interval [Low, High] for raw values.
type Range struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Identity is the fallback for unrecognized reading types.
var Identity = Params{Multiplier: 1.0, Offset: 0.0}

// Table is an immutable calibration and expected-range lookup.
type Table struct {
	params map[string]Params
	ranges map[string]Range
	order  []string
}

// Default returns the built-in calibration table.
func Default() *Table {
	return &Table{
		params: map[string]Params{
			"temperature":   {Multiplier: 1.1, Offset: 0.5},
			"humidity":      {Multiplier: 1.0, Offset: 0.0},
			"soil_moisture": {Multiplier: 1.2, Offset: -1.0},
		},
		ranges: map[string]Range{
			"temperature":     {Low: 0, High: 50},
			"humidity":        {Low: 10, High: 100},
			"soil_moisture":   {Low: 0, High: 60},
			"light_intensity": {Low: 0, High: 1000},
		},
		order: []string{"temperature", "humidity", "soil_moisture", "light_intensity"},
	}
}

// fileOverrides is the YAML shape of a calibration override file.
type fileOverrides struct {
	Calibration map[string]Params `yaml:"calibration"`
	Ranges      map[string]Range  `yaml:"ranges"`
}

// Load builds a table from the defaults merged with a YAML override file.
// Overrides may adjust existing types or introduce new ones; new range types
// are appended to the known-type order.
func Load(path string) (*Table, error) {
	t := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "calibration: read %s", path)
	}

	var f fileOverrides
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "calibration: parse %s", path)
	}

	for typ, p := range f.Calibration {
		t.params[typ] = p
	}
	for typ, r := range f.Ranges {
		if _, known := t.ranges[typ]; !known {
			t.order = append(t.order, typ)
		}
		t.ranges[typ] = r
	}

	return t, nil
}

// Params returns the calibration for a reading type, or Identity when the
// type is unrecognized.
func (t *Table) Params(readingType string) Params {
	if p, ok := t.params[readingType]; ok {
		return p
	}
	return Identity
}

// Range returns the expected range for a reading type. Unrecognized types get
// an unbounded range and ok=false.
func (t *Table) Range(readingType string) (Range, bool) {
	if r, ok := t.ranges[readingType]; ok {
		return r, true
	}
	return Range{Low: math.Inf(-1), High: math.Inf(1)}, false
}

// KnownTypes returns the reading types with a defined expected range, in the
// fixed order used by the data-quality report.
func (t *Table) KnownTypes() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
