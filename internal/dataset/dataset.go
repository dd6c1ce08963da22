// Package dataset loads observed NAD traces for calibration.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Observed is a set of (time, target) observations. Times need not be
// sorted; the calibration engine resamples via interpolation.
type Observed struct {
	TimesH   []float64
	NadCytUM []float64
}

// Validate checks the dataset shape before any optimization is attempted.
func (o Observed) Validate() error {
	if len(o.TimesH) == 0 {
		return fmt.Errorf("observed dataset is empty")
	}
	if len(o.TimesH) != len(o.NadCytUM) {
		return fmt.Errorf("observed dataset length mismatch: %d times vs %d targets", len(o.TimesH), len(o.NadCytUM))
	}
	for i, t := range o.TimesH {
		if t < 0 {
			return fmt.Errorf("observed time at row %d is negative: %g", i, t)
		}
	}
	return nil
}

// Loader provides an observed dataset from some source.
type Loader interface {
	Load() (Observed, error)
	Name() string
}

// Expected CSV column headers.
const (
	TimeColumn   = "time_h"
	TargetColumn = "observed_nad_cyt_uM"
)

// CSVLoader reads observations from a CSV file with a header row containing
// the time_h and observed_nad_cyt_uM columns.
type CSVLoader struct {
	Path string
}

func NewCSVLoader(path string) *CSVLoader { return &CSVLoader{Path: path} }

func (l *CSVLoader) Name() string { return "csv:" + l.Path }

func (l *CSVLoader) Load() (Observed, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return Observed{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return Observed{}, fmt.Errorf("parse dataset: %w", err)
	}
	if len(rows) < 2 {
		return Observed{}, fmt.Errorf("dataset %s has no data rows", l.Path)
	}

	timeIdx, targetIdx := -1, -1
	for i, name := range rows[0] {
		switch name {
		case TimeColumn:
			timeIdx = i
		case TargetColumn:
			targetIdx = i
		}
	}
	if timeIdx < 0 || targetIdx < 0 {
		return Observed{}, fmt.Errorf("dataset must include columns '%s' and '%s'", TimeColumn, TargetColumn)
	}

	obs := Observed{
		TimesH:   make([]float64, 0, len(rows)-1),
		NadCytUM: make([]float64, 0, len(rows)-1),
	}
	for n, row := range rows[1:] {
		if len(row) <= timeIdx || len(row) <= targetIdx {
			return Observed{}, fmt.Errorf("dataset row %d is missing columns", n+2)
		}
		t, err := strconv.ParseFloat(row[timeIdx], 64)
		if err != nil {
			return Observed{}, fmt.Errorf("dataset row %d: bad %s value %q", n+2, TimeColumn, row[timeIdx])
		}
		v, err := strconv.ParseFloat(row[targetIdx], 64)
		if err != nil {
			return Observed{}, fmt.Errorf("dataset row %d: bad %s value %q", n+2, TargetColumn, row[targetIdx])
		}
		obs.TimesH = append(obs.TimesH, t)
		obs.NadCytUM = append(obs.NadCytUM, v)
	}

	if err := obs.Validate(); err != nil {
		return Observed{}, err
	}
	return obs, nil
}

// StaticLoader serves a fixed in-memory dataset, mainly for tests.
type StaticLoader struct {
	Data Observed
}

func (l *StaticLoader) Name() string { return "static" }

func (l *StaticLoader) Load() (Observed, error) {
	if err := l.Data.Validate(); err != nil {
		return Observed{}, err
	}
	return l.Data, nil
}
