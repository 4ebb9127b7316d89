// Package dataset loads observed time series and environmental
// forcing from wide CSV tables: the first column is time, every
// further column one scenario, named by its identifier in the header.
// Empty cells are missing observations and carry no weight.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aquatox/debsim/internal/forcing"
)

var ErrEmptyTable = errors.New("dataset: table has no data rows")

// Table is one observed state variable across scenarios.
type Table struct {
	Name string

	// StateCol is the state column these observations target, in the
	// layout's order; Weight scales the table's contribution to the
	// calibration objective.
	StateCol int
	Weight   float64

	Times     []float64
	Scenarios []float64
	// Values is row-major [time][scenario]; NaN marks a missing
	// observation.
	Values [][]float64
}

// Rows reports the number of observation times.
func (t *Table) Rows() int { return len(t.Times) }

// Observed counts the non-missing cells.
func (t *Table) Observed() int {
	n := 0
	for _, row := range t.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// LoadTable reads a wide CSV observation table. stateCol addresses the
// state column the values measure; weight defaults to 1 when zero.
func LoadTable(path string, stateCol int, weight float64) (*Table, error) {
	times, ids, values, err := readWide(path)
	if err != nil {
		return nil, err
	}
	if weight == 0 {
		weight = 1
	}
	name := strings.TrimSuffix(filepath.Base(path), ".csv")
	return &Table{
		Name:      name,
		StateCol:  stateCol,
		Weight:    weight,
		Times:     times,
		Scenarios: ids,
		Values:    values,
	}, nil
}

// LoadForcing reads a wide CSV of environmental driver samples into a
// forcing set, one series per scenario column. Missing cells are
// skipped, so scenarios may be sampled at different times.
func LoadForcing(path string) (*forcing.Set, error) {
	times, ids, values, err := readWide(path)
	if err != nil {
		return nil, err
	}

	set := forcing.NewSet()
	for j, id := range ids {
		var ts, vs []float64
		for i := range times {
			if v := values[i][j]; !math.IsNaN(v) {
				ts = append(ts, times[i])
				vs = append(vs, v)
			}
		}
		sr, err := forcing.NewSeries(ts, vs)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s scenario %g: %w", path, id, err)
		}
		set.Add(id, sr)
	}
	return set, nil
}

func readWide(path string) (times, ids []float64, values [][]float64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, nil, nil, fmt.Errorf("dataset: %s: header needs a time column and at least one scenario", path)
	}
	ids = make([]float64, len(header)-1)
	for j, cell := range header[1:] {
		id, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dataset: %s: scenario header %q: %w", path, cell, err)
		}
		ids[j] = id
	}

	for _, record := range records[1:] {
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dataset: %s: time %q: %w", path, record[0], err)
		}
		row := make([]float64, len(ids))
		for j := range row {
			row[j] = math.NaN()
			if j+1 < len(record) {
				cell := strings.TrimSpace(record[j+1])
				if cell == "" || strings.EqualFold(cell, "nan") {
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("dataset: %s: value %q: %w", path, cell, err)
				}
				row[j] = v
			}
		}
		times = append(times, t)
		values = append(values, row)
	}
	if len(times) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	return times, ids, values, nil
}
