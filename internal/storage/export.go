package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/aquatox/debsim/internal/simulate"
)

// ExportData is the JSON shape of an exported run.
type ExportData struct {
	Name     string             `json:"name"`
	Model    string             `json:"model"`
	Solver   string             `json:"solver"`
	Scenario float64            `json:"scenario"`
	Labels   []string           `json:"labels"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Events   []float64          `json:"events,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes one run as indented JSON.
func ExportJSON(w io.Writer, name, model string, scenario float64, res *simulate.Result, metrics map[string]float64) error {
	data := ExportData{
		Name:     name,
		Model:    model,
		Solver:   res.Solver,
		Scenario: scenario,
		Labels:   res.Labels,
		Times:    res.Times,
		States:   make([][]float64, len(res.States)),
		Events:   res.Events,
		Metrics:  metrics,
	}
	for i, s := range res.States {
		data.States[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes one run as a wide CSV, time first, one column per
// state.
func ExportCSV(w io.Writer, res *simulate.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"time"}, res.Labels...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range res.Times {
		row := []string{strconv.FormatFloat(res.Times[i], 'f', 6, 64)}
		for _, val := range res.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
