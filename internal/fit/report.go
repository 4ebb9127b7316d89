package fit

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ParamResult is one calibrated parameter: where it started, where it
// ended, and the range it was searched in.
type ParamResult struct {
	Name   string  `yaml:"name"`
	Start  float64 `yaml:"start"`
	Fitted float64 `yaml:"fitted"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Log    bool    `yaml:"log,omitempty"`
}

// Report is the outcome of one calibration.
type Report struct {
	Name        string        `yaml:"name,omitempty"`
	When        time.Time     `yaml:"when"`
	Evaluations int           `yaml:"evaluations"`
	SSQStart    float64       `yaml:"ssq_start"`
	SSQ         float64       `yaml:"ssq"`
	Params      []ParamResult `yaml:"params"`
}

// Fitted returns the calibrated values keyed by parameter name, the
// shape [deb.Set.Apply] takes.
func (r *Report) Fitted() map[string]float64 {
	out := make(map[string]float64, len(r.Params))
	for _, p := range r.Params {
		out[p.Name] = p.Fitted
	}
	return out
}

// Save writes the report as YAML.
func (r *Report) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadReport reads a saved calibration report.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
