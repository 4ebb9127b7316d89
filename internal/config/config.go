package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aquatox/debsim/internal/deb"
	"github.com/aquatox/debsim/internal/forcing"
)

const (
	DefaultT0     = 0.0
	DefaultT1     = 150.0
	DefaultPoints = 76
)

// Config describes one experiment: the model configuration, its
// parameter set, the reporting grid and the scenarios to simulate.
type Config struct {
	Name   string     `yaml:"name"`
	Solver string     `yaml:"solver,omitempty"`
	Global deb.Global `yaml:"global"`
	Params *deb.Set   `yaml:"params"`
	Times  TimeGrid   `yaml:"times"`

	Scenarios []Scenario `yaml:"scenarios"`
}

// TimeGrid is an evenly spaced reporting grid.
type TimeGrid struct {
	From   float64 `yaml:"from"`
	To     float64 `yaml:"to"`
	Points int     `yaml:"points"`
}

// Scenario is one organism cohort: its identifier, the initial state
// in the layout's order, and an optional dissolved-oxygen profile.
type Scenario struct {
	ID     float64       `yaml:"id"`
	X0     []float64     `yaml:"x0"`
	Oxygen *SeriesConfig `yaml:"oxygen,omitempty"`
}

// SeriesConfig is an inline forcing time series.
type SeriesConfig struct {
	Times  []float64 `yaml:"times"`
	Values []float64 `yaml:"values"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:   "lymnaea",
		Global: deb.SnailGlobal(),
		Params: deb.SnailParams(),
		Times:  TimeGrid{From: DefaultT0, To: DefaultT1, Points: DefaultPoints},
		Scenarios: []Scenario{
			{ID: 1, X0: []float64{12.8, 0}},
		},
	}
}

// Load reads a YAML experiment file. The model configuration and the
// parameter set must be complete; only the reporting grid defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Times: TimeGrid{From: DefaultT0, To: DefaultT1, Points: DefaultPoints},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Global.Validate(); err != nil {
		return err
	}
	if c.Params == nil {
		return fmt.Errorf("config: %s has no parameter set", c.Name)
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Times.Points < 2 || c.Times.To <= c.Times.From {
		return fmt.Errorf("config: %s has an empty time grid", c.Name)
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("config: %s has no scenarios", c.Name)
	}
	dim := c.Global.StateDim()
	for _, sc := range c.Scenarios {
		if len(sc.X0) != dim {
			return fmt.Errorf("config: scenario %g has %d initial entries, layout needs %d",
				sc.ID, len(sc.X0), dim)
		}
		if sc.Oxygen != nil && len(sc.Oxygen.Times) != len(sc.Oxygen.Values) {
			return fmt.Errorf("config: scenario %g oxygen series is ragged", sc.ID)
		}
	}
	return nil
}

// Grid expands the time grid to explicit reporting times.
func (c *Config) Grid() []float64 {
	out := make([]float64, c.Times.Points)
	span := c.Times.To - c.Times.From
	for i := range out {
		out[i] = c.Times.From + span*float64(i)/float64(c.Times.Points-1)
	}
	return out
}

// Forcing collects the inline oxygen profiles into a forcing set; nil
// when no scenario carries one.
func (c *Config) Forcing() (*forcing.Set, error) {
	var set *forcing.Set
	for _, sc := range c.Scenarios {
		if sc.Oxygen == nil {
			continue
		}
		sr, err := forcing.NewSeries(sc.Oxygen.Times, sc.Oxygen.Values)
		if err != nil {
			return nil, fmt.Errorf("config: scenario %g oxygen: %w", sc.ID, err)
		}
		if set == nil {
			set = forcing.NewSet()
		}
		set.Add(sc.ID, sr)
	}
	return set, nil
}

// InitialVector prepends the scenario identifier to its initial state,
// the shape the simulation driver takes.
func (s Scenario) InitialVector() []float64 {
	out := make([]float64, 0, len(s.X0)+1)
	out = append(out, s.ID)
	return append(out, s.X0...)
}
