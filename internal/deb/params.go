package deb

import (
	"errors"
	"fmt"
)

// ErrParamBounds indicates a parameter value outside its declared range.
var ErrParamBounds = errors.New("deb: parameter out of valid bounds")

// Param is one model parameter. The dynamics read only Value; the fit
// flag, range and scale steer calibration.
type Param struct {
	Value float64 `yaml:"value"`
	Fit   bool    `yaml:"fit,omitempty"`
	Min   float64 `yaml:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty"`
	// Log searches this parameter on a log10 scale during calibration.
	Log bool `yaml:"log,omitempty"`
}

// Set holds every parameter of both dynamics variants. A variant reads
// the fields it needs and ignores the rest.
type Set struct {
	// Shared.
	F    Param `yaml:"f"`    // scaled functional response, -
	Kap  Param `yaml:"kap"`  // somatic allocation fraction, -
	YAV  Param `yaml:"yAV"`  // yield of assimilates on structure (shrinking), -
	Tlag Param `yaml:"Tlag"` // developmental lag before dynamics start, d

	// Compound (length-based) variant.
	Rb Param `yaml:"rB"` // von Bertalanffy growth rate, 1/d
	Lm Param `yaml:"Lm"` // maximum length, mm
	Lp Param `yaml:"Lp"` // length at puberty, mm
	Rm Param `yaml:"Rm"` // maximum reproduction rate, eggs/d
	Lf Param `yaml:"Lf"` // half-saturation length for feeding limitation, mm; 0 disables
	Lj Param `yaml:"Lj"` // length at the end of early acceleration, mm; 0 disables

	// Flux (mass-based) variant.
	JAm Param `yaml:"JAm"` // area-specific maximum assimilation, mg/mm^2/d
	JvM Param `yaml:"JvM"` // volume-specific maintenance, mg/mm^3/d
	YVA Param `yaml:"yVA"` // yield of structure on assimilates, -
	YBA Param `yaml:"yBA"` // yield of egg buffer on assimilates, -
	FB  Param `yaml:"fB"`  // scaled functional response on the egg buffer, -
	WB0 Param `yaml:"WB0"` // initial egg buffer, mg; the cost of one egg
	Lwp Param `yaml:"Lwp"` // physical length at puberty, mm

	// Survival and dissolved-oxygen stress.
	Hb Param `yaml:"hb"` // embryo background hazard, 1/d
	Hj Param `yaml:"hj"` // juvenile background hazard, 1/d
	HS Param `yaml:"hS"` // maximum stress hazard, 1/d; 0 disables
	CL Param `yaml:"cL"` // oxygen level of full stress, mg/L
	CU Param `yaml:"cU"` // oxygen level of no stress, mg/L
}

// paramOrder fixes the iteration order for calibration and display.
var paramOrder = []string{
	"f", "kap", "yAV", "Tlag",
	"rB", "Lm", "Lp", "Rm", "Lf", "Lj",
	"JAm", "JvM", "yVA", "yBA", "fB", "WB0", "Lwp",
	"hb", "hj", "hS", "cL", "cU",
}

// Names lists all parameter names in their canonical order.
func Names() []string {
	return append([]string(nil), paramOrder...)
}

func (s *Set) ref(name string) *Param {
	switch name {
	case "f":
		return &s.F
	case "kap":
		return &s.Kap
	case "yAV":
		return &s.YAV
	case "Tlag":
		return &s.Tlag
	case "rB":
		return &s.Rb
	case "Lm":
		return &s.Lm
	case "Lp":
		return &s.Lp
	case "Rm":
		return &s.Rm
	case "Lf":
		return &s.Lf
	case "Lj":
		return &s.Lj
	case "JAm":
		return &s.JAm
	case "JvM":
		return &s.JvM
	case "yVA":
		return &s.YVA
	case "yBA":
		return &s.YBA
	case "fB":
		return &s.FB
	case "WB0":
		return &s.WB0
	case "Lwp":
		return &s.Lwp
	case "hb":
		return &s.Hb
	case "hj":
		return &s.Hj
	case "hS":
		return &s.HS
	case "cL":
		return &s.CL
	case "cU":
		return &s.CU
	}
	return nil
}

// Get returns the named parameter.
func (s *Set) Get(name string) (Param, bool) {
	p := s.ref(name)
	if p == nil {
		return Param{}, false
	}
	return *p, true
}

// SetValue updates the named parameter's value.
func (s *Set) SetValue(name string, value float64) error {
	p := s.ref(name)
	if p == nil {
		return fmt.Errorf("deb: unknown parameter: %s", name)
	}
	p.Value = value
	return nil
}

// Values returns a name -> value snapshot of all parameters.
func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(paramOrder))
	for _, name := range paramOrder {
		out[name] = s.ref(name).Value
	}
	return out
}

// Apply overrides parameter values from a name -> value map.
func (s *Set) Apply(values map[string]float64) error {
	for name, v := range values {
		if err := s.SetValue(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Free lists the names of parameters marked for calibration, in
// canonical order.
func (s *Set) Free() []string {
	var out []string
	for _, name := range paramOrder {
		if s.ref(name).Fit {
			out = append(out, name)
		}
	}
	return out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c := *s
	return &c
}

// Validate checks that every parameter marked for calibration sits
// inside a well-formed range.
func (s *Set) Validate() error {
	for _, name := range paramOrder {
		p := s.ref(name)
		if !p.Fit {
			continue
		}
		if p.Min >= p.Max {
			return fmt.Errorf("%w: %s range [%g, %g] is empty", ErrParamBounds, name, p.Min, p.Max)
		}
		if p.Value < p.Min || p.Value > p.Max {
			return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrParamBounds, name, p.Value, p.Min, p.Max)
		}
		if p.Log && p.Min <= 0 {
			return fmt.Errorf("%w: %s is log-scaled but its range reaches %g", ErrParamBounds, name, p.Min)
		}
	}
	return nil
}

// SnailParams is the pond snail (Lymnaea) compound-variant set.
func SnailParams() *Set {
	s := &Set{}
	s.F = Param{Value: 1.0, Min: 0.1, Max: 1.5}
	s.Kap = Param{Value: 0.79, Min: 0.5, Max: 0.99}
	s.YAV = Param{Value: 0.8, Min: 0.5, Max: 0.95}
	s.Rb = Param{Value: 0.02, Fit: true, Min: 0.001, Max: 0.2, Log: true}
	s.Lm = Param{Value: 35, Fit: true, Min: 20, Max: 50}
	s.Lp = Param{Value: 22, Min: 5, Max: 30}
	s.Rm = Param{Value: 10, Fit: true, Min: 0.5, Max: 100, Log: true}
	return s
}

// SilversideParams is the silverside larva (Menidia) flux-variant set
// with egg buffer, survival and dissolved-oxygen stress.
func SilversideParams() *Set {
	s := &Set{}
	s.F = Param{Value: 1.0, Min: 0.1, Max: 1.5}
	s.FB = Param{Value: 1.0, Min: 0.1, Max: 1.5}
	s.Kap = Param{Value: 0.8, Min: 0.5, Max: 0.99}
	s.YAV = Param{Value: 0.8, Min: 0.5, Max: 0.95}
	s.YVA = Param{Value: 0.8, Min: 0.5, Max: 0.95}
	s.YBA = Param{Value: 0.95, Min: 0.5, Max: 1.0}
	s.JAm = Param{Value: 0.1, Fit: true, Min: 0.005, Max: 1, Log: true}
	s.JvM = Param{Value: 0.02, Fit: true, Min: 0.0005, Max: 0.5, Log: true}
	s.WB0 = Param{Value: 0.15, Min: 0.01, Max: 1}
	s.Lwp = Param{Value: 45, Min: 10, Max: 80}
	s.Hb = Param{Value: 0.05, Fit: true, Min: 1e-4, Max: 1, Log: true}
	s.Hj = Param{Value: 0.01, Min: 1e-4, Max: 1}
	s.HS = Param{Value: 0.2, Min: 0, Max: 2}
	s.CL = Param{Value: 2, Min: 0, Max: 5}
	s.CU = Param{Value: 6, Min: 2, Max: 12}
	return s
}
