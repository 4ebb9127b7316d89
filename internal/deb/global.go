package deb

import (
	"errors"
	"fmt"
)

// ErrConfig indicates an unusable global configuration.
var ErrConfig = errors.New("deb: invalid global configuration")

// ModelKind selects the dynamics variant.
type ModelKind int

const (
	// Compound is the length-based variant with von Bertalanffy growth.
	Compound ModelKind = iota
	// Flux is the mass-based variant with explicit flux accounting.
	Flux
)

func (k ModelKind) String() string {
	switch k {
	case Compound:
		return "compound"
	case Flux:
		return "flux"
	}
	return fmt.Sprintf("ModelKind(%d)", int(k))
}

// Stiffness selects the solver family.
type Stiffness int

const (
	// NonStiff selects the Dormand-Prince RK45 family, the default.
	NonStiff Stiffness = iota
	// MildlyStiff selects the Bogacki-Shampine RK23 family.
	MildlyStiff
	// Stiff selects the semi-implicit Rosenbrock family.
	Stiff
)

func (s Stiffness) String() string {
	switch s {
	case NonStiff:
		return "non-stiff"
	case MildlyStiff:
		return "mildly-stiff"
	case Stiff:
		return "stiff"
	}
	return fmt.Sprintf("Stiffness(%d)", int(s))
}

// Output length modes.
const (
	// LenMass reports the size column in native mass units.
	LenMass = 0
	// LenLength converts the size column to physical length.
	LenLength = 1
	// LenNoShrink converts to physical length and applies the running
	// maximum, for organisms whose measured length cannot shrink.
	LenNoShrink = 2
)

// Global is the immutable run configuration shared by the two model
// callbacks and the simulation driver. Construct one per run and do
// not mutate it afterwards.
type Global struct {
	Kind ModelKind `yaml:"kind"`

	// DelM is the shape correction relating physical to volumetric
	// length, and DV the dry-weight density of structure in mg/mm^3.
	// Both feed the mass = dV*(length*delM)^3 conversion.
	DelM float64 `yaml:"delM"`
	DV   float64 `yaml:"dV"`

	// Len is one of LenMass, LenLength, LenNoShrink.
	Len int `yaml:"len"`

	// Mat enables maturity maintenance in the flux variant.
	Mat bool `yaml:"mat"`

	// Tbp is the brood-pouch delay in days; 0 disables the output
	// remap.
	Tbp float64 `yaml:"Tbp"`

	Stiff Stiffness `yaml:"stiff"`
	Tol   int       `yaml:"tol"`

	// State vector layout. Size and reproduction are mandatory; a
	// negative buffer or survival location drops that sub-state.
	LocSize   int `yaml:"locSize"`
	LocRepro  int `yaml:"locRepro"`
	LocBuffer int `yaml:"locBuffer"`
	LocSurv   int `yaml:"locSurv"`

	// MinGrid overrides the densification floor of the no-shrink
	// filter in either direction; 0 keeps the default of 500 points.
	MinGrid int `yaml:"minGrid,omitempty"`
}

// SnailGlobal configures the compound variant with a [L, R] state.
func SnailGlobal() Global {
	return Global{
		Kind:      Compound,
		DelM:      1,
		DV:        1,
		Len:       LenMass,
		LocSize:   0,
		LocRepro:  1,
		LocBuffer: -1,
		LocSurv:   -1,
	}
}

// SilversideGlobal configures the flux variant with a
// [WV, R, WB, S] state reported in physical length.
func SilversideGlobal() Global {
	return Global{
		Kind:      Flux,
		DelM:      0.2,
		DV:        0.2,
		Len:       LenLength,
		Mat:       true,
		LocSize:   0,
		LocRepro:  1,
		LocBuffer: 2,
		LocSurv:   3,
	}
}

// StateDim is the length of the state vector this layout addresses.
func (g Global) StateDim() int {
	dim := g.LocSize
	if g.LocRepro > dim {
		dim = g.LocRepro
	}
	if g.LocBuffer > dim {
		dim = g.LocBuffer
	}
	if g.LocSurv > dim {
		dim = g.LocSurv
	}
	return dim + 1
}

// GridFloor is the minimum point count for no-shrink densification.
func (g Global) GridFloor() int {
	if g.MinGrid > 0 {
		return g.MinGrid
	}
	return 500
}

// Labels names the state columns as reported by the driver.
func (g Global) Labels() []string {
	out := make([]string, g.StateDim())
	for i := range out {
		out[i] = fmt.Sprintf("x%d", i)
	}
	size := "WV"
	if g.Kind == Compound || g.Len != LenMass {
		size = "L"
	}
	out[g.LocSize] = size
	out[g.LocRepro] = "R"
	if g.LocBuffer >= 0 {
		out[g.LocBuffer] = "WB"
	}
	if g.LocSurv >= 0 {
		out[g.LocSurv] = "S"
	}
	return out
}

func (g Global) Validate() error {
	if g.Kind != Compound && g.Kind != Flux {
		return fmt.Errorf("%w: unknown model kind %d", ErrConfig, int(g.Kind))
	}
	if g.LocSize < 0 || g.LocRepro < 0 {
		return fmt.Errorf("%w: size and reproduction locations are mandatory", ErrConfig)
	}
	locs := []int{g.LocSize, g.LocRepro}
	if g.LocBuffer >= 0 {
		locs = append(locs, g.LocBuffer)
	}
	if g.LocSurv >= 0 {
		locs = append(locs, g.LocSurv)
	}
	for i := 0; i < len(locs); i++ {
		for j := i + 1; j < len(locs); j++ {
			if locs[i] == locs[j] {
				return fmt.Errorf("%w: state location %d used twice", ErrConfig, locs[i])
			}
		}
	}
	if g.Len != LenMass && g.Len != LenLength && g.Len != LenNoShrink {
		return fmt.Errorf("%w: length mode %d", ErrConfig, g.Len)
	}
	if g.Kind == Flux && (g.DelM <= 0 || g.DV <= 0) {
		return fmt.Errorf("%w: flux variant needs positive delM and dV", ErrConfig)
	}
	if g.Tbp < 0 {
		return fmt.Errorf("%w: negative brood-pouch delay", ErrConfig)
	}
	return nil
}
