// Package experiment wires a configuration into simulation runs: a
// registry resolving family and solver names, and an orchestrator
// running every scenario of one experiment.
package experiment

import (
	"fmt"
	"sort"

	"github.com/aquatox/debsim/internal/deb"
)

// Registry resolves the names used on the command line and in config
// files.
type Registry struct {
	families map[string]func() (deb.Global, *deb.Set)
	solvers  map[string]deb.Stiffness
}

func NewRegistry() *Registry {
	r := &Registry{
		families: make(map[string]func() (deb.Global, *deb.Set)),
		solvers:  make(map[string]deb.Stiffness),
	}

	r.families["snail"] = func() (deb.Global, *deb.Set) {
		return deb.SnailGlobal(), deb.SnailParams()
	}
	r.families["silverside"] = func() (deb.Global, *deb.Set) {
		return deb.SilversideGlobal(), deb.SilversideParams()
	}

	r.solvers["dopri"] = deb.NonStiff
	r.solvers["bs23"] = deb.MildlyStiff
	r.solvers["rosenbrock"] = deb.Stiff

	return r
}

// GetFamily builds a fresh configuration and parameter set for a
// model family.
func (r *Registry) GetFamily(name string) (deb.Global, *deb.Set, error) {
	fn, ok := r.families[name]
	if !ok {
		return deb.Global{}, nil, fmt.Errorf("unknown model family: %s", name)
	}
	glo, par := fn()
	return glo, par, nil
}

// GetSolver maps a solver name to its stiffness selector.
func (r *Registry) GetSolver(name string) (deb.Stiffness, error) {
	s, ok := r.solvers[name]
	if !ok {
		return deb.NonStiff, fmt.Errorf("unknown solver: %s", name)
	}
	return s, nil
}

func (r *Registry) ListFamilies() []string {
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
