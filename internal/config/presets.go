package config

import (
	"sort"

	"github.com/aquatox/debsim/internal/deb"
)

// Presets catalogs ready-made experiments per organism family.
var Presets = map[string]map[string]*Config{
	"lymnaea": {
		"default": {
			Name:   "lymnaea-default",
			Global: deb.SnailGlobal(),
			Params: deb.SnailParams(),
			Times:  TimeGrid{From: 0, To: 150, Points: 76},
			Scenarios: []Scenario{
				{ID: 1, X0: []float64{12.8, 0}},
			},
		},
		"starved": {
			Name:   "lymnaea-starved",
			Global: snailNoShrink(),
			Params: starvedSnailParams(),
			Times:  TimeGrid{From: 0, To: 120, Points: 61},
			Scenarios: []Scenario{
				{ID: 1, X0: []float64{25, 0}},
			},
		},
		"brood-pouch": {
			Name:   "lymnaea-brood-pouch",
			Global: snailBroodPouch(),
			Params: deb.SnailParams(),
			Times:  TimeGrid{From: 0, To: 200, Points: 101},
			Scenarios: []Scenario{
				{ID: 1, X0: []float64{12.8, 0}},
			},
		},
	},
	"menidia": {
		"control": {
			Name:   "menidia-control",
			Global: deb.SilversideGlobal(),
			Params: deb.SilversideParams(),
			Times:  TimeGrid{From: 0, To: 30, Points: 61},
			Scenarios: []Scenario{
				{ID: 1, X0: []float64{5, 0, 0.15, 1}},
			},
		},
		"hypoxia": {
			Name:   "menidia-hypoxia",
			Global: deb.SilversideGlobal(),
			Params: deb.SilversideParams(),
			Times:  TimeGrid{From: 0, To: 30, Points: 61},
			Scenarios: []Scenario{
				{ID: 1, X0: []float64{5, 0, 0.15, 1},
					Oxygen: &SeriesConfig{
						Times:  []float64{0, 5, 10, 15, 20, 25, 30},
						Values: []float64{7.5, 7.0, 4.0, 2.5, 2.0, 3.5, 6.5},
					}},
				{ID: 2, X0: []float64{5, 0, 0.15, 1},
					Oxygen: &SeriesConfig{
						Times:  []float64{0, 30},
						Values: []float64{7.5, 7.5},
					}},
			},
		},
	},
}

func snailNoShrink() deb.Global {
	g := deb.SnailGlobal()
	g.Len = deb.LenNoShrink
	return g
}

func snailBroodPouch() deb.Global {
	g := deb.SnailGlobal()
	g.Tbp = 20
	return g
}

func starvedSnailParams() *deb.Set {
	p := deb.SnailParams()
	p.F.Value = 0.3
	return p
}

// GetPreset returns the named preset, or nil when the family or name
// is unknown.
func GetPreset(family, name string) *Config {
	m, ok := Presets[family]
	if !ok {
		return nil
	}
	return m[name]
}

// ListPresets names the presets of one family, sorted.
func ListPresets(family string) []string {
	m, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Families lists the organism families with presets, sorted.
func Families() []string {
	out := make([]string, 0, len(Presets))
	for f := range Presets {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
