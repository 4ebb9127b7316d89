package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquatox/debsim/internal/deb"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, deb.Compound, cfg.Global.Kind)
	assert.Equal(t, 12.8, cfg.Scenarios[0].X0[0])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")

	cfg := GetPreset("menidia", "hypoxia")
	require.NotNil(t, cfg)
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Name, loaded.Name)
	assert.Equal(t, cfg.Global.Kind, loaded.Global.Kind)
	assert.Equal(t, cfg.Params.JAm.Value, loaded.Params.JAm.Value)
	require.Len(t, loaded.Scenarios, len(cfg.Scenarios))
	require.NotNil(t, loaded.Scenarios[0].Oxygen)
	assert.Equal(t, cfg.Scenarios[0].Oxygen.Values, loaded.Scenarios[0].Oxygen.Values)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_BadScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scenarios = []Scenario{{ID: 1, X0: []float64{12.8}}}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Scenarios = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Times.Points = 1
	assert.Error(t, cfg.Validate())
}

func TestGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Times = TimeGrid{From: 0, To: 10, Points: 11}
	grid := cfg.Grid()
	require.Len(t, grid, 11)
	assert.Equal(t, 0.0, grid[0])
	assert.Equal(t, 10.0, grid[10])
	assert.InDelta(t, 3.0, grid[3], 1e-12)
}

func TestForcing(t *testing.T) {
	cfg := GetPreset("menidia", "hypoxia")
	set, err := cfg.Forcing()
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.NotNil(t, set.Lookup(1))
	assert.Nil(t, set.Lookup(99))

	plain := GetPreset("lymnaea", "default")
	set, err = plain.Forcing()
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("lymnaea", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "default"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets("lymnaea")
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "starved")
	assert.Nil(t, ListPresets("nonexistent"))
}

func TestPresetsAllValid(t *testing.T) {
	for _, family := range Families() {
		for _, name := range ListPresets(family) {
			t.Run(family+"/"+name, func(t *testing.T) {
				require.NoError(t, GetPreset(family, name).Validate())
			})
		}
	}
}
