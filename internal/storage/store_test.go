package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquatox/debsim/internal/fit"
	"github.com/aquatox/debsim/internal/ode"
	"github.com/aquatox/debsim/internal/simulate"
)

func sampleResult() *simulate.Result {
	return &simulate.Result{
		Times:   []float64{0, 10, 20},
		States:  []ode.State{{12.8, 0}, {14.1, 0}, {16.0, 0.5}},
		Labels:  []string{"L", "R"},
		Events:  []float64{15.2},
		Puberty: 15.2,
		Solver:  "dopri",
		Stats:   ode.Statistics{Steps: 42, Evaluations: 260},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	res := sampleResult()
	metrics := map[string]float64{"final_size": 16.0, "reproduction": 0.5}

	runID, err := st.Save("lymnaea", "compound", 1, res, metrics)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "lymnaea_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "lymnaea", meta.Name)
	assert.Equal(t, "compound", meta.Model)
	assert.Equal(t, "dopri", meta.Solver)
	assert.Equal(t, 1.0, meta.Scenario)
	assert.Equal(t, 42, meta.Steps)
	assert.Equal(t, 16.0, meta.Metrics["final_size"])

	times, states, labels, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"L", "R"}, labels)
	require.Len(t, times, 3)
	assert.Equal(t, 10.0, times[1])
	assert.InDelta(t, 14.1, states[1][0], 1e-9)
	assert.InDelta(t, 0.5, states[2][1], 1e-9)
}

func TestStore_List(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save("a", "compound", 1, sampleResult(), nil)
	require.NoError(t, err)
	_, err = st.Save("b", "flux", 2, sampleResult(), nil)
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_ListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,L,R", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0.000000,12.800000"))
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, "lymnaea", "compound", 1, sampleResult(), map[string]float64{"final_size": 16}))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "lymnaea", data.Name)
	assert.Equal(t, []string{"L", "R"}, data.Labels)
	assert.Equal(t, 16.0, data.Metrics["final_size"])
	assert.InDelta(t, 15.2, data.Events[0], 1e-12)
}

func TestFitIndex_AddList(t *testing.T) {
	ctx := context.Background()
	ix, err := OpenFitIndex(ctx, filepath.Join(t.TempDir(), "fits.db"))
	require.NoError(t, err)
	defer ix.Close()

	report := &fit.Report{
		Name:        "menidia",
		SSQStart:    12.5,
		SSQ:         0.31,
		Evaluations: 240,
		Params: []fit.ParamResult{
			{Name: "JAm", Start: 0.1, Fitted: 0.08},
			{Name: "hb", Start: 0.05, Fitted: 0.042},
		},
	}
	id, err := ix.Add(ctx, report)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := ix.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "menidia", rec.Name)
	assert.Equal(t, 240, rec.Evaluations)
	assert.False(t, math.IsNaN(rec.SSQ))
	assert.Equal(t, 0.08, rec.Fitted["JAm"])
	assert.Equal(t, 0.042, rec.Fitted["hb"])
}
