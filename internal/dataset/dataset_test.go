package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeCSV(t, "length.csv",
		"time,1,2\n"+
			"0,12.8,12.9\n"+
			"10,14.1,\n"+
			"20,16.0,15.8\n")

	tab, err := LoadTable(path, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "length", tab.Name)
	assert.Equal(t, 1.0, tab.Weight)
	assert.Equal(t, []float64{1, 2}, tab.Scenarios)
	assert.Equal(t, []float64{0, 10, 20}, tab.Times)
	assert.Equal(t, 3, tab.Rows())
	assert.Equal(t, 5, tab.Observed())
	assert.True(t, math.IsNaN(tab.Values[1][1]))
	assert.Equal(t, 16.0, tab.Values[2][0])
}

func TestLoadTable_NaNCell(t *testing.T) {
	path := writeCSV(t, "obs.csv",
		"time,1\n"+
			"0,NaN\n"+
			"5,2.5\n")

	tab, err := LoadTable(path, 1, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, tab.Weight)
	assert.True(t, math.IsNaN(tab.Values[0][0]))
	assert.Equal(t, 1, tab.Observed())
}

func TestLoadTable_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(t.TempDir(), "absent.csv"), 0, 1)
		assert.Error(t, err)
	})
	t.Run("header only", func(t *testing.T) {
		path := writeCSV(t, "empty.csv", "time,1\n")
		_, err := LoadTable(path, 0, 1)
		assert.ErrorIs(t, err, ErrEmptyTable)
	})
	t.Run("bad scenario header", func(t *testing.T) {
		path := writeCSV(t, "bad.csv", "time,ctrl\n0,1\n")
		_, err := LoadTable(path, 0, 1)
		assert.Error(t, err)
	})
	t.Run("bad value", func(t *testing.T) {
		path := writeCSV(t, "val.csv", "time,1\n0,abc\n")
		_, err := LoadTable(path, 0, 1)
		assert.Error(t, err)
	})
}

func TestLoadForcing(t *testing.T) {
	path := writeCSV(t, "oxygen.csv",
		"time,1,2\n"+
			"0,7.5,7.5\n"+
			"10,3.0,\n"+
			"20,2.0,7.5\n")

	set, err := LoadForcing(path)
	require.NoError(t, err)

	sr := set.Lookup(1)
	require.NotNil(t, sr)
	assert.InDelta(t, 5.25, sr.At(5), 1e-12)

	// Scenario 2 skips the missing sample, so it interpolates across
	// the gap.
	sr2 := set.Lookup(2)
	require.NotNil(t, sr2)
	assert.Equal(t, 2, sr2.Len())
	assert.InDelta(t, 7.5, sr2.At(10), 1e-12)
}
