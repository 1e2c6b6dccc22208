package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/pipeflow/solver"
)

func TestRunSolve(t *testing.T) {
	fileInput := []byte(`
name: cli test net
fluid: water
junctions:
  - {name: j0, pn_bar: 2.0, t_k: 293.15}
  - {name: j1, pn_bar: 2.0, t_k: 293.15}
pipes:
  - {from: j0, to: j1, length_m: 100, diameter_m: 0.05, k_mm: 0.1}
ext_grids:
  - {junction: j0, p_bar: 2.0, t_k: 293.15}
sinks:
  - {junction: j1, mdot_kg_per_s: 0.2}
`)
	dir := t.TempDir()
	netFile := filepath.Join(dir, "net.yaml")
	outFile := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(netFile, fileInput, 0o644))

	RunSolve(netFile, outFile, solver.Hydraulics, false)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "v_mean_m_per_s")
	assert.True(t, strings.HasPrefix(lines[1], "pipe,0,"))
}
