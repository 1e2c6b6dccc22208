package results

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/pipeflow/network"
	"github.com/flowgrid/pipeflow/pit"
)

func intPtr(i int) *int { return &i }

func builtWaterPipe(t *testing.T, sections int) *network.Built {
	t.Helper()
	net := &network.Net{
		Fluid: "water",
		Junctions: []network.Junction{
			{Name: "a", PnBar: 2.0, TK: 293.15},
			{Name: "b", PnBar: 1.9, TK: 293.15},
		},
		Pipes: []network.Pipe{
			{From: "a", To: "b", LengthM: 100, DiameterM: 0.05, KMm: 0.1, Sections: sections},
		},
		ExtGrids: []network.ExtGrid{{Junction: "a", PBar: 2.0}},
	}
	b, err := net.Build()
	require.NoError(t, err)
	return b
}

func TestExtractAveragesOverSections(t *testing.T) {
	b := builtWaterPipe(t, 2)
	bt := b.Branches
	require.Equal(t, 2, bt.Len())
	bt.V[0], bt.V[1] = 0.5, 0.5

	res := Extract(b.Nodes, bt, b.Lookups, b.Fluid)
	require.Len(t, res, 1)
	r := res[0]

	// Two sub-branches at the same velocity report one element value,
	// not the group sum.
	want := bt.Rho[0] * bt.Area[0] * 0.5
	assert.InDelta(t, 0.5, r.VMeanMPerS, 1e-12)
	assert.InDelta(t, want, r.MdotFromKgPerS, 1e-12)
	assert.InDelta(t, -want, r.MdotToKgPerS, 1e-12)
	assert.InDelta(t, want/bt.Rho[0], r.VdotM3PerS, 1e-9)

	// Endpoint pressures come from the element's outer nodes, not the
	// interior section node.
	assert.Equal(t, b.Nodes.Pressure[0], r.PFromBar)
	assert.Equal(t, b.Nodes.Pressure[1], r.PToBar)

	// Liquid networks carry no normfactor columns.
	assert.Equal(t, 0.0, r.NormfactorFrom)
	assert.Equal(t, 0.0, r.VFromMPerS)
}

func TestExtractGasNormfactors(t *testing.T) {
	net := &network.Net{
		Fluid: "lgas",
		Junctions: []network.Junction{
			{Name: "a", PnBar: 4.0, TK: 293.15},
			{Name: "b", PnBar: 3.0, TK: 293.15},
		},
		Pipes: []network.Pipe{
			{From: "a", To: "b", LengthM: 500, DiameterM: 0.1, KMm: 0.1},
		},
		ExtGrids: []network.ExtGrid{{Junction: "a", PBar: 4.0}},
	}
	b, err := net.Build()
	require.NoError(t, err)
	bt := b.Branches
	bt.V[0] = 3.0

	res := Extract(b.Nodes, bt, b.Lookups, b.Fluid)
	require.Len(t, res, 1)
	r := res[0]

	nodes := b.Nodes
	pFromAbs := nodes.Pressure[0] + nodes.PAmb[0]
	pToAbs := nodes.Pressure[1] + nodes.PAmb[1]
	nfFrom := pit.NormalPressure * bt.TMean[0] * b.Fluid.Compressibility(pFromAbs) /
		(pFromAbs * pit.NormalTemperature)
	nfTo := pit.NormalPressure * bt.TMean[0] * b.Fluid.Compressibility(pToAbs) /
		(pToAbs * pit.NormalTemperature)

	assert.InDelta(t, nfFrom, r.NormfactorFrom, 1e-12)
	assert.InDelta(t, nfTo, r.NormfactorTo, 1e-12)
	// The gas expands toward the low-pressure end.
	assert.Greater(t, r.NormfactorTo, r.NormfactorFrom)
	assert.InDelta(t, 3.0*nfFrom, r.VFromMPerS, 1e-12)
	assert.InDelta(t, 3.0*nfTo, r.VToMPerS, 1e-12)
	assert.Less(t, r.VFromMPerS, r.VToMPerS)

	// normfactor scales with Z and inversely with absolute pressure.
	invFrom := r.NormfactorFrom * pFromAbs / b.Fluid.Compressibility(pFromAbs)
	invTo := r.NormfactorTo * pToAbs / b.Fluid.Compressibility(pToAbs)
	assert.InDelta(t, invFrom, invTo, 1e-12)
}

func TestExtractPlacesUnsortedIndices(t *testing.T) {
	net := &network.Net{
		Fluid: "water",
		Junctions: []network.Junction{
			{Name: "a", PnBar: 2.0, TK: 293.15},
			{Name: "b", PnBar: 1.9, TK: 293.15},
			{Name: "c", PnBar: 1.8, TK: 293.15},
		},
		Pipes: []network.Pipe{
			{From: "a", To: "b", LengthM: 100, DiameterM: 0.05, KMm: 0.1, Index: intPtr(7)},
			{From: "b", To: "c", LengthM: 100, DiameterM: 0.05, KMm: 0.1, Index: intPtr(2)},
		},
		ExtGrids: []network.ExtGrid{{Junction: "a", PBar: 2.0}},
	}
	b, err := net.Build()
	require.NoError(t, err)

	res := Extract(b.Nodes, b.Branches, b.Lookups, b.Fluid)
	require.Len(t, res, 2)
	assert.Equal(t, 2, res[0].Index)
	assert.Equal(t, 7, res[1].Index)
	// Index 2 is the b-c pipe.
	assert.Equal(t, b.Nodes.Pressure[1], res[0].PFromBar)
}

func TestExtractSkipsInactiveElements(t *testing.T) {
	closed := false
	net := &network.Net{
		Fluid: "water",
		Junctions: []network.Junction{
			{Name: "a", PnBar: 1, TK: 293.15},
			{Name: "b", PnBar: 1, TK: 293.15},
		},
		Valves:   []network.Valve{{From: "a", To: "b", DiameterM: 0.05, Opened: &closed}},
		ExtGrids: []network.ExtGrid{{Junction: "a", PBar: 1}},
	}
	b, err := net.Build()
	require.NoError(t, err)

	res := Extract(b.Nodes, b.Branches, b.Lookups, b.Fluid)
	assert.Empty(t, res)
}

func TestWriteCSV(t *testing.T) {
	b := builtWaterPipe(t, 1)
	b.Branches.V[0] = 0.25
	res := Extract(b.Nodes, b.Branches, b.Lookups, b.Fluid)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(res, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "p_from_bar")
	assert.Contains(t, lines[0], "normfactor_from")
	assert.True(t, strings.HasPrefix(lines[1], "pipe,0,"))
}
