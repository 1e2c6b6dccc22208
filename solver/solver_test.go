package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/pipeflow/network"
	"github.com/flowgrid/pipeflow/results"
)

func waterSeriesNet() *network.Net {
	return &network.Net{
		Name:  "water series",
		Fluid: "water",
		Junctions: []network.Junction{
			{Name: "j0", PnBar: 2.0, TK: 293.15},
			{Name: "j1", PnBar: 2.0, TK: 293.15},
			{Name: "j2", PnBar: 2.0, TK: 293.15},
		},
		Pipes: []network.Pipe{
			{From: "j0", To: "j1", LengthM: 100, DiameterM: 0.05, KMm: 0.1},
			{From: "j1", To: "j2", LengthM: 100, DiameterM: 0.05, KMm: 0.1},
		},
		ExtGrids: []network.ExtGrid{{Junction: "j0", PBar: 2.0, TK: 330}},
		Sinks:    []network.Sink{{Junction: "j2", MdotKgPerS: 0.3}},
	}
}

func TestSolveWaterSeries(t *testing.T) {
	b, err := waterSeriesNet().Build()
	require.NoError(t, err)

	rep, err := Solve(b, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, rep.HydraulicIterations, 0)
	assert.Less(t, rep.ResidualNorm, 1e-3)

	// Mass conservation: both pipes carry the sink demand.
	bt := b.Branches
	for i := 0; i < bt.Len(); i++ {
		mdot := bt.Rho[i] * bt.Area[i] * bt.V[i]
		assert.InDelta(t, 0.3, mdot, 1e-4)
	}
	// Both branches contribute equal-magnitude mass coupling at the
	// shared node.
	assert.InDelta(t, bt.LoadVecNodes[0], bt.LoadVecNodes[1], 1e-6)

	// Pressure falls along the flow direction.
	nodes := b.Nodes
	assert.Greater(t, nodes.Pressure[0], nodes.Pressure[1])
	assert.Greater(t, nodes.Pressure[1], nodes.Pressure[2])
}

func TestSolveGasPipe(t *testing.T) {
	net := &network.Net{
		Name:  "gas line",
		Fluid: "lgas",
		Junctions: []network.Junction{
			{Name: "g0", PnBar: 3.0, TK: 293.15},
			{Name: "g1", PnBar: 3.0, TK: 293.15},
		},
		Pipes: []network.Pipe{
			{From: "g0", To: "g1", LengthM: 1000, DiameterM: 0.1, KMm: 0.1},
		},
		ExtGrids: []network.ExtGrid{{Junction: "g0", PBar: 3.0, TK: 293.15}},
		Sinks:    []network.Sink{{Junction: "g1", MdotKgPerS: 0.05}},
	}
	b, err := net.Build()
	require.NoError(t, err)

	_, err = Solve(b, DefaultOptions())
	require.NoError(t, err)

	bt := b.Branches
	mdot := bt.Rho[0] * bt.Area[0] * bt.V[0]
	assert.InDelta(t, 0.05, mdot, 1e-5)
	assert.Greater(t, b.Nodes.Pressure[0], b.Nodes.Pressure[1])
	assert.False(t, math.IsNaN(b.Nodes.Pressure[1]))
}

func TestSolveWithHeatTransfer(t *testing.T) {
	net := waterSeriesNet()
	for i := range net.Pipes {
		net.Pipes[i].AlphaWM2K = 10
		net.Pipes[i].TExtK = 283.15
	}
	b, err := net.Build()
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Mode = All
	rep, err := Solve(b, opts)
	require.NoError(t, err)
	assert.Greater(t, rep.ThermalIterations, 0)

	nodes := b.Nodes
	// Feed temperature is pinned; downstream the fluid cools toward
	// ambient but cannot undershoot it.
	assert.Equal(t, 330.0, nodes.Temp[0])
	assert.Less(t, nodes.Temp[2], 330.0)
	assert.Greater(t, nodes.Temp[2], 283.15)
	assert.Less(t, nodes.Temp[2], nodes.Temp[1])
}

func TestSolvePumpLift(t *testing.T) {
	net := &network.Net{
		Name:  "pumped loop",
		Fluid: "water",
		Junctions: []network.Junction{
			{Name: "suction", PnBar: 1.0, TK: 293.15},
			{Name: "discharge", PnBar: 1.0, TK: 293.15},
			{Name: "consumer", PnBar: 1.0, TK: 293.15},
		},
		Pipes: []network.Pipe{
			{From: "discharge", To: "consumer", LengthM: 200, DiameterM: 0.05, KMm: 0.1},
		},
		Pumps:    []network.Pump{{From: "suction", To: "discharge", DiameterM: 0.05, PLiftBar: 2.0}},
		ExtGrids: []network.ExtGrid{{Junction: "suction", PBar: 1.0, TK: 293.15}},
		Sinks:    []network.Sink{{Junction: "consumer", MdotKgPerS: 0.2}},
	}
	b, err := net.Build()
	require.NoError(t, err)

	_, err = Solve(b, DefaultOptions())
	require.NoError(t, err)

	nodes := b.Nodes
	// A zero-length, zero-loss pump enforces exactly its lift.
	assert.InDelta(t, nodes.Pressure[0]+2.0, nodes.Pressure[1], 1e-6)
	assert.Greater(t, nodes.Pressure[1], nodes.Pressure[2])
}

func TestSolveClosedValveBranchStaysPinned(t *testing.T) {
	closed := false
	net := waterSeriesNet()
	net.Valves = []network.Valve{
		{From: "j0", To: "j2", DiameterM: 0.05, Opened: &closed},
	}
	b, err := net.Build()
	require.NoError(t, err)

	_, err = Solve(b, DefaultOptions())
	require.NoError(t, err)

	bt := b.Branches
	valveRow := b.Lookups.Ranges[network.KindOrder[1]].From
	assert.Equal(t, 0.0, bt.V[valveRow])

	// The closed bypass is absent from the results.
	res := results.Extract(b.Nodes, bt, b.Lookups, b.Fluid)
	for _, r := range res {
		assert.NotEqual(t, "valve", r.Kind)
	}
}

func TestSolveEmptyNetwork(t *testing.T) {
	net := &network.Net{
		Fluid:     "water",
		Junctions: []network.Junction{{Name: "only", PnBar: 1}},
		ExtGrids:  []network.ExtGrid{{Junction: "only", PBar: 1}},
	}
	b, err := net.Build()
	require.NoError(t, err)
	rep, err := Solve(b, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.HydraulicIterations)
	assert.Empty(t, results.Extract(b.Nodes, b.Branches, b.Lookups, b.Fluid))
}
