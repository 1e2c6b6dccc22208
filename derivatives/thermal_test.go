package derivatives

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowgrid/pipeflow/pit"
)

func thermalBranch(v float64) (*pit.NodeTable, *pit.BranchTable) {
	nodes, bt := singleBranch(2.0, 1.8, v)
	nodes.Temp[0] = 330
	nodes.Temp[1] = 320
	bt.Alpha[0] = 5
	bt.TExt[0] = 283.15
	bt.TOut[0] = 320
	bt.SyncThermalDirection()
	return nodes, bt
}

func TestThermalResidualAndPartials(t *testing.T) {
	nodes, bt := thermalBranch(0.9)
	rng := pit.Range{From: 0, To: 1}
	Thermal(nodes, bt, rng, fixedLift{tl: 1.5})

	advect := bt.Rho[0] * bt.Area[0] * bt.Cp[0] * 0.9
	alphaPerim := 5 * math.Pi * 0.05
	tMean := (330.0 + 320.0) / 2
	want := -(advect*(320-330-1.5) - alphaPerim*(283.15-tMean)*100)
	assert.InDelta(t, want, bt.LoadVecT[0], 1e-8)

	assert.InDelta(t, -advect+alphaPerim/2*100, bt.JacDT[0], 1e-9)
	assert.InDelta(t, advect+alphaPerim/2*100, bt.JacDT1[0], 1e-9)

	// Advective energy coupling at the downstream node.
	assert.InDelta(t, bt.Rho[0]*bt.Area[0]*0.9, bt.JacDTNode[0], 1e-9)
	assert.InDelta(t, bt.Rho[0]*bt.Area[0]*0.9*320, bt.LoadVecNodesT[0], 1e-6)
}

func TestThermalPartialSumIndependentOfVelocitySign(t *testing.T) {
	// The advective term cancels in the partial sum, leaving only the
	// wall heat transfer alpha*perimeter*length.
	alphaPerim := 5 * math.Pi * 0.05
	for _, v := range []float64{1.3, -1.3} {
		nodes, bt := thermalBranch(v)
		rng := pit.Range{From: 0, To: 1}
		Thermal(nodes, bt, rng, fixedLift{})
		assert.InDelta(t, alphaPerim*100, bt.JacDT[0]+bt.JacDT1[0], 1e-9)
	}
}

func TestThermalExternalHeatInput(t *testing.T) {
	nodes, bt := thermalBranch(0.9)
	bt.QExt[0] = 1000
	rng := pit.Range{From: 0, To: 1}
	Thermal(nodes, bt, rng, fixedLift{})
	withQ := bt.LoadVecT[0]

	bt.QExt[0] = 0
	Thermal(nodes, bt, rng, fixedLift{})
	assert.InDelta(t, -1000, withQ-bt.LoadVecT[0], 1e-9)
}

func TestRegistryMissingKindPanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(pit.KindPipe, PassiveLift{})
	assert.NotPanics(t, func() { reg.Lifter(pit.KindPipe) })
	assert.Panics(t, func() { reg.Lifter(pit.KindPump) })
}
