package derivatives

import (
	"math"

	"github.com/flowgrid/pipeflow/pit"
)

// Thermal evaluates the energy-balance residual and its partials
// w.r.t. inlet node temperature and branch outlet temperature for the
// rows [rng.From, rng.To), plus the advective energy coupling ρ·A·v
// and ρ·A·v·T_out contributed at the nodes. The inlet node follows the
// thermal direction columns, so the pass is valid for reversed flow.
func Thermal(nodes *pit.NodeTable, bt *pit.BranchTable, rng pit.Range, hooks Lifter) {
	if rng.Len() == 0 {
		return
	}
	hooks.TemperatureLift(nodes, bt, rng)
	for i := rng.From; i < rng.To; i++ {
		tIn := nodes.Temp[bt.FromNodeT[i]]
		tOut := bt.TOut[i]
		tMean := (tIn + tOut) / 2
		alphaPerim := bt.Alpha[i] * math.Pi * bt.Diameter[i]
		advect := bt.Rho[i] * bt.Area[i] * bt.Cp[i] * bt.VT[i]

		bt.LoadVecT[i] = -(advect*(tOut-tIn-bt.TL[i]) -
			alphaPerim*(bt.TExt[i]-tMean)*bt.Length[i] + bt.QExt[i])

		bt.JacDT[i] = -advect + alphaPerim/2*bt.Length[i]
		bt.JacDT1[i] = advect + alphaPerim/2*bt.Length[i]

		energyFlowDV := bt.Rho[i] * bt.VT[i] * bt.Area[i]
		bt.JacDTNode[i] = energyFlowDV
		bt.LoadVecNodesT[i] = energyFlowDV * tOut
	}
}
