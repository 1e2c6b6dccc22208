package solver

import (
	"github.com/james-bowman/sparse"

	"github.com/flowgrid/pipeflow/pit"
)

// The global hydraulic system couples node mass balances with branch
// momentum balances. Unknown layout: node pressures occupy columns
// [0, N), branch velocities [N, N+M). Row i < N is the mass balance of
// node i; row N+b is the momentum balance of branch b. Slack nodes and
// inactive branches are pinned with identity rows so the update leaves
// them untouched.

func assembleHydraulic(nodes *pit.NodeTable, bt *pit.BranchTable, dok *sparse.DOK, rhs []float64) {
	nn := nodes.Len()
	nb := bt.Len()
	touched := make([]bool, nn)
	for i := range rhs {
		rhs[i] = 0
	}
	for i := 0; i < nn; i++ {
		if !nodes.Slack[i] {
			rhs[i] = nodes.Demand[i]
		}
	}
	for b := 0; b < nb; b++ {
		row := nn + b
		if !bt.Active[b] {
			dok.Set(row, row, 1)
			continue
		}
		from, to := bt.FromNode[b], bt.ToNode[b]
		dok.Set(row, row, bt.JacDV[b])
		dok.Set(row, from, bt.JacDP[b])
		dok.Set(row, to, bt.JacDP1[b])
		rhs[row] = bt.LoadVec[b]

		// Mass coupling: a branch removes rho*A*v from its from node
		// and delivers it to its to node.
		if !nodes.Slack[from] {
			dok.Set(from, row, dok.At(from, row)-bt.JacDVNode[b])
			rhs[from] += bt.LoadVecNodes[b]
			touched[from] = true
		}
		if !nodes.Slack[to] {
			dok.Set(to, row, dok.At(to, row)+bt.JacDVNode[b])
			rhs[to] -= bt.LoadVecNodes[b]
			touched[to] = true
		}
	}
	for i := 0; i < nn; i++ {
		if nodes.Slack[i] || !touched[i] {
			dok.Set(i, i, 1)
			rhs[i] = 0
		}
	}
}

// The thermal system mirrors the hydraulic layout: node temperatures
// in columns [0, N), branch outlet temperatures in [N, N+M). Node rows
// balance advected energy using the thermal flow direction; branch
// rows are the energy balances of the branches.
func assembleThermal(nodes *pit.NodeTable, bt *pit.BranchTable, dok *sparse.DOK, rhs []float64) {
	nn := nodes.Len()
	nb := bt.Len()
	outflow := make([]float64, nn)
	touched := make([]bool, nn)
	for i := range rhs {
		rhs[i] = 0
	}
	for b := 0; b < nb; b++ {
		row := nn + b
		if !bt.Active[b] {
			dok.Set(row, row, 1)
			continue
		}
		in, out := bt.FromNodeT[b], bt.ToNodeT[b]
		dok.Set(row, in, bt.JacDT[b])
		dok.Set(row, row, bt.JacDT1[b])
		rhs[row] = bt.LoadVecT[b]

		if !nodes.Slack[out] {
			// Incoming enthalpy flux rho*A*v*T_out of the branch.
			dok.Set(out, row, dok.At(out, row)+bt.JacDTNode[b])
			rhs[out] -= bt.LoadVecNodesT[b]
			touched[out] = true
		}
		outflow[in] += bt.JacDTNode[b]
	}
	for i := 0; i < nn; i++ {
		if nodes.Slack[i] {
			dok.Set(i, i, 1)
			rhs[i] = 0
			continue
		}
		// Sinks extract at the node temperature; sources enter there
		// as negative extraction.
		total := outflow[i] + nodes.Demand[i]
		if !touched[i] && total == 0 {
			dok.Set(i, i, 1)
			rhs[i] = 0
			continue
		}
		dok.Set(i, i, dok.At(i, i)-total)
		rhs[i] += total * nodes.Temp[i]
	}
}
