// Package results turns the converged solver tables back into
// user-facing per-element values. A logical element may be split into
// several internal sub-branches; its result is the group sum divided
// by the segment count, so a uniform internal velocity is reported
// once, not summed.
package results

import (
	"sort"

	"github.com/flowgrid/pipeflow/fluids"
	"github.com/flowgrid/pipeflow/network"
	"github.com/flowgrid/pipeflow/pit"
)

// ElementResult is one row of the user-facing result table. Gas-only
// columns stay zero for liquid networks.
type ElementResult struct {
	Kind           string  `csv:"kind"`
	Index          int     `csv:"index"`
	PFromBar       float64 `csv:"p_from_bar"`
	PToBar         float64 `csv:"p_to_bar"`
	TFromK         float64 `csv:"t_from_k"`
	TToK           float64 `csv:"t_to_k"`
	VMeanMPerS     float64 `csv:"v_mean_m_per_s"`
	MdotFromKgPerS float64 `csv:"mdot_from_kg_per_s"`
	MdotToKgPerS   float64 `csv:"mdot_to_kg_per_s"`
	VdotM3PerS     float64 `csv:"vdot_m3_per_s"`
	VFromMPerS     float64 `csv:"v_from_m_per_s"`
	VToMPerS       float64 `csv:"v_to_m_per_s"`
	NormfactorFrom float64 `csv:"normfactor_from"`
	NormfactorTo   float64 `csv:"normfactor_to"`
}

// Extract runs once after convergence and reads the tables as a
// snapshot. Elements whose sub-branches are all inactive (e.g. closed
// valves) are omitted. An empty network yields an empty slice.
func Extract(nodes *pit.NodeTable, bt *pit.BranchTable, lk network.Lookups, fl *fluids.Fluid) []ElementResult {
	var out []ElementResult
	for _, kind := range network.KindOrder {
		rng := lk.Ranges[kind]
		if rng.Len() == 0 {
			continue
		}
		out = append(out, extractKind(nodes, bt, rng, lk.Elements[kind], kind, fl)...)
	}
	return out
}

func extractKind(nodes *pit.NodeTable, bt *pit.BranchTable, rng pit.Range, elems []network.ElementRef, kind pit.Kind, fl *fluids.Fluid) []ElementResult {
	n := rng.Len()
	var (
		groups    = bt.ElementIdx[rng.From:rng.To]
		v         = make([]float64, n)
		mf        = make([]float64, n)
		vf        = make([]float64, n)
		active    = make([]float64, n)
		ones      = make([]float64, n)
		fromNodes = make([]int, n)
		toNodes   = make([]int, n)
	)
	for j := 0; j < n; j++ {
		i := rng.From + j
		fromNodes[j] = bt.FromNode[i]
		toNodes[j] = bt.ToNode[i]
		v[j] = bt.V[i]
		mf[j] = bt.Rho[i] * bt.Area[i] * bt.V[i]
		tMean := (nodes.Temp[fromNodes[j]] + nodes.Temp[toNodes[j]]) / 2
		vf[j] = mf[j] / fl.Density(tMean)
		ones[j] = 1
		if bt.Active[i] {
			active[j] = 1
		}
	}

	vals := [][]float64{v, mf, vf, active, ones}
	var nfFrom, nfTo, vGasFromOrd, vGasToOrd []float64
	var elemFrom, elemTo []int
	if fl.IsGas {
		nfFrom = make([]float64, n)
		nfTo = make([]float64, n)
		vGasFrom := make([]float64, n)
		vGasTo := make([]float64, n)
		for j := 0; j < n; j++ {
			i := rng.From + j
			pFromAbs := nodes.Pressure[fromNodes[j]] + nodes.PAmb[fromNodes[j]]
			pToAbs := nodes.Pressure[toNodes[j]] + nodes.PAmb[toNodes[j]]
			numerator := pit.NormalPressure * bt.TMean[i]
			nfFrom[j] = numerator * fl.Compressibility(pFromAbs) / (pFromAbs * pit.NormalTemperature)
			nfTo[j] = numerator * fl.Compressibility(pToAbs) / (pToAbs * pit.NormalTemperature)
			vGasFrom[j] = v[j] * nfFrom[j]
			vGasTo[j] = v[j] * nfTo[j]
		}
		vals = append(vals, nfFrom, nfTo)

		elemFrom = make([]int, len(elems))
		elemTo = make([]int, len(elems))
		for e, el := range elems {
			elemFrom[e] = el.FromNode
			elemTo[e] = el.ToNode
		}
		vGasFromOrd = pit.SelectFrom(fromNodes, elemFrom, vGasFrom)
		vGasToOrd = pit.SelectFrom(toNodes, elemTo, vGasTo)
	}

	keys, sums := pit.SumByGroup(groups, vals...)
	posByGroup := make(map[int]int, len(keys))
	for p, k := range keys {
		posByGroup[k] = p
	}

	// Stable placement back onto the user's element ordering.
	placement := make([]int, len(elems))
	for i := range placement {
		placement[i] = i
	}
	sort.SliceStable(placement, func(a, b int) bool {
		return elems[placement[a]].UserIndex < elems[placement[b]].UserIndex
	})

	var out []ElementResult
	for _, e := range placement {
		el := elems[e]
		g, ok := posByGroup[el.GroupIdx]
		if !ok {
			continue
		}
		count := sums[4][g]
		if sums[3][g] < 0.99 { // no active sub-branch left
			continue
		}
		r := ElementResult{
			Kind:           kind.String(),
			Index:          el.UserIndex,
			PFromBar:       nodes.Pressure[el.FromNode],
			PToBar:         nodes.Pressure[el.ToNode],
			TFromK:         nodes.Temp[el.FromNode],
			TToK:           nodes.Temp[el.ToNode],
			VMeanMPerS:     sums[0][g] / count,
			MdotFromKgPerS: sums[1][g] / count,
			MdotToKgPerS:   -sums[1][g] / count,
			VdotM3PerS:     sums[2][g] / count,
		}
		if fl.IsGas {
			r.NormfactorFrom = sums[5][g] / count
			r.NormfactorTo = sums[6][g] / count
			r.VFromMPerS = vGasFromOrd[e]
			r.VToMPerS = vGasToOrd[e]
		}
		out = append(out, r)
	}
	return out
}
