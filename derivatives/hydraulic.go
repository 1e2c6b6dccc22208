// Package derivatives holds the per-branch physics kernels of the
// steady-state solver: the residuals ("load vectors") and analytic
// Jacobian entries of the momentum and energy balances that the Newton
// driver assembles into the global system. Each call is a stateless
// pass over one branch-kind row range of the shared tables; degenerate
// inputs (zero length, zero velocity, equal endpoint pressures) are
// handled analytically and never produce NaN or Inf.
package derivatives

import (
	"math"

	"github.com/flowgrid/pipeflow/fluids"
	"github.com/flowgrid/pipeflow/friction"
	"github.com/flowgrid/pipeflow/pit"
)

// Options select the friction correlation for the hydraulic pass.
type Options struct {
	FrictionModel friction.Model
	Friction      friction.Options
}

// Workspace holds the scratch buffers of the hydraulic pass so the hot
// loops run allocation free across Newton iterations. The caller owns
// it; the engines only grow and overwrite it.
type Workspace struct {
	pFromAbs, pToAbs  []float64
	heightDiff        []float64
	zeroLength        []float64
	derLambda         []float64
	pm, dpm, dpm1     []float64
	compFact          []float64
	derComp, derComp1 []float64
}

func (ws *Workspace) grow(n int) {
	if cap(ws.pFromAbs) < n {
		ws.pFromAbs = make([]float64, n)
		ws.pToAbs = make([]float64, n)
		ws.heightDiff = make([]float64, n)
		ws.zeroLength = make([]float64, n)
		ws.derLambda = make([]float64, n)
		ws.pm = make([]float64, n)
		ws.dpm = make([]float64, n)
		ws.dpm1 = make([]float64, n)
		ws.compFact = make([]float64, n)
		ws.derComp = make([]float64, n)
		ws.derComp1 = make([]float64, n)
	}
	ws.pFromAbs = ws.pFromAbs[:n]
	ws.pToAbs = ws.pToAbs[:n]
	ws.heightDiff = ws.heightDiff[:n]
	ws.zeroLength = ws.zeroLength[:n]
	ws.derLambda = ws.derLambda[:n]
	ws.pm = ws.pm[:n]
	ws.dpm = ws.dpm[:n]
	ws.dpm1 = ws.dpm1[:n]
	ws.compFact = ws.compFact[:n]
	ws.derComp = ws.derComp[:n]
	ws.derComp1 = ws.derComp1[:n]
}

// Hydraulic evaluates the momentum residual and its partials w.r.t.
// velocity and both endpoint pressures for the rows [rng.From, rng.To)
// of the branch table, plus the nodal mass-coupling terms ρ·A and
// ρ·A·v. Node state is read only; results land in the branch table's
// residual/Jacobian columns. An empty range is a no-op.
func Hydraulic(nodes *pit.NodeTable, bt *pit.BranchTable, rng pit.Range, fl *fluids.Fluid, hooks Lifter, ws *Workspace, opts Options) {
	n := rng.Len()
	if n == 0 {
		return
	}
	ws.grow(n)

	f, t := rng.From, rng.To
	for i := f; i < t; i++ {
		from, to := bt.FromNode[i], bt.ToNode[i]
		bt.TMean[i] = (nodes.Temp[from] + nodes.Temp[to]) / 2
		ws.pFromAbs[i-f] = nodes.Pressure[from] + nodes.PAmb[from]
		ws.pToAbs[i-f] = nodes.Pressure[to] + nodes.PAmb[to]
		ws.heightDiff[i-f] = nodes.Height[from] - nodes.Height[to]
		if bt.Length[i] != 0 {
			ws.zeroLength[i-f] = 1
		} else {
			ws.zeroLength[i-f] = 0
		}
	}

	friction.Lambda(bt.V[f:t], bt.Eta[f:t], bt.Rho[f:t], bt.Diameter[f:t], bt.Roughness[f:t],
		fl.IsGas, opts.FrictionModel, ws.zeroLength, opts.Friction, bt.Lambda[f:t], bt.Re[f:t])
	friction.DerLambda(bt.V[f:t], bt.Eta[f:t], bt.Rho[f:t], bt.Diameter[f:t], bt.Roughness[f:t],
		opts.FrictionModel, bt.Lambda[f:t], ws.derLambda)

	hooks.PressureLift(nodes, bt, rng)

	if fl.IsGas {
		hydraulicComp(bt, rng, fl, ws)
	} else {
		hydraulicIncomp(bt, rng, ws)
	}

	for i := f; i < t; i++ {
		massFlowDV := bt.Rho[i] * bt.Area[i]
		bt.JacDVNode[i] = massFlowDV
		bt.LoadVecNodes[i] = massFlowDV * bt.V[i]
	}
}

// hydraulicIncomp fills the incompressible momentum residual
//
//	p_from_abs − p_to_abs + PL + ρ/(2·Pconv)·(2·g·Δh − v·|v|·F)
//
// with F = λ·L/d + ζ, and its partials. The pressure terms are linear,
// so ∂/∂p_from = −1 and ∂/∂p_to = +1 exactly.
func hydraulicIncomp(bt *pit.BranchTable, rng pit.Range, ws *Workspace) {
	for i := rng.From; i < rng.To; i++ {
		j := i - rng.From
		vAbs := math.Abs(bt.V[i])
		v2 := bt.V[i] * vAbs
		frictionTerm := bt.Length[i]*bt.Lambda[i]/bt.Diameter[i] + bt.LossCoeff[i]
		constPTerm := bt.Rho[i] / (2 * pit.PConversion)

		bt.JacDV[i] = constPTerm * (2*vAbs*frictionTerm +
			ws.derLambda[j]*bt.Length[i]/bt.Diameter[i]*v2)
		bt.LoadVec[i] = ws.pFromAbs[j] - ws.pToAbs[j] + bt.PL[i] +
			constPTerm*(2*pit.Gravitation*ws.heightDiff[j]-v2*frictionTerm)
		bt.JacDP[i] = -1
		bt.JacDP1[i] = 1
	}
}

// hydraulicComp is the compressible counterpart. The density variation
// along the branch is corrected by the compressibility factor at the
// flow-weighted mean pressure; all three partials carry the factor's
// sensitivity chained through the mean-pressure derivatives. Gas
// pressure loss follows the laminar STANET formulation.
func hydraulicComp(bt *pit.BranchTable, rng pit.Range, fl *fluids.Fluid, ws *Workspace) {
	n := rng.Len()
	MediumPressure(ws.pFromAbs[:n], ws.pToAbs[:n], ws.pm, ws.dpm, ws.dpm1)
	dZdp := fl.DerCompressibility()
	for j := 0; j < n; j++ {
		ws.compFact[j] = fl.Compressibility(ws.pm[j])
		ws.derComp[j] = dZdp * ws.dpm[j]
		ws.derComp1[j] = dZdp * ws.dpm1[j]
	}

	for i := rng.From; i < rng.To; i++ {
		j := i - rng.From
		vAbs := math.Abs(bt.V[i])
		v2 := bt.V[i] * vAbs
		pSum := ws.pFromAbs[j] + ws.pToAbs[j]
		pSumDiv := 1 / pSum
		comp := ws.compFact[j]

		constLambda := pit.NormalPressure * bt.Rho[i] * bt.TMean[i] /
			(pit.NormalTemperature * pit.PConversion)
		constHeight := bt.Rho[i] * pit.NormalTemperature * pit.Gravitation * ws.heightDiff[j] /
			(2 * pit.NormalPressure * bt.TMean[i] * pit.PConversion)
		frictionTerm := bt.Lambda[i]*bt.Length[i]/bt.Diameter[i] + bt.LossCoeff[i]

		bt.LoadVec[i] = ws.pFromAbs[j] - ws.pToAbs[j] + bt.PL[i] + constHeight*pSum -
			constLambda*comp*v2*frictionTerm*pSumDiv

		pDeriv := constLambda * v2 * frictionTerm * pSumDiv
		bt.JacDP[i] = -1 - constHeight + pDeriv*(ws.derComp[j]-comp*pSumDiv)
		bt.JacDP1[i] = 1 - constHeight + pDeriv*(ws.derComp1[j]-comp*pSumDiv)

		bt.JacDV[i] = 2*constLambda*comp*pSumDiv*vAbs*frictionTerm +
			constLambda*comp*ws.derLambda[j]*bt.Length[i]*v2/(pSum*bt.Diameter[i])
	}
}
