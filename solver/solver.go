// Package solver runs the outer Newton-Raphson iteration over the
// network tables: the derivative engines fill the per-branch residual
// and Jacobian columns, the assembler sums them into a sparse global
// system, and the linear solve updates pressures, velocities and
// temperatures until the load vector vanishes.
package solver

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/flowgrid/pipeflow/derivatives"
	"github.com/flowgrid/pipeflow/friction"
	"github.com/flowgrid/pipeflow/network"
)

// Mode selects which balances to solve.
type Mode int

const (
	// Hydraulics solves mass and momentum only.
	Hydraulics Mode = iota
	// All solves hydraulics first, then the heat transfer pass on the
	// converged flow field.
	All
)

type Options struct {
	Mode          Mode
	FrictionModel friction.Model
	Friction      friction.Options
	MaxIterations int
	TolP          float64 // bar
	TolV          float64 // m/s
	TolT          float64 // K
	Damping       float64
	Verbose       bool
}

func DefaultOptions() Options {
	return Options{
		Mode:          Hydraulics,
		FrictionModel: friction.Nikuradse,
		MaxIterations: 100,
		TolP:          1e-5,
		TolV:          1e-5,
		TolT:          1e-4,
		Damping:       1,
	}
}

// Report summarizes a converged run.
type Report struct {
	HydraulicIterations int
	ThermalIterations   int
	ResidualNorm        float64
}

// Solve drives the Newton iteration on a built network. The tables in
// b are updated in place; on success they hold the converged state the
// result extraction reads.
func Solve(b *network.Built, opts Options) (Report, error) {
	var rep Report
	if b.Branches.Len() == 0 {
		return rep, nil
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.Damping <= 0 || opts.Damping > 1 {
		opts.Damping = 1
	}

	iters, res, err := runHydraulics(b, opts)
	rep.HydraulicIterations = iters
	rep.ResidualNorm = res
	if err != nil {
		return rep, err
	}
	if opts.Mode == All {
		b.Branches.SyncThermalDirection()
		rep.ThermalIterations, err = runThermal(b, opts)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func runHydraulics(b *network.Built, opts Options) (iterations int, residual float64, err error) {
	var (
		nodes = b.Nodes
		bt    = b.Branches
		nn    = nodes.Len()
		dim   = nn + bt.Len()
		rhs   = make([]float64, dim)
		dx    mat.VecDense
		ws    = &derivatives.Workspace{}
		dopts = derivatives.Options{FrictionModel: opts.FrictionModel, Friction: opts.Friction}
	)
	for iterations = 1; iterations <= opts.MaxIterations; iterations++ {
		for _, kind := range network.KindOrder {
			rng := b.Lookups.Ranges[kind]
			derivatives.Hydraulic(nodes, bt, rng, b.Fluid, b.Lifts.Lifter(kind), ws, dopts)
		}
		dok := sparse.NewDOK(dim, dim)
		assembleHydraulic(nodes, bt, dok, rhs)
		if err = solveLinear(dok, rhs, &dx); err != nil {
			return iterations, residual, fmt.Errorf("solver: hydraulic iteration %d: %w", iterations, err)
		}

		var maxDP, maxDV float64
		for i := 0; i < nn; i++ {
			d := opts.Damping * dx.AtVec(i)
			nodes.Pressure[i] += d
			maxDP = math.Max(maxDP, math.Abs(d))
		}
		for j := 0; j < bt.Len(); j++ {
			d := opts.Damping * dx.AtVec(nn+j)
			bt.V[j] += d
			maxDV = math.Max(maxDV, math.Abs(d))
		}
		residual = floats.Norm(rhs, math.Inf(1))
		if opts.Verbose {
			fmt.Printf("hydraulics iter %3d: residual = %11.4e, max dp = %10.3e, max dv = %10.3e\n",
				iterations, residual, maxDP, maxDV)
		}
		if maxDP < opts.TolP && maxDV < opts.TolV {
			return iterations, residual, nil
		}
	}
	return iterations - 1, residual, fmt.Errorf("solver: hydraulics did not converge within %d iterations (residual %g)",
		opts.MaxIterations, residual)
}

func runThermal(b *network.Built, opts Options) (iterations int, err error) {
	var (
		nodes = b.Nodes
		bt    = b.Branches
		nn    = nodes.Len()
		dim   = nn + bt.Len()
		rhs   = make([]float64, dim)
		dx    mat.VecDense
	)
	for iterations = 1; iterations <= opts.MaxIterations; iterations++ {
		for _, kind := range network.KindOrder {
			rng := b.Lookups.Ranges[kind]
			derivatives.Thermal(nodes, bt, rng, b.Lifts.Lifter(kind))
		}
		dok := sparse.NewDOK(dim, dim)
		assembleThermal(nodes, bt, dok, rhs)
		if err = solveLinear(dok, rhs, &dx); err != nil {
			return iterations, fmt.Errorf("solver: thermal iteration %d: %w", iterations, err)
		}
		var maxDT float64
		for i := 0; i < nn; i++ {
			d := opts.Damping * dx.AtVec(i)
			nodes.Temp[i] += d
			maxDT = math.Max(maxDT, math.Abs(d))
		}
		for j := 0; j < bt.Len(); j++ {
			d := opts.Damping * dx.AtVec(nn+j)
			bt.TOut[j] += d
			maxDT = math.Max(maxDT, math.Abs(d))
		}
		if opts.Verbose {
			fmt.Printf("heat transfer iter %3d: max dT = %10.3e\n", iterations, maxDT)
		}
		if maxDT < opts.TolT {
			return iterations, nil
		}
	}
	return iterations - 1, fmt.Errorf("solver: heat transfer did not converge within %d iterations", opts.MaxIterations)
}

func solveLinear(dok *sparse.DOK, rhs []float64, dx *mat.VecDense) error {
	var lu mat.LU
	lu.Factorize(dok.ToCSR())
	bVec := mat.NewVecDense(len(rhs), rhs)
	if err := lu.SolveVecTo(dx, false, bVec); err != nil {
		return fmt.Errorf("linear solve failed (singular system?): %w", err)
	}
	return nil
}

