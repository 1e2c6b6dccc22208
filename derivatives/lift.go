package derivatives

import (
	"fmt"

	"github.com/flowgrid/pipeflow/pit"
)

// Lifter supplies the active-element offsets of a branch kind. The
// derivative engines call it for the rows of their range before
// evaluating the residuals; implementations write the PL (bar) and TL
// (K) columns for exactly those rows. Passive kinds write zeros.
type Lifter interface {
	PressureLift(nodes *pit.NodeTable, branches *pit.BranchTable, rng pit.Range)
	TemperatureLift(nodes *pit.NodeTable, branches *pit.BranchTable, rng pit.Range)
}

// PassiveLift is the zero-lift implementation shared by pipes, valves
// and any other kind without active pressure or temperature offsets.
type PassiveLift struct{}

func (PassiveLift) PressureLift(_ *pit.NodeTable, bt *pit.BranchTable, rng pit.Range) {
	for i := rng.From; i < rng.To; i++ {
		bt.PL[i] = 0
	}
}

func (PassiveLift) TemperatureLift(_ *pit.NodeTable, bt *pit.BranchTable, rng pit.Range) {
	for i := rng.From; i < rng.To; i++ {
		bt.TL[i] = 0
	}
}

// Registry maps branch kinds to their Lifter. Every kind that shows up
// in a derivative pass must be registered; asking for an unregistered
// kind is a programming error, not a runtime condition, and panics.
type Registry struct {
	lifters map[pit.Kind]Lifter
}

func NewRegistry() *Registry {
	return &Registry{lifters: make(map[pit.Kind]Lifter)}
}

func (r *Registry) Register(k pit.Kind, l Lifter) {
	r.lifters[k] = l
}

func (r *Registry) Lifter(k pit.Kind) Lifter {
	l, ok := r.lifters[k]
	if !ok {
		panic(fmt.Sprintf("derivatives: no lift hooks registered for branch kind %q", k))
	}
	return l
}
