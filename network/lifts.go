package network

import "github.com/flowgrid/pipeflow/pit"

// PumpLift imposes each pump's configured pressure lift. Lifts is
// indexed relative to the pump kind range, one entry per pump row.
type PumpLift struct {
	Lifts []float64
}

func (p *PumpLift) PressureLift(_ *pit.NodeTable, bt *pit.BranchTable, rng pit.Range) {
	if len(p.Lifts) != rng.Len() {
		panic("network: pump lift table does not match pump row range")
	}
	for i := rng.From; i < rng.To; i++ {
		bt.PL[i] = p.Lifts[i-rng.From]
	}
}

func (p *PumpLift) TemperatureLift(_ *pit.NodeTable, bt *pit.BranchTable, rng pit.Range) {
	for i := rng.From; i < rng.To; i++ {
		bt.TL[i] = 0
	}
}
