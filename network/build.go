package network

import (
	"fmt"
	"math"

	"github.com/flowgrid/pipeflow/derivatives"
	"github.com/flowgrid/pipeflow/fluids"
	"github.com/flowgrid/pipeflow/pit"
)

// KindOrder is the fixed layout of branch-kind row ranges in the
// branch table.
var KindOrder = []pit.Kind{pit.KindPipe, pit.KindValve, pit.KindPump, pit.KindHeatExchanger}

// ElementRef ties one logical element to its group of sub-branch rows
// and its endpoint nodes.
type ElementRef struct {
	UserIndex int // user-visible element index, possibly unsorted
	GroupIdx  int // ElementIdx shared by the element's sub-branches
	FromNode  int
	ToNode    int
}

// Lookups is the topology index the solver and the result extraction
// navigate by: per-kind row ranges and element references plus the
// junction name mapping.
type Lookups struct {
	Ranges     map[pit.Kind]pit.Range
	Elements   map[pit.Kind][]ElementRef
	NodeByName map[string]int
}

// Built is a network compiled into solver tables. The tables are
// allocated once here and mutated in place by the Newton iteration;
// topology changes require a rebuild.
type Built struct {
	Net      *Net
	Nodes    *pit.NodeTable
	Branches *pit.BranchTable
	Lookups  Lookups
	Fluid    *fluids.Fluid
	Lifts    *derivatives.Registry
}

// Build compiles the network into node/branch tables, assigns the
// per-kind row ranges and registers the lift hooks of each kind.
func (n *Net) Build() (*Built, error) {
	fl, err := fluids.Get(n.Fluid)
	if err != nil {
		return nil, err
	}

	nodeByName := make(map[string]int, len(n.Junctions))
	interior := 0
	for _, p := range n.Pipes {
		interior += sections(p) - 1
	}
	nodes := pit.NewNodeTable(len(n.Junctions) + interior)
	for i, j := range n.Junctions {
		nodeByName[j.Name] = i
		nodes.Pressure[i] = j.PnBar
		nodes.Temp[i] = j.TK
		nodes.Height[i] = j.HeightM
		nodes.PAmb[i] = j.PAmbBar
		if nodes.PAmb[i] == 0 {
			nodes.PAmb[i] = pit.NormalPressure
		}
		if nodes.Temp[i] == 0 {
			nodes.Temp[i] = 293.15
		}
		nodes.Index[i] = i
	}

	nBranches := len(n.Valves) + len(n.Pumps) + len(n.HeatExchangers)
	for _, p := range n.Pipes {
		nBranches += sections(p)
	}
	bt := pit.NewBranchTable(nBranches)

	ranges := make(map[pit.Kind]pit.Range, len(KindOrder))
	elements := make(map[pit.Kind][]ElementRef, len(KindOrder))
	row := 0
	nextNode := len(n.Junctions)
	group := 0

	// Pipes first; a pipe with s sections contributes s rows sharing
	// one element group, chained through interior nodes.
	pipeStart := row
	for pi, p := range n.Pipes {
		from := nodeByName[p.From]
		to := nodeByName[p.To]
		s := sections(p)
		prev := from
		for k := 0; k < s; k++ {
			next := to
			if k < s-1 {
				next = nextNode
				frac := float64(k+1) / float64(s)
				nodes.Pressure[next] = nodes.Pressure[from] + frac*(nodes.Pressure[to]-nodes.Pressure[from])
				nodes.Temp[next] = nodes.Temp[from] + frac*(nodes.Temp[to]-nodes.Temp[from])
				nodes.Height[next] = nodes.Height[from] + frac*(nodes.Height[to]-nodes.Height[from])
				nodes.PAmb[next] = nodes.PAmb[from]
				nodes.Index[next] = next
				nextNode++
			}
			bt.FromNode[row] = prev
			bt.ToNode[row] = next
			bt.Length[row] = p.LengthM / float64(s)
			bt.Diameter[row] = p.DiameterM
			bt.Roughness[row] = p.KMm * 1e-3
			bt.Area[row] = math.Pi * p.DiameterM * p.DiameterM / 4
			bt.Alpha[row] = p.AlphaWM2K
			bt.TExt[row] = p.TExtK
			bt.QExt[row] = p.QExtW / float64(s)
			bt.LossCoeff[row] = p.LossCoeff / float64(s)
			bt.ElementIdx[row] = group
			bt.Kind[row] = pit.KindPipe
			row++
			prev = next
		}
		elements[pit.KindPipe] = append(elements[pit.KindPipe], ElementRef{
			UserIndex: userIndex(p.Index, pi),
			GroupIdx:  group,
			FromNode:  from,
			ToNode:    to,
		})
		group++
	}
	ranges[pit.KindPipe] = pit.Range{From: pipeStart, To: row}

	valveStart := row
	for vi, v := range n.Valves {
		bt.FromNode[row] = nodeByName[v.From]
		bt.ToNode[row] = nodeByName[v.To]
		bt.Diameter[row] = v.DiameterM
		bt.Area[row] = math.Pi * v.DiameterM * v.DiameterM / 4
		bt.LossCoeff[row] = v.LossCoeff
		bt.ElementIdx[row] = group
		bt.Kind[row] = pit.KindValve
		if v.Opened != nil && !*v.Opened {
			bt.Active[row] = false
			bt.V[row] = 0
			bt.VT[row] = 0
		}
		elements[pit.KindValve] = append(elements[pit.KindValve], ElementRef{
			UserIndex: userIndex(v.Index, vi),
			GroupIdx:  group,
			FromNode:  bt.FromNode[row],
			ToNode:    bt.ToNode[row],
		})
		group++
		row++
	}
	ranges[pit.KindValve] = pit.Range{From: valveStart, To: row}

	pumpStart := row
	pumpLifts := make([]float64, 0, len(n.Pumps))
	for pi, p := range n.Pumps {
		bt.FromNode[row] = nodeByName[p.From]
		bt.ToNode[row] = nodeByName[p.To]
		bt.Diameter[row] = p.DiameterM
		bt.Area[row] = math.Pi * p.DiameterM * p.DiameterM / 4
		bt.ElementIdx[row] = group
		bt.Kind[row] = pit.KindPump
		pumpLifts = append(pumpLifts, p.PLiftBar)
		elements[pit.KindPump] = append(elements[pit.KindPump], ElementRef{
			UserIndex: userIndex(p.Index, pi),
			GroupIdx:  group,
			FromNode:  bt.FromNode[row],
			ToNode:    bt.ToNode[row],
		})
		group++
		row++
	}
	ranges[pit.KindPump] = pit.Range{From: pumpStart, To: row}

	hxStart := row
	for hi, h := range n.HeatExchangers {
		bt.FromNode[row] = nodeByName[h.From]
		bt.ToNode[row] = nodeByName[h.To]
		bt.Diameter[row] = h.DiameterM
		bt.Area[row] = math.Pi * h.DiameterM * h.DiameterM / 4
		bt.QExt[row] = h.QExtW
		bt.ElementIdx[row] = group
		bt.Kind[row] = pit.KindHeatExchanger
		elements[pit.KindHeatExchanger] = append(elements[pit.KindHeatExchanger], ElementRef{
			UserIndex: userIndex(h.Index, hi),
			GroupIdx:  group,
			FromNode:  bt.FromNode[row],
			ToNode:    bt.ToNode[row],
		})
		group++
		row++
	}
	ranges[pit.KindHeatExchanger] = pit.Range{From: hxStart, To: row}

	if row != nBranches {
		panic(fmt.Sprintf("network: built %d branch rows, allocated %d", row, nBranches))
	}

	for _, e := range n.ExtGrids {
		i := nodeByName[e.Junction]
		nodes.Slack[i] = true
		nodes.Pressure[i] = e.PBar
		if e.TK > 0 {
			nodes.Temp[i] = e.TK
		}
	}
	for _, s := range n.Sinks {
		nodes.Demand[nodeByName[s.Junction]] += s.MdotKgPerS
	}
	for _, s := range n.Sources {
		nodes.Demand[nodeByName[s.Junction]] -= s.MdotKgPerS
	}

	// Fluid properties at the initial temperature field.
	for i := 0; i < bt.Len(); i++ {
		tMean := (nodes.Temp[bt.FromNode[i]] + nodes.Temp[bt.ToNode[i]]) / 2
		bt.TMean[i] = tMean
		bt.Rho[i] = fl.Density(tMean)
		bt.Eta[i] = fl.Viscosity(tMean)
		bt.Cp[i] = fl.HeatCapacity()
		bt.TOut[i] = nodes.Temp[bt.ToNode[i]]
		if bt.TExt[i] == 0 {
			bt.TExt[i] = 293.15
		}
	}
	bt.SyncThermalDirection()

	reg := derivatives.NewRegistry()
	reg.Register(pit.KindPipe, derivatives.PassiveLift{})
	reg.Register(pit.KindValve, derivatives.PassiveLift{})
	reg.Register(pit.KindPump, &PumpLift{Lifts: pumpLifts})
	reg.Register(pit.KindHeatExchanger, derivatives.PassiveLift{})

	return &Built{
		Net:      n,
		Nodes:    nodes,
		Branches: bt,
		Lookups: Lookups{
			Ranges:     ranges,
			Elements:   elements,
			NodeByName: nodeByName,
		},
		Fluid: fl,
		Lifts: reg,
	}, nil
}

func sections(p Pipe) int {
	if p.Sections < 1 {
		return 1
	}
	return p.Sections
}

func userIndex(idx *int, pos int) int {
	if idx != nil {
		return *idx
	}
	return pos
}
