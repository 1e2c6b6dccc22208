package pit

// The "pit" (pipeflow internal tables) holds the per-node and
// per-branch state the Newton iteration works on. Columns are named
// slices over a fixed row count instead of index-addressed matrix
// columns, so every consumer addresses state by field name. All
// columns of one table share the same length; rows are never added or
// removed after construction; a topology change rebuilds the tables.

// Kind tags the component type a branch row belongs to. Rows of one
// kind occupy a contiguous range of the branch table.
type Kind uint8

const (
	KindPipe Kind = iota
	KindValve
	KindPump
	KindHeatExchanger
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindPipe:
		return "pipe"
	case KindValve:
		return "valve"
	case KindPump:
		return "pump"
	case KindHeatExchanger:
		return "heat_exchanger"
	}
	return "unknown"
}

// Range addresses the contiguous rows [From, To) of one branch kind.
type Range struct {
	From, To int
}

func (r Range) Len() int { return r.To - r.From }

// NodeTable is the per-junction state. Pressure and Temp are the
// solved unknowns; PAmb and Height are fixed inputs. Slack nodes keep
// their pressure (and temperature) pinned by the external grid.
type NodeTable struct {
	Pressure []float64 // bar, gauge
	Temp     []float64 // K
	PAmb     []float64 // bar, ambient at node elevation
	Height   []float64 // m
	Demand   []float64 // kg/s, net extraction by sinks/sources
	Slack    []bool
	Index    []int // stable external junction index
}

func NewNodeTable(n int) *NodeTable {
	return &NodeTable{
		Pressure: make([]float64, n),
		Temp:     make([]float64, n),
		PAmb:     make([]float64, n),
		Height:   make([]float64, n),
		Demand:   make([]float64, n),
		Slack:    make([]bool, n),
		Index:    make([]int, n),
	}
}

func (nt *NodeTable) Len() int { return len(nt.Pressure) }

// DefaultVelocity seeds the hydraulic iteration away from the v=0
// stationary point of the friction term.
const DefaultVelocity = 0.1

// BranchTable is the per-branch state plus the residual/Jacobian slots
// the derivative engines fill each iteration. FromNodeT/ToNodeT track
// the thermal advection direction and swap relative to
// FromNode/ToNode when the solved velocity is negative.
type BranchTable struct {
	FromNode  []int
	ToNode    []int
	FromNodeT []int
	ToNodeT   []int

	Length    []float64 // m
	Diameter  []float64 // m
	Roughness []float64 // m
	Area      []float64 // m^2
	Rho       []float64 // kg/m^3
	Eta       []float64 // Pa*s
	V         []float64 // m/s, hydraulic unknown
	VT        []float64 // m/s, velocity used by the thermal pass
	Re        []float64
	Lambda    []float64
	PL        []float64 // bar, pressure lift
	TL        []float64 // K, temperature lift
	TExt      []float64 // K, ambient around the branch
	Alpha     []float64 // W/(m^2 K), heat transfer coefficient
	QExt      []float64 // W, external heat input
	LossCoeff []float64
	TOut      []float64 // K, thermal unknown
	TMean     []float64 // K, mean of endpoint temperatures
	Cp        []float64 // J/(kg K)

	ElementIdx []int // maps sub-branches to one logical element
	Kind       []Kind
	Active     []bool

	// Hydraulic residual and Jacobian slots.
	LoadVec      []float64 // momentum residual
	JacDV        []float64
	JacDP        []float64
	JacDP1       []float64
	LoadVecNodes []float64 // rho*A*v mass contribution at nodes
	JacDVNode    []float64 // rho*A

	// Thermal residual and Jacobian slots.
	LoadVecT      []float64
	JacDT         []float64
	JacDT1        []float64
	LoadVecNodesT []float64 // rho*A*v*T_out energy contribution
	JacDTNode     []float64
}

func NewBranchTable(n int) *BranchTable {
	bt := &BranchTable{
		FromNode:      make([]int, n),
		ToNode:        make([]int, n),
		FromNodeT:     make([]int, n),
		ToNodeT:       make([]int, n),
		Length:        make([]float64, n),
		Diameter:      make([]float64, n),
		Roughness:     make([]float64, n),
		Area:          make([]float64, n),
		Rho:           make([]float64, n),
		Eta:           make([]float64, n),
		V:             make([]float64, n),
		VT:            make([]float64, n),
		Re:            make([]float64, n),
		Lambda:        make([]float64, n),
		PL:            make([]float64, n),
		TL:            make([]float64, n),
		TExt:          make([]float64, n),
		Alpha:         make([]float64, n),
		QExt:          make([]float64, n),
		LossCoeff:     make([]float64, n),
		TOut:          make([]float64, n),
		TMean:         make([]float64, n),
		Cp:            make([]float64, n),
		ElementIdx:    make([]int, n),
		Kind:          make([]Kind, n),
		Active:        make([]bool, n),
		LoadVec:       make([]float64, n),
		JacDV:         make([]float64, n),
		JacDP:         make([]float64, n),
		JacDP1:        make([]float64, n),
		LoadVecNodes:  make([]float64, n),
		JacDVNode:     make([]float64, n),
		LoadVecT:      make([]float64, n),
		JacDT:         make([]float64, n),
		JacDT1:        make([]float64, n),
		LoadVecNodesT: make([]float64, n),
		JacDTNode:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		bt.V[i] = DefaultVelocity
		bt.VT[i] = DefaultVelocity
		bt.Active[i] = true
	}
	return bt
}

func (bt *BranchTable) Len() int { return len(bt.V) }

// SyncThermalDirection points FromNodeT/ToNodeT at the physical
// upstream/downstream node for the converged hydraulic velocity and
// stores its magnitude in VT. Called once between the hydraulic and
// thermal passes.
func (bt *BranchTable) SyncThermalDirection() {
	for i := range bt.V {
		if bt.V[i] < 0 {
			bt.FromNodeT[i] = bt.ToNode[i]
			bt.ToNodeT[i] = bt.FromNode[i]
			bt.VT[i] = -bt.V[i]
		} else {
			bt.FromNodeT[i] = bt.FromNode[i]
			bt.ToNodeT[i] = bt.ToNode[i]
			bt.VT[i] = bt.V[i]
		}
	}
}
