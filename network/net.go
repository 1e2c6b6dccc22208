// Package network turns user-facing component records into the solver
// tables. A network is a set of named junctions connected by branch
// elements (pipes, valves, pumps, heat exchangers) plus boundary
// conditions (external grids, sinks, sources).
package network

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/flowgrid/pipeflow/pit"
)

// Junction is a network node. PnBar is the initial pressure guess in
// bar gauge; PAmbBar defaults to normal atmospheric pressure.
type Junction struct {
	Name    string  `json:"name"`
	PnBar   float64 `json:"pn_bar"`
	TK      float64 `json:"t_k"`
	HeightM float64 `json:"height_m"`
	PAmbBar float64 `json:"pamb_bar"`
}

// Pipe connects two junctions. Sections > 1 splits the pipe into equal
// internal sub-branches with interior nodes; results are still
// reported per pipe. Index is the user-visible element index and
// defaults to the position in the input.
type Pipe struct {
	Index     *int    `json:"index,omitempty"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	LengthM   float64 `json:"length_m"`
	DiameterM float64 `json:"diameter_m"`
	KMm       float64 `json:"k_mm"` // roughness
	Sections  int     `json:"sections"`
	AlphaWM2K float64 `json:"alpha_w_per_m2k"`
	TExtK     float64 `json:"text_k"`
	QExtW     float64 `json:"qext_w"`
	LossCoeff float64 `json:"loss_coefficient"`
}

// Valve is a zero-length local-loss connector; only its loss
// coefficient contributes to the momentum balance.
type Valve struct {
	Index     *int    `json:"index,omitempty"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	DiameterM float64 `json:"diameter_m"`
	LossCoeff float64 `json:"loss_coefficient"`
	Opened    *bool   `json:"opened,omitempty"`
}

// Pump imposes a fixed pressure lift between its junctions.
type Pump struct {
	Index     *int    `json:"index,omitempty"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	DiameterM float64 `json:"diameter_m"`
	PLiftBar  float64 `json:"plift_bar"`
}

// HeatExchanger adds or removes external heat on a short branch.
// Positive QExtW extracts heat from the fluid.
type HeatExchanger struct {
	Index     *int    `json:"index,omitempty"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	DiameterM float64 `json:"diameter_m"`
	QExtW     float64 `json:"qext_w"`
}

// ExtGrid pins pressure and temperature at a junction (slack node).
type ExtGrid struct {
	Junction string  `json:"junction"`
	PBar     float64 `json:"p_bar"`
	TK       float64 `json:"t_k"`
}

// Sink extracts mass flow at a junction; Source injects it.
type Sink struct {
	Junction   string  `json:"junction"`
	MdotKgPerS float64 `json:"mdot_kg_per_s"`
}

type Source struct {
	Junction   string  `json:"junction"`
	MdotKgPerS float64 `json:"mdot_kg_per_s"`
}

// Net is the parsed network definition.
type Net struct {
	Name           string          `json:"name"`
	Fluid          string          `json:"fluid"`
	Junctions      []Junction      `json:"junctions"`
	Pipes          []Pipe          `json:"pipes"`
	Valves         []Valve         `json:"valves"`
	Pumps          []Pump          `json:"pumps"`
	HeatExchangers []HeatExchanger `json:"heat_exchangers"`
	ExtGrids       []ExtGrid       `json:"ext_grids"`
	Sinks          []Sink          `json:"sinks"`
	Sources        []Source        `json:"sources"`
}

// Parse reads a YAML network definition.
func Parse(data []byte) (*Net, error) {
	n := &Net{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("network: parsing definition: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func ParseFile(path string) (*Net, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("network: reading %s: %w", path, err)
	}
	return Parse(data)
}

func (n *Net) validate() error {
	if len(n.Junctions) == 0 {
		return fmt.Errorf("network: no junctions defined")
	}
	names := make(map[string]bool, len(n.Junctions))
	for _, j := range n.Junctions {
		if j.Name == "" {
			return fmt.Errorf("network: junction without a name")
		}
		if names[j.Name] {
			return fmt.Errorf("network: duplicate junction %q", j.Name)
		}
		names[j.Name] = true
	}
	checkBranch := func(kind pit.Kind, i int, from, to string, d float64) error {
		if !names[from] || !names[to] {
			return fmt.Errorf("network: %s %d references unknown junction (%q -> %q)", kind, i, from, to)
		}
		if from == to {
			return fmt.Errorf("network: %s %d connects junction %q to itself", kind, i, from)
		}
		if d <= 0 {
			return fmt.Errorf("network: %s %d needs a positive diameter", kind, i)
		}
		return nil
	}
	for i, p := range n.Pipes {
		if err := checkBranch(pit.KindPipe, i, p.From, p.To, p.DiameterM); err != nil {
			return err
		}
		if p.LengthM < 0 {
			return fmt.Errorf("network: pipe %d has negative length", i)
		}
	}
	for i, v := range n.Valves {
		if err := checkBranch(pit.KindValve, i, v.From, v.To, v.DiameterM); err != nil {
			return err
		}
	}
	for i, p := range n.Pumps {
		if err := checkBranch(pit.KindPump, i, p.From, p.To, p.DiameterM); err != nil {
			return err
		}
	}
	for i, h := range n.HeatExchangers {
		if err := checkBranch(pit.KindHeatExchanger, i, h.From, h.To, h.DiameterM); err != nil {
			return err
		}
	}
	for i, e := range n.ExtGrids {
		if !names[e.Junction] {
			return fmt.Errorf("network: ext_grid %d references unknown junction %q", i, e.Junction)
		}
	}
	if len(n.ExtGrids) == 0 {
		return fmt.Errorf("network: at least one ext_grid is required to fix the pressure level")
	}
	for i, s := range n.Sinks {
		if !names[s.Junction] {
			return fmt.Errorf("network: sink %d references unknown junction %q", i, s.Junction)
		}
	}
	for i, s := range n.Sources {
		if !names[s.Junction] {
			return fmt.Errorf("network: source %d references unknown junction %q", i, s.Junction)
		}
	}
	return nil
}
