package tree

import (
	"fmt"
	"strings"
)

// NoNode marks an absent parent or child link.
const NoNode = -1

// BudState is the developmental state of a node.
type BudState uint8

const (
	DormantBud         BudState = iota // Lateral bud waiting for release
	ActiveBud                          // Elongating apex
	BranchingSegment                   // Filled internode; permanent branch point
	DecapitatedSegment                 // Removed apex or pruned subtree
)

var budStateNames = [...]string{
	DormantBud:         "dormant_bud",
	ActiveBud:          "active_bud",
	BranchingSegment:   "branching_segment",
	DecapitatedSegment: "decapitated_segment",
}

func (b BudState) String() string {
	if int(b) < len(budStateNames) {
		return budStateNames[b]
	}
	return fmt.Sprintf("bud_state(%d)", b)
}

// MarshalText encodes the state by name.
func (b BudState) MarshalText() ([]byte, error) {
	if int(b) >= len(budStateNames) {
		return nil, fmt.Errorf("unknown bud state %d", b)
	}
	return []byte(budStateNames[b]), nil
}

// UnmarshalText decodes a state name.
func (b *BudState) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range budStateNames {
		if n == name {
			*b = BudState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown bud state %q", text)
}

// Node is one growth unit: a bud or an internode. Its identity is its
// index in the owning tree's arena.
type Node struct {
	BudState       BudState  `json:"bud_state"`
	Index          int       `json:"index"`
	Parent         int       `json:"parent"`
	Order          int       `json:"order"`
	InitialOrder   int       `json:"initial_order"` // Topology-only depth, for display
	MainChild      int       `json:"main_child"`
	SecondaryChild int       `json:"secondary_child"`
	Data           Data      `json:"data"`
	Transform      Mat4      `json:"transformation"`
	Segments       []Segment `json:"segments"`
	Settings       Settings  `json:"settings"`
}

// NewNode creates an unlinked node with no segments.
func NewNode(index, parent, order int, state BudState, s Settings) Node {
	return Node{
		BudState:       state,
		Index:          index,
		Parent:         parent,
		Order:          order,
		InitialOrder:   order,
		MainChild:      NoNode,
		SecondaryChild: NoNode,
		Data:           NewData(order, s),
		Transform:      Identity(),
		Settings:       s,
	}
}

// Children returns the indices of the present children, main first.
func (n *Node) Children() []int {
	children := make([]int, 0, 2)
	if n.MainChild != NoNode {
		children = append(children, n.MainChild)
	}
	if n.SecondaryChild != NoNode {
		children = append(children, n.SecondaryChild)
	}
	return children
}

// OutData is the state a parent reads from this node: the innermost
// segment, or the node itself when it has no segments yet.
func (n *Node) OutData() Data {
	if len(n.Segments) == 0 {
		return n.Data
	}
	return n.Segments[0].Data
}

// Decapitate marks the node as removed. Branch points are permanent and
// stay unchanged.
func (n *Node) Decapitate() {
	if n.BudState != BranchingSegment {
		n.BudState = DecapitatedSegment
	}
}

func (n *Node) addSegment() {
	n.Segments = append(n.Segments, NewSegment(n.Order, n.Settings))
}

func (n *Node) clone() Node {
	c := *n
	c.Segments = append([]Segment(nil), n.Segments...)
	return c
}

// segmentFlow advances the segment chain from the previous state old.
// Segment i drains into its outflow and receives from segment i+1; the
// last segment receives from the node's own data.
func (n *Node) segmentFlow(old *Node, m Model) {
	s := &n.Settings
	last := len(n.Segments) - 1
	for i := range n.Segments {
		data := old.Segments[i].Data
		other := old.Data
		if i < last {
			other = old.Segments[i+1].Data
		}

		seg := &n.Segments[i].Data
		seg.AuxinUpdate(s.DT * (m.Outflow(data) + m.Inflow(other) + m.Decay(data, *s) + m.SegmentProduction(data, *s)))
		seg.PinUpdate(s.DT * (m.PinProduction(data, *s) + m.PinDecay(data, *s)))
		seg.AuxinFlow = -m.Outflow(data)
	}
}

func (n *Node) gain() (float64, error) {
	switch n.BudState {
	case DormantBud:
		return n.Settings.DormantGain, nil
	case ActiveBud:
		return n.Settings.ActiveGain, nil
	case DecapitatedSegment:
		return 0, nil
	default:
		return 0, fmt.Errorf("gain flow on %s node %d: %w", n.BudState, n.Index, ErrInvalidTransition)
	}
}

// gainFlow is the tick update of a bud or a decapitated stump.
func (n *Node) gainFlow(old *Node, m Model) error {
	gain, err := n.gain()
	if err != nil {
		return err
	}
	n.segmentFlow(old, m)

	s := n.Settings
	d := old.Data
	n.Data.AuxinUpdate(s.DT * (m.Outflow(d) + m.Production(d, gain) + m.Decay(d, s)))
	n.Data.PinUpdate(s.DT * (m.PinProduction(d, s) + m.PinDecay(d, s)))
	n.Data.AuxinFlow = -m.Outflow(d)
	return nil
}

// moveFlow is the tick update of a branch point, which collects the
// outward-facing state of both children. A missing child contributes
// nothing.
func (n *Node) moveFlow(old, main, secondary *Node, m Model) error {
	if n.BudState != BranchingSegment {
		return fmt.Errorf("move flow on %s node %d: %w", n.BudState, n.Index, ErrInvalidTransition)
	}
	n.segmentFlow(old, m)

	s := n.Settings
	d := old.Data
	inflow := 0.0
	if main != nil {
		inflow += m.Inflow(main.OutData())
	}
	if secondary != nil {
		inflow += m.Inflow(secondary.OutData())
	}
	n.Data.AuxinUpdate(s.DT * (m.Outflow(d) + inflow + m.Decay(d, s) + m.SegmentProduction(d, s)))
	n.Data.PinUpdate(s.DT * (m.PinProduction(d, s) + m.PinDecay(d, s)))
	n.Data.AuxinFlow = -m.Outflow(d)
	return nil
}
