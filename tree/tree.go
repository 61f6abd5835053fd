// Package tree implements the growth and hormone transport engine: an
// append-only arena of nodes linked by index, structural operators that
// grow, activate, decapitate and reorder branches, and a double-buffered
// tick that advances hormone state.
package tree

import (
	"fmt"
	"math/rand"
	"slices"
)

// ExtensionResult reports what ExtendNode did.
type ExtensionResult uint8

const (
	// FullBefore means the node could not grow; nothing changed.
	FullBefore ExtensionResult = iota
	// Extended means one segment was appended.
	Extended
	// ExtensionFinished means the internode filled up and branched.
	ExtensionFinished
)

func (r ExtensionResult) String() string {
	switch r {
	case FullBefore:
		return "full_before"
	case Extended:
		return "extended"
	case ExtensionFinished:
		return "extension_finished"
	}
	return fmt.Sprintf("extension_result(%d)", r)
}

// Tree is the arena of nodes plus the caches derived from it.
// Node indices are stable for the lifetime of the tree.
type Tree struct {
	Nodes          []Node
	TipIndices     []int
	DecapitatedTip int // NoNode until the first DecapitateMain
	Settings       Settings
	Transform      Mat4

	// orders[o] lists every node whose Order is o.
	orders [][]int
}

// New creates a tree with an active root and its dormant lateral bud.
func New(s Settings) *Tree {
	root := NewNode(0, NoNode, 0, ActiveBud, s)
	root.SecondaryChild = 1
	return &Tree{
		Nodes:          []Node{root, NewNode(1, 0, 1, DormantBud, s)},
		TipIndices:     []int{0},
		DecapitatedTip: NoNode,
		Settings:       s,
		Transform:      Identity(),
		orders:         [][]int{{0}, {1}, {}},
	}
}

// Size returns the number of nodes in the arena.
func (t *Tree) Size() int {
	return len(t.Nodes)
}

// NewSettings replaces the settings of the tree and every node.
func (t *Tree) NewSettings(s Settings) {
	t.Settings = s
	for i := range t.Nodes {
		t.Nodes[i].Settings = s
	}
}

// Clone returns a deep copy sharing no mutable state with t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		Nodes:          make([]Node, len(t.Nodes)),
		TipIndices:     slices.Clone(t.TipIndices),
		DecapitatedTip: t.DecapitatedTip,
		Settings:       t.Settings,
		Transform:      t.Transform,
		orders:         make([][]int, len(t.orders)),
	}
	for i := range t.Nodes {
		c.Nodes[i] = t.Nodes[i].clone()
	}
	for o, bucket := range t.orders {
		c.orders[o] = slices.Clone(bucket)
	}
	return c
}

// ExtendNode grows node i by one segment. Only active buds grow; any other
// state yields FullBefore with ErrInvalidTransition and no mutation. When
// the segment quota minus one is reached the node becomes a branch point
// and a new main apex plus its dormant bud are appended.
func (t *Tree) ExtendNode(i int) (ExtensionResult, error) {
	n := &t.Nodes[i]
	if n.BudState != ActiveBud {
		return FullBefore, fmt.Errorf("extend %s node %d: %w", n.BudState, i, ErrInvalidTransition)
	}
	n.addSegment()
	if len(n.Segments) != t.Settings.SegmentsAmount-1 {
		return Extended, nil
	}
	n.BudState = BranchingSegment
	if err := t.addMainNode(i); err != nil {
		return ExtensionFinished, err
	}
	return ExtensionFinished, nil
}

// addMainNode appends the continuation of branch point i: an active main
// child at the same order carrying a dormant bud one order higher. A tip
// entry for i moves to the new apex.
func (t *Tree) addMainNode(i int) error {
	n := &t.Nodes[i]
	if n.BudState != BranchingSegment {
		return fmt.Errorf("add main node to %s node %d: %w", n.BudState, i, ErrInvalidTransition)
	}
	if n.MainChild != NoNode {
		return fmt.Errorf("add main node to node %d: %w", i, ErrAlreadyPresent)
	}

	order := n.Order
	mainIdx := len(t.Nodes)
	budIdx := mainIdx + 1
	n.MainChild = mainIdx

	apex := NewNode(mainIdx, i, order, ActiveBud, t.Settings)
	apex.SecondaryChild = budIdx
	t.Nodes = append(t.Nodes, apex, NewNode(budIdx, mainIdx, order+1, DormantBud, t.Settings))

	if pos := slices.Index(t.TipIndices, i); pos >= 0 {
		t.TipIndices[pos] = mainIdx
	}
	t.cacheIndex(mainIdx, order)
	t.cacheIndex(budIdx, order+1)
	return nil
}

// Activate releases dormant bud i and gives it its own dormant lateral bud.
func (t *Tree) Activate(i int) error {
	n := &t.Nodes[i]
	if n.BudState != DormantBud {
		return fmt.Errorf("activate %s node %d: %w", n.BudState, i, ErrInvalidTransition)
	}
	budIdx := len(t.Nodes)
	order := n.Order + 1
	n.BudState = ActiveBud
	n.SecondaryChild = budIdx
	t.Nodes = append(t.Nodes, NewNode(budIdx, i, order, DormantBud, t.Settings))
	t.cacheIndex(budIdx, order)
	return nil
}

// ActivateSecondary activates the lateral bud of node i. Node i itself
// must no longer be dormant.
func (t *Tree) ActivateSecondary(i int) error {
	n := &t.Nodes[i]
	if n.BudState == DormantBud {
		return fmt.Errorf("activate secondary of dormant node %d: %w", i, ErrInvalidTransition)
	}
	if n.SecondaryChild == NoNode {
		return fmt.Errorf("activate secondary of node %d: %w", i, ErrNoEligibleNode)
	}
	return t.Activate(n.SecondaryChild)
}

// FindMainTip follows main children from i until it leaves the chain of
// branch points.
func (t *Tree) FindMainTip(i int) int {
	for t.Nodes[i].BudState == BranchingSegment && t.Nodes[i].MainChild != NoNode {
		i = t.Nodes[i].MainChild
	}
	return i
}

// OriginalTipIndex is the apex of the original main axis: the only tip,
// or the tip removed by the last DecapitateMain.
func (t *Tree) OriginalTipIndex() int {
	if len(t.TipIndices) == 1 || t.DecapitatedTip == NoNode {
		return t.TipIndices[0]
	}
	return t.DecapitatedTip
}

// pickTip returns a tip and its position in TipIndices, uniformly at
// random when there are several.
func (t *Tree) pickTip(rng *rand.Rand) (idx, pos int) {
	if len(t.TipIndices) == 1 {
		return t.TipIndices[0], 0
	}
	pos = rng.Intn(len(t.TipIndices))
	return t.TipIndices[pos], pos
}

// ExtendMain extends one of the recorded tips.
func (t *Tree) ExtendMain(rng *rand.Rand) (ExtensionResult, error) {
	if len(t.TipIndices) == 0 {
		return FullBefore, fmt.Errorf("extend main: %w", ErrNoEligibleNode)
	}
	idx, _ := t.pickTip(rng)
	return t.ExtendNode(idx)
}
