package tree

import (
	"fmt"
	"math"
)

// RelaxBatchTicks is the number of ticks per relaxation batch.
const RelaxBatchTicks = 100

// initialDifference seeds the relaxation loop so that it runs at least
// one batch for any sensible precision.
const initialDifference = 100.0

// RelaxBatch describes one finished relaxation batch.
type RelaxBatch struct {
	Batch      int     // 1-based batch number
	Ticks      int     // Total ticks so far
	Difference float64 // Sum of per-tick differences within the batch
}

// UpdateRef advances next by one tick, computing every node from the
// snapshot old. next must start out holding the same state as old and
// the two trees must share topology. Reads never touch next, so the
// order nodes are visited in does not matter.
func UpdateRef(old, next *Tree, m Model) error {
	if len(old.Nodes) != len(next.Nodes) {
		return fmt.Errorf("update: snapshot has %d nodes, target has %d", len(old.Nodes), len(next.Nodes))
	}
	return stepRange(old, next, m, 0, len(old.Nodes))
}

// UpdateCopy returns the tree one tick after old.
func UpdateCopy(old *Tree, m Model) (*Tree, error) {
	next := old.Clone()
	if err := UpdateRef(old, next, m); err != nil {
		return nil, err
	}
	return next, nil
}

// stepRange updates nodes [i0, i1) of next from old.
func stepRange(old, next *Tree, m Model, i0, i1 int) error {
	activator, canActivate := m.(ChildActivator)
	for i := i0; i < i1; i++ {
		n := &next.Nodes[i]
		prev := &old.Nodes[i]

		switch n.BudState {
		case BranchingSegment:
			if err := n.moveFlow(prev, old.child(n.MainChild), old.child(n.SecondaryChild), m); err != nil {
				return err
			}
		case DormantBud:
			if err := n.gainFlow(prev, m); err != nil {
				return err
			}
			if canActivate && n.Parent != NoNode && activator.ActivatesChild(&old.Nodes[n.Parent]) {
				n.BudState = ActiveBud
			}
		default:
			if err := n.gainFlow(prev, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) child(idx int) *Node {
	if idx == NoNode {
		return nil
	}
	return &t.Nodes[idx]
}

// copyStateFrom overwrites the hormone state and bud states of t with
// those of src. Both trees must share topology.
func (t *Tree) copyStateFrom(src *Tree) {
	for i := range t.Nodes {
		dst := &t.Nodes[i]
		dst.BudState = src.Nodes[i].BudState
		dst.Data = src.Nodes[i].Data
		copy(dst.Segments, src.Nodes[i].Segments)
	}
}

// Difference is the largest |Δauxin| + |Δpin| over all nodes and segments
// of two trees with the same topology.
func Difference(a, b *Tree) float64 {
	diff := 0.0
	delta := func(x, y Data) float64 {
		return math.Abs(x.Auxin-y.Auxin) + math.Abs(x.Pin-y.Pin)
	}
	n := min(len(a.Nodes), len(b.Nodes))
	for i := 0; i < n; i++ {
		na, nb := &a.Nodes[i], &b.Nodes[i]
		diff = max(diff, delta(na.Data, nb.Data))
		segs := min(len(na.Segments), len(nb.Segments))
		for s := 0; s < segs; s++ {
			diff = max(diff, delta(na.Segments[s].Data, nb.Segments[s].Data))
		}
	}
	return diff
}

// CalculateStaticDistribution relaxes the hormone state of t on its
// current topology until a batch of ticks changes it by less than
// precision. t is not modified.
func CalculateStaticDistribution(t *Tree, m Model, precision float64) (*Tree, error) {
	return Relax(t, m, precision, nil)
}

// Relax is CalculateStaticDistribution with a callback after every batch.
// Nothing bounds the number of batches besides precision.
func Relax(t *Tree, m Model, precision float64, onBatch func(RelaxBatch)) (*Tree, error) {
	return relax(t, m, precision, onBatch, UpdateRef)
}

func relax(t *Tree, m Model, precision float64, onBatch func(RelaxBatch), step func(old, next *Tree, m Model) error) (*Tree, error) {
	old := t.Clone()
	next := t.Clone()

	difference := initialDifference
	ticks := 0
	for batch := 1; difference > precision; batch++ {
		difference = 0
		for range RelaxBatchTicks {
			next.copyStateFrom(old)
			if err := step(old, next, m); err != nil {
				return nil, fmt.Errorf("relax tick %d: %w", ticks, err)
			}
			difference += Difference(old, next)
			old, next = next, old
			ticks++
		}
		if onBatch != nil {
			onBatch(RelaxBatch{Batch: batch, Ticks: ticks, Difference: difference})
		}
	}
	return old, nil
}
