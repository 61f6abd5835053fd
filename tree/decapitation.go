package tree

import (
	"fmt"
	"math/rand"
)

// randomOrder1Attempts bounds the sampling loop of DecapitateRandomOrder1.
const randomOrder1Attempts = 100

// RecursiveDecapitation decapitates i and everything below it. Branch
// points inside the subtree keep their state but their descendants are
// still visited.
func (t *Tree) RecursiveDecapitation(i int) {
	stack := []int{i}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.Nodes[idx]
		n.Decapitate()
		if n.SecondaryChild != NoNode {
			stack = append(stack, n.SecondaryChild)
		}
		if n.MainChild != NoNode {
			stack = append(stack, n.MainChild)
		}
	}
}

// DecapitateMain removes one tip (chosen at random when there are several)
// and releases the two lateral branches nearest below it: the one at the
// tip's parent and the one at its grandparent. Both branches are promoted
// one order and their apices replace the removed tip.
func (t *Tree) DecapitateMain(rng *rand.Rand) error {
	if len(t.TipIndices) == 0 {
		return fmt.Errorf("decapitate main: %w", ErrNoEligibleNode)
	}
	tip, pos := t.pickTip(rng)
	parent := t.Nodes[tip].Parent
	if parent == NoNode || t.Nodes[parent].Parent == NoNode {
		return fmt.Errorf("decapitate main: tip %d has no grandparent: %w", tip, ErrNoEligibleNode)
	}
	grandparent := t.Nodes[parent].Parent
	if t.Nodes[parent].SecondaryChild == NoNode || t.Nodes[grandparent].SecondaryChild == NoNode {
		return fmt.Errorf("decapitate main: no lateral bud below tip %d: %w", tip, ErrNoEligibleNode)
	}

	first := t.FindMainTip(t.Nodes[parent].SecondaryChild)
	second := t.FindMainTip(t.Nodes[grandparent].SecondaryChild)
	// A tip released by an earlier call has laterals already on the main axis.
	for _, idx := range []int{first, second} {
		if t.Nodes[t.orderRoot(idx)].Order == 0 {
			return fmt.Errorf("decapitate main: lateral %d below tip %d is already on the main axis: %w", idx, tip, ErrOrderOutOfRange)
		}
	}

	t.Nodes[tip].Decapitate()
	t.DecapitatedTip = tip

	// Laterals that are already growing simply keep growing.
	_ = t.Activate(first)
	_ = t.Activate(second)

	t.TipIndices = append(t.TipIndices[:pos], t.TipIndices[pos+1:]...)
	t.TipIndices = append(t.TipIndices, first, second)

	if err := t.DecreaseOrder(first); err != nil {
		return fmt.Errorf("decapitate main: %w", err)
	}
	if err := t.DecreaseOrder(second); err != nil {
		return fmt.Errorf("decapitate main: %w", err)
	}
	return nil
}

// DecapitateLowestBranches prunes number lateral branches along the main
// axis, starting after skip branch points. For each one the cut is placed
// up to decapitatedSegments nodes below the branch apex, but never at a
// node attached directly to the main axis. The lateral exposed at the cut
// is activated and promoted.
//
// When a branch is too short to cut, the walk does not advance along the
// main axis.
func (t *Tree) DecapitateLowestBranches(number, skip, decapitatedSegments int) error {
	node := 0
	for range skip {
		if t.Nodes[node].MainChild != NoNode {
			node = t.Nodes[node].MainChild
		}
	}

	for range number {
		lateral := t.Nodes[node].SecondaryChild
		if lateral == NoNode {
			return fmt.Errorf("decapitate lowest branches: node %d has no lateral: %w", node, ErrNoEligibleNode)
		}

		cut := t.FindMainTip(lateral)
		for i := 0; i < decapitatedSegments; i++ {
			parent := t.Nodes[cut].Parent
			if t.Nodes[parent].Order == 0 || t.Nodes[t.Nodes[parent].Parent].Order == 0 {
				break
			}
			cut = parent
		}

		parent := t.Nodes[cut].Parent
		if t.Nodes[parent].Order == 0 {
			continue
		}

		t.RecursiveDecapitation(cut)
		exposed := t.Nodes[parent].SecondaryChild
		_ = t.Activate(t.FindMainTip(exposed))
		if err := t.DecreaseOrder(exposed); err != nil {
			return fmt.Errorf("decapitate lowest branches: %w", err)
		}

		next := t.Nodes[node].MainChild
		if next == NoNode {
			return fmt.Errorf("decapitate lowest branches: main axis ends at node %d: %w", node, ErrNoEligibleNode)
		}
		node = next
	}
	return nil
}

// DecapitateRandomOrder1 removes number randomly chosen growing first-order
// branches. Each removal activates the lateral bud at the grandparent of
// the chosen apex; those laterals are promoted once sampling ends. Branches
// whose grandparent sits on the main axis are skipped. It fails if fewer
// than number candidates exist or the attempt budget runs out.
func (t *Tree) DecapitateRandomOrder1(number int, rng *rand.Rand) error {
	const order = 1
	if order >= len(t.orders) {
		return fmt.Errorf("decapitate random order 1: %w", ErrOrderOutOfRange)
	}
	if len(t.filterBucket(order, ActiveBud)) < number {
		return fmt.Errorf("decapitate random order 1: fewer than %d active buds: %w", number, ErrNoEligibleNode)
	}

	var released []int
	var failure error
	for attempts := 0; len(released) < number; attempts++ {
		if attempts >= randomOrder1Attempts {
			failure = fmt.Errorf("decapitate random order 1: gave up after %d attempts: %w", attempts, ErrNoEligibleNode)
			break
		}
		candidates := t.filterBucket(order, ActiveBud)
		if len(candidates) == 0 {
			failure = fmt.Errorf("decapitate random order 1: %w", ErrNoEligibleNode)
			break
		}
		idx := candidates[rng.Intn(len(candidates))]

		parent := t.Nodes[idx].Parent
		if parent == NoNode || t.Nodes[parent].Parent == NoNode {
			continue
		}
		grandparent := t.Nodes[parent].Parent
		if t.Nodes[grandparent].Order == 0 || t.Nodes[grandparent].SecondaryChild == NoNode {
			continue
		}
		bud := t.Nodes[grandparent].SecondaryChild

		t.RecursiveDecapitation(idx)
		_ = t.Activate(bud)
		released = append(released, bud)
	}

	// Keep the order index consistent even when sampling gave up early.
	for _, idx := range released {
		if err := t.DecreaseOrder(idx); err != nil && failure == nil {
			failure = fmt.Errorf("decapitate random order 1: %w", err)
		}
	}
	return failure
}
