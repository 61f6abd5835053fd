package tree

import (
	"fmt"
	"math/rand"
)

// filterBucket returns the nodes at order that are in the given state.
func (t *Tree) filterBucket(order int, state BudState) []int {
	var out []int
	for _, idx := range t.orders[order] {
		if t.Nodes[idx].BudState == state {
			out = append(out, idx)
		}
	}
	return out
}

// filterArena returns every node in the given state.
func (t *Tree) filterArena(state BudState) []int {
	var out []int
	for i := range t.Nodes {
		if t.Nodes[i].BudState == state {
			out = append(out, i)
		}
	}
	return out
}

// ExtendRandom extends a uniformly chosen active bud.
func (t *Tree) ExtendRandom(rng *rand.Rand) (ExtensionResult, error) {
	candidates := t.filterArena(ActiveBud)
	if len(candidates) == 0 {
		return FullBefore, fmt.Errorf("extend random: %w", ErrNoEligibleNode)
	}
	return t.ExtendNode(candidates[rng.Intn(len(candidates))])
}

// BranchRandom activates a uniformly chosen dormant bud.
func (t *Tree) BranchRandom(rng *rand.Rand) error {
	candidates := t.filterArena(DormantBud)
	if len(candidates) == 0 {
		return fmt.Errorf("branch random: %w", ErrNoEligibleNode)
	}
	return t.Activate(candidates[rng.Intn(len(candidates))])
}

// ExtendRandomWithOrder extends a uniformly chosen active bud of the
// given order.
func (t *Tree) ExtendRandomWithOrder(order int, rng *rand.Rand) (ExtensionResult, error) {
	if order < 0 || order >= len(t.orders) {
		return FullBefore, fmt.Errorf("extend random with order %d: %w", order, ErrOrderOutOfRange)
	}
	candidates := t.filterBucket(order, ActiveBud)
	if len(candidates) == 0 {
		return FullBefore, fmt.Errorf("extend random with order %d: %w", order, ErrNoEligibleNode)
	}
	return t.ExtendNode(candidates[rng.Intn(len(candidates))])
}

// ActivateRandomWithOrder activates a uniformly chosen dormant bud of the
// given order.
func (t *Tree) ActivateRandomWithOrder(order int, rng *rand.Rand) error {
	if order < 0 || order >= len(t.orders) {
		return fmt.Errorf("activate random with order %d: %w", order, ErrOrderOutOfRange)
	}
	candidates := t.filterBucket(order, DormantBud)
	if len(candidates) == 0 {
		return fmt.Errorf("activate random with order %d: %w", order, ErrNoEligibleNode)
	}
	return t.Activate(candidates[rng.Intn(len(candidates))])
}
