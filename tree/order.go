package tree

import (
	"fmt"
	"slices"
)

func (t *Tree) cacheIndex(idx, order int) {
	for order >= len(t.orders) {
		t.orders = append(t.orders, []int{})
	}
	t.orders[order] = append(t.orders[order], idx)
}

func (t *Tree) uncacheIndex(idx, order int) {
	t.orders[order] = slices.DeleteFunc(t.orders[order], func(x int) bool { return x == idx })
}

// OrderCount returns the number of order buckets, including trailing
// empty ones.
func (t *Tree) OrderCount() int {
	return len(t.orders)
}

// OrderBucket returns a copy of the node indices at the given order.
func (t *Tree) OrderBucket(order int) ([]int, error) {
	if order < 0 || order >= len(t.orders) {
		return nil, fmt.Errorf("order %d of %d: %w", order, len(t.orders), ErrOrderOutOfRange)
	}
	return slices.Clone(t.orders[order]), nil
}

// CheckOrders verifies that every node is listed exactly once, in the
// bucket matching its Order.
func (t *Tree) CheckOrders() error {
	seen := make([]bool, len(t.Nodes))
	for o, bucket := range t.orders {
		for _, idx := range bucket {
			if idx < 0 || idx >= len(t.Nodes) {
				return fmt.Errorf("order %d lists unknown node %d", o, idx)
			}
			if seen[idx] {
				return fmt.Errorf("node %d listed twice", idx)
			}
			seen[idx] = true
			if t.Nodes[idx].Order != o {
				return fmt.Errorf("node %d has order %d but is listed under %d", idx, t.Nodes[idx].Order, o)
			}
		}
	}
	for idx, ok := range seen {
		if !ok {
			return fmt.Errorf("node %d missing from order index", idx)
		}
	}
	return nil
}

// rebuildOrders recomputes the order index from the nodes' Order fields.
func (t *Tree) rebuildOrders() {
	t.orders = [][]int{{}}
	for i := range t.Nodes {
		t.cacheIndex(i, t.Nodes[i].Order)
	}
}

// orderRoot walks up from i while the parent shares i's order and
// returns the node where that order begins. The root is never crossed.
func (t *Tree) orderRoot(i int) int {
	order := t.Nodes[i].Order
	parent := t.Nodes[i].Parent
	for parent > 0 && t.Nodes[parent].Order == order {
		i = parent
		parent = t.Nodes[i].Parent
	}
	return i
}

// DecreaseOrder promotes the branch containing i one level towards the
// main axis. The node that defines the branch's order is found first, then
// it and its whole subtree are decremented, cascading through children
// the same way.
func (t *Tree) DecreaseOrder(i int) error {
	start := t.orderRoot(i)
	if t.Nodes[start].Order == 0 {
		return fmt.Errorf("decrease order of node %d: %w", start, ErrOrderOutOfRange)
	}

	stack := []int{start}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if idx != start {
			idx = t.orderRoot(idx)
		}

		n := &t.Nodes[idx]
		if n.Order == 0 {
			continue
		}
		t.uncacheIndex(idx, n.Order)
		n.Order--
		n.Data.Order--
		for s := range n.Segments {
			n.Segments[s].Data.Order--
		}
		t.cacheIndex(idx, n.Order)

		// Main subtree first, matching a depth-first recursion.
		if n.SecondaryChild != NoNode {
			stack = append(stack, n.SecondaryChild)
		}
		if n.MainChild != NoNode {
			stack = append(stack, n.MainChild)
		}
	}
	return nil
}

// RecalculateInitialOrder relabels InitialOrder by topology alone: depth
// increases only when descending into a secondary child.
func (t *Tree) RecalculateInitialOrder() {
	type frame struct{ idx, order int }
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.Nodes[f.idx]
		n.InitialOrder = f.order
		if n.SecondaryChild != NoNode {
			stack = append(stack, frame{n.SecondaryChild, f.order + 1})
		}
		if n.MainChild != NoNode {
			stack = append(stack, frame{n.MainChild, f.order})
		}
	}
}
