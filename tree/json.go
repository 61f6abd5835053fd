package tree

import (
	"encoding/json"
	"fmt"
)

// treeJSON is the wire form of a Tree. The order index is carried so
// that random selection replays identically after a round trip.
type treeJSON struct {
	TipIndices     []int    `json:"tip_indices"`
	DecapitatedTip *int     `json:"decapitated_tip_index"`
	Settings       Settings `json:"settings"`
	Transform      Mat4     `json:"transformation"`
	Nodes          []Node   `json:"nodes"`
	OrdersIndexed  [][]int  `json:"orders_indexed"`
}

// MarshalJSON implements json.Marshaler.
func (t *Tree) MarshalJSON() ([]byte, error) {
	w := treeJSON{
		TipIndices:    t.TipIndices,
		Settings:      t.Settings,
		Transform:     t.Transform,
		Nodes:         t.Nodes,
		OrdersIndexed: t.orders,
	}
	if t.DecapitatedTip != NoNode {
		tip := t.DecapitatedTip
		w.DecapitatedTip = &tip
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. A missing order index is
// rebuilt from the nodes; a present one must be consistent with them.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var w treeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	for i := range w.Nodes {
		if w.Nodes[i].Index != i {
			return fmt.Errorf("node at position %d has index %d", i, w.Nodes[i].Index)
		}
	}

	*t = Tree{
		Nodes:          w.Nodes,
		TipIndices:     w.TipIndices,
		DecapitatedTip: NoNode,
		Settings:       w.Settings,
		Transform:      w.Transform,
		orders:         w.OrdersIndexed,
	}
	if w.DecapitatedTip != nil {
		t.DecapitatedTip = *w.DecapitatedTip
	}
	if t.orders == nil {
		t.rebuildOrders()
	}
	if err := t.CheckOrders(); err != nil {
		return fmt.Errorf("order index: %w", err)
	}
	return nil
}
