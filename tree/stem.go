package tree

// StemValue is the hormone reading at one point of the main stem.
type StemValue struct {
	Auxin float64 `csv:"auxin" json:"auxin"`
	Pin   float64 `csv:"pin" json:"pin"`
}

// MainStemValues walks from the original main tip down to the root and
// lists every node's own state followed by its segments, distal first,
// so the sequence runs from apex to base.
func (t *Tree) MainStemValues() []StemValue {
	var out []StemValue
	for idx := t.OriginalTipIndex(); idx != NoNode; idx = t.Nodes[idx].Parent {
		n := &t.Nodes[idx]
		out = append(out, StemValue{Auxin: n.Data.Auxin, Pin: n.Data.Pin})
		for s := len(n.Segments) - 1; s >= 0; s-- {
			d := n.Segments[s].Data
			out = append(out, StemValue{Auxin: d.Auxin, Pin: d.Pin})
		}
	}
	return out
}
