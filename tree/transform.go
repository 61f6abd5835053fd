package tree

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec4 is one column of a Mat4.
type Vec4 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Mat4 is a 4x4 affine transform stored as four columns.
type Mat4 struct {
	X Vec4 `json:"x"`
	Y Vec4 `json:"y"`
	Z Vec4 `json:"z"`
	W Vec4 `json:"w"`
}

// RenderParams controls how node transforms are laid out.
type RenderParams struct {
	DivergenceAngle     float64 `yaml:"divergence_angle"` // Radians, multiplied by the bud's index
	BranchingAngle      float64 `yaml:"branching_angle"`  // Radians
	SegmentLength       float64 `yaml:"segment_length"`
	InitialWidth        float64 `yaml:"initial_width"`
	OrderWidthInfluence float64 `yaml:"order_width_influence"` // Thinning per initial order
}

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		X: Vec4{X: 1},
		Y: Vec4{Y: 1},
		Z: Vec4{Z: 1},
		W: Vec4{W: 1},
	}
}

// Translation returns a transform moving points by (x, y, z).
func Translation(x, y, z float64) Mat4 {
	m := Identity()
	m.W = Vec4{X: x, Y: y, Z: z, W: 1}
	return m
}

// RotationY returns a right-handed rotation about the y axis.
func RotationY(theta float64) Mat4 {
	s, c := math.Sincos(theta)
	m := Identity()
	m.X = Vec4{X: c, Z: -s}
	m.Z = Vec4{X: s, Z: c}
	return m
}

// RotationZ returns a right-handed rotation about the z axis.
func RotationZ(theta float64) Mat4 {
	s, c := math.Sincos(theta)
	m := Identity()
	m.X = Vec4{X: c, Y: s}
	m.Y = Vec4{X: -s, Y: c}
	return m
}

// Scale returns a non-uniform scaling transform.
func Scale(x, y, z float64) Mat4 {
	return Mat4{
		X: Vec4{X: x},
		Y: Vec4{Y: y},
		Z: Vec4{Z: z},
		W: Vec4{W: 1},
	}
}

// Position is the translation part of the transform.
func (m Mat4) Position() (x, y, z float64) {
	return m.W.X, m.W.Y, m.W.Z
}

func (m Mat4) dense() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		m.X.X, m.Y.X, m.Z.X, m.W.X,
		m.X.Y, m.Y.Y, m.Z.Y, m.W.Y,
		m.X.Z, m.Y.Z, m.Z.Z, m.W.Z,
		m.X.W, m.Y.W, m.Z.W, m.W.W,
	})
}

func fromDense(d mat.Matrix) Mat4 {
	col := func(j int) Vec4 {
		return Vec4{X: d.At(0, j), Y: d.At(1, j), Z: d.At(2, j), W: d.At(3, j)}
	}
	return Mat4{X: col(0), Y: col(1), Z: col(2), W: col(3)}
}

// Mul returns the product m · others[0] · others[1] ...
func Mul(m Mat4, others ...Mat4) Mat4 {
	acc := m.dense()
	var tmp mat.Dense
	for _, o := range others {
		tmp.Mul(acc, o.dense())
		acc.CloneFrom(&tmp)
	}
	return fromDense(acc)
}

// UpdateTransformations lays out every node. Main children continue
// straight up from their parent by one full internode; lateral buds sit at
// the current tip of their parent, rotated by a divergence angle that
// grows with the bud's index and tilted by the branching angle. Finally
// every node is thinned according to its initial order.
func (t *Tree) UpdateTransformations(p RenderParams) {
	distance := p.SegmentLength * float64(t.Settings.SegmentsAmount)
	up := Translation(0, distance, 0)
	width := func(n *Node) float64 {
		return p.InitialWidth / (float64(n.InitialOrder)*p.OrderWidthInfluence + 1)
	}

	t.Nodes[0].Transform = Identity()
	// Children always come after their parent, so one forward pass
	// sees every parent transform before its children need it.
	for i := range t.Nodes {
		n := &t.Nodes[i]
		base := n.Transform
		if n.MainChild != NoNode {
			t.Nodes[n.MainChild].Transform = Mul(base, up)
		}
		if n.SecondaryChild != NoNode {
			offset := width(n) * 0.8
			along := p.SegmentLength * float64(len(n.Segments))
			if n.MainChild != NoNode {
				along += p.SegmentLength
			}
			t.Nodes[n.SecondaryChild].Transform = Mul(base,
				Translation(0, along, 0),
				RotationY(p.DivergenceAngle*float64(n.SecondaryChild)),
				Translation(-offset, 0, 0),
				RotationZ(p.BranchingAngle),
			)
		}
	}

	for i := range t.Nodes {
		s := width(&t.Nodes[i])
		t.Nodes[i].Transform = Mul(t.Nodes[i].Transform, Scale(s, 1, s))
	}
}
