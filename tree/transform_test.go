package tree

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMulIdentity(t *testing.T) {
	m := Mul(Translation(1, 2, 3), RotationY(0.3), Scale(2, 1, 2))
	if got := Mul(Identity(), m); got != m {
		t.Errorf("identity · m = %+v, want %+v", got, m)
	}
	if got := Mul(m); got != m {
		t.Errorf("Mul with no operands changed the matrix")
	}
}

func TestRotations(t *testing.T) {
	tests := []struct {
		name    string
		m       Mat4
		x, y, z float64
	}{
		{"z quarter turn", RotationZ(math.Pi / 2), 0, 1, 0},
		{"y quarter turn", RotationY(math.Pi / 2), 0, 0, -1},
		{"y half turn", RotationY(math.Pi), -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, z := Mul(tt.m, Translation(1, 0, 0)).Position()
			if !near(x, tt.x) || !near(y, tt.y) || !near(z, tt.z) {
				t.Errorf("(1,0,0) maps to (%v,%v,%v), want (%v,%v,%v)", x, y, z, tt.x, tt.y, tt.z)
			}
		})
	}
}

func TestUpdateTransformations(t *testing.T) {
	tr := New(quota(3))
	tr.ExtendNode(0)
	tr.ExtendNode(0)

	tr.UpdateTransformations(RenderParams{SegmentLength: 2, InitialWidth: 1})

	want := map[int][3]float64{
		0: {0, 0, 0},
		1: {-0.8, 6, 0},
		2: {0, 6, 0},
		3: {-0.8, 6, 0},
	}
	for idx, w := range want {
		x, y, z := tr.Nodes[idx].Transform.Position()
		if !near(x, w[0]) || !near(y, w[1]) || !near(z, w[2]) {
			t.Errorf("node %d at (%v,%v,%v), want %v", idx, x, y, z, w)
		}
	}
}

func TestUpdateTransformationsUsesCurrentQuota(t *testing.T) {
	tr := New(quota(3))
	tr.ExtendNode(0)
	tr.ExtendNode(0)
	tr.NewSettings(quota(5))

	tr.UpdateTransformations(RenderParams{SegmentLength: 2, InitialWidth: 1})

	if _, y, _ := tr.Nodes[2].Transform.Position(); !near(y, 10) {
		t.Errorf("main child height = %v, want 10 after raising the quota to 5", y)
	}
}

func TestUpdateTransformationsThinsByInitialOrder(t *testing.T) {
	tr := New(quota(3))
	tr.ExtendNode(0)
	tr.ExtendNode(0)

	tr.UpdateTransformations(RenderParams{SegmentLength: 1, InitialWidth: 1, OrderWidthInfluence: 1})

	if got := tr.Nodes[2].Transform.X.X; !near(got, 1) {
		t.Errorf("main axis width = %v, want 1", got)
	}
	if got := tr.Nodes[1].Transform.X.X; !near(got, 0.5) {
		t.Errorf("first order width = %v, want 0.5", got)
	}
	if got := tr.Nodes[1].Transform.Y.Y; !near(got, 1) {
		t.Errorf("height must not be scaled, got %v", got)
	}
}
