package tree

import (
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"testing"
)

// mainAxis builds a quota-3 tree whose main axis has branched twice:
// 0 -> 2 -> 4 (apex), with dormant laterals 1, 3 and 5.
func mainAxis(t *testing.T) *Tree {
	t.Helper()
	tr := New(quota(3))
	for range 4 {
		if _, err := tr.ExtendMain(nil); err != nil {
			t.Fatalf("ExtendMain failed: %v", err)
		}
	}
	if tr.Size() != 6 || !slices.Equal(tr.TipIndices, []int{4}) {
		t.Fatalf("unexpected setup: size %d tips %v", tr.Size(), tr.TipIndices)
	}
	return tr
}

// withLateral extends mainAxis with a grown first-order branch at node 1:
// 1 -> 7 -> 9 (apex), with dormant laterals 6, 8 and 10.
func withLateral(t *testing.T) *Tree {
	t.Helper()
	tr := mainAxis(t)
	if err := tr.Activate(1); err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{1, 1, 7, 7} {
		if _, err := tr.ExtendNode(i); err != nil {
			t.Fatalf("ExtendNode(%d) failed: %v", i, err)
		}
	}
	if tr.Size() != 11 || tr.Nodes[9].BudState != ActiveBud || tr.Nodes[9].Parent != 7 {
		t.Fatalf("unexpected lateral setup: size %d", tr.Size())
	}
	return tr
}

func TestDecapitateMain(t *testing.T) {
	tr := mainAxis(t)
	tips := len(tr.TipIndices)

	if err := tr.DecapitateMain(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("DecapitateMain failed: %v", err)
	}

	if tr.Nodes[4].BudState != DecapitatedSegment {
		t.Errorf("apex state = %v, want decapitated", tr.Nodes[4].BudState)
	}
	if tr.DecapitatedTip != 4 || tr.OriginalTipIndex() != 4 {
		t.Errorf("decapitated tip = %d, want 4", tr.DecapitatedTip)
	}
	if len(tr.TipIndices) != tips+1 {
		t.Errorf("tips = %v, want exactly one more than before", tr.TipIndices)
	}
	if !slices.Equal(tr.TipIndices, []int{3, 1}) {
		t.Errorf("tips = %v, want [3 1]", tr.TipIndices)
	}
	for _, i := range []int{3, 1} {
		if tr.Nodes[i].BudState != ActiveBud || tr.Nodes[i].Order != 0 || tr.Nodes[i].Data.Order != 0 {
			t.Errorf("released node %d: state %v order %d", i, tr.Nodes[i].BudState, tr.Nodes[i].Order)
		}
	}
	// The new laterals of the released buds follow their promotion.
	for _, i := range []int{6, 7} {
		if tr.Nodes[i].Order != 1 || tr.Nodes[i].BudState != DormantBud {
			t.Errorf("node %d: order %d state %v, want dormant order 1", i, tr.Nodes[i].Order, tr.Nodes[i].BudState)
		}
	}
	mustOrders(t, tr)
}

func TestDecapitateMainNeedsGrandparent(t *testing.T) {
	tr := New(quota(3))
	before := tr.Clone()

	err := tr.DecapitateMain(rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrNoEligibleNode) {
		t.Fatalf("err = %v, want ErrNoEligibleNode", err)
	}
	if tr.Nodes[0].BudState != ActiveBud || tr.Size() != before.Size() || tr.DecapitatedTip != NoNode {
		t.Errorf("failed decapitation mutated the tree")
	}
}

func TestDecapitateMainOnReleasedTipLeavesTreeUnchanged(t *testing.T) {
	tr := mainAxis(t)
	if err := tr.DecapitateMain(rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tr.TipIndices, []int{3, 1}) {
		t.Fatalf("tips = %v, want [3 1]", tr.TipIndices)
	}

	// Pick a seed whose first draw selects tip 3, the released lateral of node 2.
	seed := int64(0)
	for rand.New(rand.NewSource(seed)).Intn(2) != 0 {
		seed++
	}
	before := tr.Clone()

	err := tr.DecapitateMain(rand.New(rand.NewSource(seed)))
	if !errors.Is(err, ErrOrderOutOfRange) {
		t.Fatalf("err = %v, want ErrOrderOutOfRange", err)
	}
	if !reflect.DeepEqual(tr, before) {
		t.Errorf("tree changed by a failed call: tips %v decapitated %d", tr.TipIndices, tr.DecapitatedTip)
	}
	if tr.OriginalTipIndex() != 4 {
		t.Errorf("original tip = %d, want 4", tr.OriginalTipIndex())
	}
	mustOrders(t, tr)
}

func TestRecursiveDecapitation(t *testing.T) {
	tr := withLateral(t)
	tr.RecursiveDecapitation(1)

	if tr.Nodes[1].BudState != BranchingSegment || tr.Nodes[7].BudState != BranchingSegment {
		t.Errorf("branch points inside the subtree must keep their state")
	}
	for _, i := range []int{6, 8, 9, 10} {
		if tr.Nodes[i].BudState != DecapitatedSegment {
			t.Errorf("node %d state = %v, want decapitated", i, tr.Nodes[i].BudState)
		}
	}
	for _, i := range []int{0, 2, 3, 4, 5} {
		if tr.Nodes[i].BudState == DecapitatedSegment {
			t.Errorf("node %d outside the subtree was decapitated", i)
		}
	}
}

func TestDecreaseOrderCascades(t *testing.T) {
	tr := withLateral(t)

	// Any node of the lateral finds the branch's first node.
	if err := tr.DecreaseOrder(9); err != nil {
		t.Fatalf("DecreaseOrder failed: %v", err)
	}
	want := map[int]int{1: 0, 7: 0, 9: 0, 6: 1, 8: 1, 10: 1}
	for i, o := range want {
		n := tr.Nodes[i]
		if n.Order != o || n.Data.Order != o {
			t.Errorf("node %d order = %d/%d, want %d", i, n.Order, n.Data.Order, o)
		}
		for s, seg := range n.Segments {
			if seg.Data.Order != o {
				t.Errorf("node %d segment %d order = %d, want %d", i, s, seg.Data.Order, o)
			}
		}
	}
	if tr.Nodes[3].Order != 1 || tr.Nodes[5].Order != 1 {
		t.Errorf("nodes outside the branch changed order")
	}
	mustOrders(t, tr)
}

func TestDecreaseOrderOfMainAxisFails(t *testing.T) {
	tr := mainAxis(t)
	before := tr.Clone()

	if err := tr.DecreaseOrder(4); !errors.Is(err, ErrOrderOutOfRange) {
		t.Fatalf("err = %v, want ErrOrderOutOfRange", err)
	}
	for i := range tr.Nodes {
		if tr.Nodes[i].Order != before.Nodes[i].Order {
			t.Errorf("node %d order changed", i)
		}
	}
	mustOrders(t, tr)
}

func TestDecapitateLowestBranches(t *testing.T) {
	tr := withLateral(t)

	if err := tr.DecapitateLowestBranches(1, 0, 1); err != nil {
		t.Fatalf("DecapitateLowestBranches failed: %v", err)
	}

	// The cut lands one node below the lateral's apex, at branch point 7.
	if tr.Nodes[7].BudState != BranchingSegment {
		t.Errorf("node 7 state = %v, want branching", tr.Nodes[7].BudState)
	}
	for _, i := range []int{8, 9, 10} {
		if tr.Nodes[i].BudState != DecapitatedSegment {
			t.Errorf("node %d state = %v, want decapitated", i, tr.Nodes[i].BudState)
		}
	}
	// The bud exposed at the cut grows and joins the first order.
	if tr.Nodes[6].BudState != ActiveBud || tr.Nodes[6].Order != 1 {
		t.Errorf("node 6: state %v order %d, want active order 1", tr.Nodes[6].BudState, tr.Nodes[6].Order)
	}
	if tr.Size() != 12 || tr.Nodes[11].Parent != 6 || tr.Nodes[11].Order != 2 {
		t.Errorf("expected a new order-2 bud under node 6")
	}
	mustOrders(t, tr)
}

func TestDecapitateLowestBranchesApexOnly(t *testing.T) {
	tr := withLateral(t)

	if err := tr.DecapitateLowestBranches(1, 0, 0); err != nil {
		t.Fatalf("DecapitateLowestBranches failed: %v", err)
	}
	if tr.Nodes[9].BudState != DecapitatedSegment || tr.Nodes[10].BudState != DecapitatedSegment {
		t.Errorf("apex subtree not decapitated")
	}
	if tr.Nodes[8].BudState != ActiveBud || tr.Nodes[8].Order != 1 {
		t.Errorf("node 8: state %v order %d, want active order 1", tr.Nodes[8].BudState, tr.Nodes[8].Order)
	}
	mustOrders(t, tr)
}

func TestDecapitateLowestBranchesSkipsShortLaterals(t *testing.T) {
	tr := mainAxis(t)
	before := tr.Clone()

	// Lateral 1 sits directly on the main axis and is never cut.
	if err := tr.DecapitateLowestBranches(2, 0, 3); err != nil {
		t.Fatalf("DecapitateLowestBranches failed: %v", err)
	}
	if tr.Size() != before.Size() {
		t.Errorf("arena grew from %d to %d", before.Size(), tr.Size())
	}
	for i := range tr.Nodes {
		if tr.Nodes[i].BudState != before.Nodes[i].BudState {
			t.Errorf("node %d state changed", i)
		}
	}
}

func TestDecapitateRandomOrder1(t *testing.T) {
	tr := withLateral(t)
	rng := rand.New(rand.NewSource(3))

	if err := tr.DecapitateRandomOrder1(1, rng); err != nil {
		t.Fatalf("DecapitateRandomOrder1 failed: %v", err)
	}
	if tr.Nodes[9].BudState != DecapitatedSegment || tr.Nodes[10].BudState != DecapitatedSegment {
		t.Errorf("chosen apex subtree not decapitated")
	}
	if tr.Nodes[6].BudState != ActiveBud || tr.Nodes[6].Order != 1 {
		t.Errorf("node 6: state %v order %d, want active order 1", tr.Nodes[6].BudState, tr.Nodes[6].Order)
	}
	mustOrders(t, tr)
}

func TestDecapitateRandomOrder1TooFewCandidates(t *testing.T) {
	tr := withLateral(t)
	before := tr.Clone()

	err := tr.DecapitateRandomOrder1(2, rand.New(rand.NewSource(3)))
	if !errors.Is(err, ErrNoEligibleNode) {
		t.Fatalf("err = %v, want ErrNoEligibleNode", err)
	}
	if tr.Size() != before.Size() || tr.Nodes[9].BudState != ActiveBud {
		t.Errorf("failed call mutated the tree")
	}
}

func TestDecapitateRandomOrder1GivesUp(t *testing.T) {
	tr := New(quota(3))
	if err := tr.Activate(1); err != nil {
		t.Fatal(err)
	}

	// Node 1 is the only candidate and has no grandparent.
	err := tr.DecapitateRandomOrder1(1, rand.New(rand.NewSource(3)))
	if !errors.Is(err, ErrNoEligibleNode) {
		t.Fatalf("err = %v, want ErrNoEligibleNode", err)
	}
	if tr.Nodes[1].BudState != ActiveBud || tr.Size() != 3 {
		t.Errorf("skipped candidate was modified")
	}
	mustOrders(t, tr)
}

func TestRecalculateInitialOrder(t *testing.T) {
	tr := mainAxis(t)
	if err := tr.DecapitateMain(rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}
	for i := range tr.Nodes {
		tr.Nodes[i].InitialOrder = -5
	}

	tr.RecalculateInitialOrder()

	want := map[int]int{0: 0, 2: 0, 4: 0, 1: 1, 3: 1, 5: 1, 6: 2, 7: 2}
	for i, o := range want {
		if got := tr.Nodes[i].InitialOrder; got != o {
			t.Errorf("node %d initial order = %d, want %d", i, got, o)
		}
	}
}

func TestMainStemValues(t *testing.T) {
	tr := mainAxis(t)
	tr.Nodes[4].Data.Auxin = 1
	tr.Nodes[2].Data.Auxin = 2
	tr.Nodes[2].Segments[1].Data.Auxin = 3
	tr.Nodes[2].Segments[0].Data.Auxin = 4
	tr.Nodes[0].Data.Pin = 5

	got := tr.MainStemValues()
	if len(got) != 7 {
		t.Fatalf("expected 7 values (1 + 3 + 3), got %d", len(got))
	}
	wantAuxin := []float64{1, 2, 3, 4}
	for i, a := range wantAuxin {
		if got[i].Auxin != a {
			t.Errorf("value %d auxin = %v, want %v", i, got[i].Auxin, a)
		}
	}
	if got[4].Pin != 5 {
		t.Errorf("value 4 should be the root's own state, got %+v", got[4])
	}

	// After decapitation the walk still starts from the removed apex.
	if err := tr.DecapitateMain(rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}
	if got := tr.MainStemValues(); len(got) != 7 || got[0].Auxin != 1 {
		t.Errorf("stem after decapitation = %v", got)
	}
}
