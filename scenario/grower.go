// Package scenario holds scripted growth programs that build reference
// tree shapes, and the Grower they are written against.
package scenario

import (
	"math/rand"

	"github.com/pthm-cable/budsim/tree"
)

// Operation names reported to an Observer.
const (
	OpExtendMain       = "extend_main"
	OpExtendRandom     = "extend_random"
	OpExtendOrder      = "extend_order"
	OpActivateOrder    = "activate_order"
	OpActivate         = "activate"
	OpBranchRandom     = "branch_random"
	OpDecapitateMain   = "decapitate_main"
	OpDecapitateLowest = "decapitate_lowest_branches"
	OpDecapitateOrder1 = "decapitate_random_order_1"
)

// Observer is told about every structural operation a Grower performs.
// err is nil on success.
type Observer func(op string, err error)

// Grower applies structural operators to a tree on behalf of a script.
// Scripts are best effort: an operator that has nothing to act on is
// reported to the observer and the script carries on.
type Grower struct {
	Tree *tree.Tree

	rng     *rand.Rand
	observe Observer
}

// NewGrower starts a fresh tree with the given settings. obs may be nil.
func NewGrower(s tree.Settings, rng *rand.Rand, obs Observer) *Grower {
	return &Grower{Tree: tree.New(s), rng: rng, observe: obs}
}

func (g *Grower) report(op string, err error) {
	if g.observe != nil {
		g.observe(op, err)
	}
}

// Chance reports true with probability p.
func (g *Grower) Chance(p float64) bool {
	return g.rng.Float64() < p
}

// SetQuota changes the segment quota of the whole tree.
func (g *Grower) SetQuota(n int) {
	s := g.Tree.Settings
	s.SegmentsAmount = n
	g.Tree.NewSettings(s)
}

// ExtendMain extends a main tip n times.
func (g *Grower) ExtendMain(n int) {
	for range n {
		_, err := g.Tree.ExtendMain(g.rng)
		g.report(OpExtendMain, err)
	}
}

// ExtendRandom extends a random active bud n times.
func (g *Grower) ExtendRandom(n int) {
	for range n {
		_, err := g.Tree.ExtendRandom(g.rng)
		g.report(OpExtendRandom, err)
	}
}

// ExtendOrder extends a random active bud of the given order n times.
func (g *Grower) ExtendOrder(order, n int) {
	for range n {
		_, err := g.Tree.ExtendRandomWithOrder(order, g.rng)
		g.report(OpExtendOrder, err)
	}
}

// ActivateOrder releases one random dormant bud of the given order.
func (g *Grower) ActivateOrder(order int) {
	g.report(OpActivateOrder, g.Tree.ActivateRandomWithOrder(order, g.rng))
}

// BranchRandom releases one random dormant bud of any order.
func (g *Grower) BranchRandom() {
	g.report(OpBranchRandom, g.Tree.BranchRandom(g.rng))
}

// RandomGrowth extends a random bud, first releasing a random dormant bud
// with probability 1-prob.
func (g *Grower) RandomGrowth(prob float64) {
	if g.rng.Float64() > prob {
		g.BranchRandom()
	}
	g.ExtendRandom(1)
}

// DecapitateMain removes a main tip.
func (g *Grower) DecapitateMain() {
	g.report(OpDecapitateMain, g.Tree.DecapitateMain(g.rng))
}

// DecapitateLowestBranches prunes laterals along the main axis.
func (g *Grower) DecapitateLowestBranches(number, skip, segments int) {
	g.report(OpDecapitateLowest, g.Tree.DecapitateLowestBranches(number, skip, segments))
}

// DecapitateRandomOrder1 prunes growing first-order branches.
func (g *Grower) DecapitateRandomOrder1(number int) {
	g.report(OpDecapitateOrder1, g.Tree.DecapitateRandomOrder1(number, g.rng))
}

// ActivateStalledBuds releases every dormant bud among the first n nodes
// whose parent has stopped growing.
func (g *Grower) ActivateStalledBuds(n int) {
	t := g.Tree
	for i := 1; i < n; i++ {
		if t.Nodes[i].BudState != tree.DormantBud {
			continue
		}
		if t.Nodes[t.Nodes[i].Parent].BudState == tree.ActiveBud {
			continue
		}
		g.report(OpActivate, t.Activate(i))
	}
}
