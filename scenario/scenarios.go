package scenario

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/budsim/tree"
)

func withQuota(s tree.Settings, n int) tree.Settings {
	s.SegmentsAmount = n
	return s
}

// WildTypeWeek11 grows an eleven-week wild-type plant: a long main axis
// with first-order branches that are released one or two per step and
// extended more the older the plant gets.
func WildTypeWeek11(s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	g := NewGrower(withQuota(s, 6), rng, obs)
	g.ExtendMain(10)
	for i := range 25 {
		g.ActivateOrder(1)
		if g.Chance(0.45) {
			g.ActivateOrder(1)
		}
		g.ExtendOrder(1, 3*i)
		g.ExtendMain(5)
	}
	return g.Tree
}

// WildDecapitatedWeek11 is WildTypeWeek11 with the main tip removed at
// step 8, after which internodes grow one segment longer, and the lowest
// branches pruned at step 20.
func WildDecapitatedWeek11(s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	quota := 6
	g := NewGrower(withQuota(s, quota), rng, obs)
	g.ExtendMain(10)
	for i := range 25 {
		if i == 8 {
			g.DecapitateMain()
			quota++
			g.SetQuota(quota)
		}
		if i == 20 {
			g.DecapitateLowestBranches(5, 1, 3)
		}
		g.ActivateOrder(1)
		if g.Chance(0.45) {
			g.ActivateOrder(1)
		}
		extensions := 3 * i
		if i >= 20 {
			extensions = int(math.Floor(2.5 * float64(i)))
		}
		g.ExtendOrder(1, extensions)
		g.ExtendMain(5)
	}
	g.Tree.RecalculateInitialOrder()
	return g.Tree
}

// WildTypeWeek11v2 is a shorter-internode variant where branch growth is
// tied to the segment quota.
func WildTypeWeek11v2(s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	const quota = 5
	g := NewGrower(withQuota(s, quota), rng, obs)
	g.ExtendMain(quota * 2)
	for i := range 20 {
		g.ActivateOrder(1)
		g.ExtendOrder(1, int(math.Floor(float64(quota)/2*float64(i))))
		g.ExtendMain(quota - 1)
	}
	return g.Tree
}

// RNAi60 grows a bushy knock-down line where second-order branches start
// appearing after step 4.
func RNAi60(s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	return rnai60(s, rng, obs, false)
}

// RNAi60Decapitated is RNAi60 with the main tip removed at step 8 and the
// lowest branches pruned at step 20.
func RNAi60Decapitated(s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	return rnai60(s, rng, obs, true)
}

func rnai60(s tree.Settings, rng *rand.Rand, obs Observer, decapitate bool) *tree.Tree {
	const quota = 4
	g := NewGrower(withQuota(s, quota), rng, obs)
	g.ExtendMain((quota - 1) * 2)
	for i := range 25 {
		g.ActivateOrder(1)
		if i > 4 {
			if g.Chance(0.5) {
				g.ActivateOrder(2)
			}
			g.ExtendOrder(2, int(math.Ceil(0.5*float64(i))))
		}
		if decapitate && i == 8 {
			g.DecapitateMain()
		}
		if decapitate && i == 20 {
			g.DecapitateLowestBranches(5, 1, 3)
		}
		times := 2
		if g.Chance(0.6) {
			times = 3
		}
		g.ExtendOrder(1, times*i)
		g.ExtendMain(quota - 1)
	}
	if decapitate {
		g.Tree.RecalculateInitialOrder()
	}
	return g.Tree
}

// KanttarelliWeek11 grows a compact cultivar with short internodes and
// steady second-order growth.
func KanttarelliWeek11(s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	g := NewGrower(withQuota(s, 4), rng, obs)
	g.ExtendMain(4)
	for i := range 20 {
		g.ActivateOrder(1)
		if i > 4 {
			g.ExtendOrder(2, i)
		}
		g.ExtendOrder(1, 2*i)
		g.ExtendMain(2)
	}
	return g.Tree
}

// RandomTree extends the main axis initialSize times, then runs nodes
// RandomGrowth steps and nodes/2 plain random extensions.
func RandomTree(nodes, initialSize int, prob float64, s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	return randomTree(nodes, initialSize, prob, s, rng, obs).Tree
}

func randomTree(nodes, initialSize int, prob float64, s tree.Settings, rng *rand.Rand, obs Observer) *Grower {
	g := NewGrower(s, rng, obs)
	g.ExtendMain(initialSize)
	for range nodes {
		g.RandomGrowth(prob)
	}
	g.ExtendRandom(nodes / 2)
	return g
}

// Pole grows a single unbranched internode of size segments.
func Pole(size int, s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	return RandomTree(0, size, 0, withQuota(s, size+2), rng, obs)
}

// PoleInternodeSize grows a bare main axis from size extensions with the
// given segment quota.
func PoleInternodeSize(size, internodeSize int, s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	return RandomTree(0, size, 0, withQuota(s, internodeSize), rng, obs)
}

// PoleInternodeSizeActive is PoleInternodeSize with every lateral bud
// released except the one next to the growing apex.
func PoleInternodeSizeActive(size, internodeSize int, s tree.Settings, rng *rand.Rand, obs Observer) *tree.Tree {
	g := randomTree(0, size, 0, withQuota(s, internodeSize), rng, obs)
	g.ActivateStalledBuds(g.Tree.Size())
	return g.Tree
}
