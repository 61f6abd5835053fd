package scenario

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/pthm-cable/budsim/tree"
)

// ErrUnknownScenario is returned by Build for an unregistered name.
var ErrUnknownScenario = errors.New("unknown scenario")

// Params carries the knobs of the parameterised scenarios. Scripted plant
// scenarios ignore it.
type Params struct {
	Nodes         int     // RandomTree growth steps
	InitialSize   int     // RandomTree main-axis extensions
	BranchProb    float64 // RandomTree probability of growing without branching
	Size          int     // Pole extensions
	InternodeSize int     // Pole segment quota
}

// Factory builds a tree from base settings.
type Factory func(s tree.Settings, p Params, rng *rand.Rand, obs Observer) *tree.Tree

func fixed(f func(tree.Settings, *rand.Rand, Observer) *tree.Tree) Factory {
	return func(s tree.Settings, _ Params, rng *rand.Rand, obs Observer) *tree.Tree {
		return f(s, rng, obs)
	}
}

var factories = map[string]Factory{
	"wild_type_week_11":        fixed(WildTypeWeek11),
	"wild_decapitated_week_11": fixed(WildDecapitatedWeek11),
	"wild_type_week_11_2":      fixed(WildTypeWeek11v2),
	"rnai60":                   fixed(RNAi60),
	"rnai60_decapitated":       fixed(RNAi60Decapitated),
	"kanttarelli_week_11":      fixed(KanttarelliWeek11),
	"random_tree": func(s tree.Settings, p Params, rng *rand.Rand, obs Observer) *tree.Tree {
		return RandomTree(p.Nodes, p.InitialSize, p.BranchProb, s, rng, obs)
	},
	"pole": func(s tree.Settings, p Params, rng *rand.Rand, obs Observer) *tree.Tree {
		return Pole(p.Size, s, rng, obs)
	},
	"pole_internode_size": func(s tree.Settings, p Params, rng *rand.Rand, obs Observer) *tree.Tree {
		return PoleInternodeSize(p.Size, p.InternodeSize, s, rng, obs)
	},
	"pole_internode_size_active": func(s tree.Settings, p Params, rng *rand.Rand, obs Observer) *tree.Tree {
		return PoleInternodeSizeActive(p.Size, p.InternodeSize, s, rng, obs)
	},
}

// Register adds a factory under name, replacing any previous one.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	factories[name] = f
}

// Names lists the registered scenarios in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build runs the named scenario.
func Build(name string, s tree.Settings, p Params, rng *rand.Rand, obs Observer) (*tree.Tree, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return f(s, p, rng, obs), nil
}
