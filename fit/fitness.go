package fit

import (
	"fmt"
	"math"

	"github.com/pthm-cable/budsim/config"
	"github.com/pthm-cable/budsim/tree"
)

// failedFitness is returned for parameters whose relaxation fails.
const failedFitness = 1e9

// Evaluator relaxes a fixed topology under candidate parameters and scores
// the main-stem auxin profile against a target.
type Evaluator struct {
	params *ParamVector
	base   config.Config
	tree   *tree.Tree
	target []float64
}

// NewEvaluator checks that target has one value per main-stem position of t.
func NewEvaluator(params *ParamVector, base *config.Config, t *tree.Tree, target []float64) (*Evaluator, error) {
	if n := len(t.MainStemValues()); n != len(target) {
		return nil, fmt.Errorf("target profile has %d values, main stem has %d", len(target), n)
	}
	return &Evaluator{params: params, base: *base, tree: t, target: target}, nil
}

// Config returns a copy of the base config with values applied.
func (e *Evaluator) Config(values []float64) *config.Config {
	cfg := e.base
	e.params.ApplyToConfig(&cfg, values)
	return &cfg
}

// Profile relaxes the tree under values and returns the main-stem auxin.
func (e *Evaluator) Profile(values []float64) ([]float64, error) {
	cfg := e.Config(values)
	t := e.tree.Clone()
	t.NewSettings(cfg.Settings)

	relaxed, err := tree.CalculateStaticDistribution(t, cfg.Hormone, cfg.Relax.Precision)
	if err != nil {
		return nil, err
	}
	stem := relaxed.MainStemValues()
	profile := make([]float64, len(stem))
	for i, v := range stem {
		profile[i] = v.Auxin
	}
	return profile, nil
}

// Evaluate returns the RMS error between the relaxed profile and the
// target (lower = better).
func (e *Evaluator) Evaluate(values []float64) float64 {
	profile, err := e.Profile(values)
	if err != nil {
		return failedFitness
	}
	var sum float64
	for i, v := range profile {
		d := v - e.target[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(profile)))
}
