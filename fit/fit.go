package fit

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Options controls a CMA-ES search.
type Options struct {
	MaxEvals     int
	Population   int     // 0 = 4 + 3·ln(dim)
	InitStepSize float64 // In normalized units; 0 = 0.3
	OnEval       func(Eval)
}

// Eval reports one evaluated candidate.
type Eval struct {
	N       int
	Fitness float64
	Params  []float64 // Clamped raw values
}

// Result is the best candidate seen during the search.
type Result struct {
	Params  []float64
	Fitness float64
	Evals   int
}

// Run minimises e.Evaluate starting from the base config's values. The
// starting point is evaluated first, so the result is never worse than it.
// The returned error is the optimizer's termination error, if any; the
// result is still valid.
func Run(e *Evaluator, opts Options) (Result, error) {
	pv := e.params
	start := pv.Clamp(pv.ExtractFromConfig(&e.base))

	res := Result{Params: start, Fitness: e.Evaluate(start), Evals: 1}
	report := func(raw []float64, f float64) {
		if f < res.Fitness {
			res.Fitness = f
			res.Params = raw
		}
		if opts.OnEval != nil {
			opts.OnEval(Eval{N: res.Evals, Fitness: f, Params: raw})
		}
	}
	report(start, res.Fitness)

	if opts.MaxEvals <= 0 {
		return res, nil
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := pv.Clamp(pv.Denormalize(x))
			f := e.Evaluate(raw)
			res.Evals++
			report(raw, f)
			return f
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	popSize := opts.Population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(pv.Dim())))
	}
	step := opts.InitStepSize
	if step == 0 {
		step = 0.3
	}
	method := &optimize.CmaEsChol{
		InitStepSize: step,
		Population:   popSize,
	}

	_, err := optimize.Minimize(problem, pv.Normalize(start), settings, method)
	return res, err
}
