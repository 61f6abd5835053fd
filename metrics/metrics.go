// Package metrics exposes simulator progress as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/budsim/tree"
)

const namespace = "budsim"

// Recorder owns a private registry so several simulations can run in one
// process without clashing.
type Recorder struct {
	reg *prometheus.Registry

	ticks         prometheus.Counter
	batches       prometheus.Counter
	batchDuration prometheus.Histogram
	difference    prometheus.Gauge
	operations    *prometheus.CounterVec
	nodes         *prometheus.GaugeVec
	tips          prometheus.Gauge
}

// New creates a recorder with Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Hormone ticks applied during relaxation.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relax_batches_total",
			Help:      "Relaxation batches completed.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relax_batch_duration_seconds",
			Help:      "Wall time of one relaxation batch.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		difference: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_difference",
			Help:      "Accumulated difference of the latest relaxation batch.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Structural growth operations by outcome.",
		}, []string{"op", "outcome"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the current tree by bud state.",
		}, []string{"state"}),
		tips: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tips",
			Help:      "Recorded main tips of the current tree.",
		}),
	}
	r.reg.MustRegister(
		r.ticks, r.batches, r.batchDuration, r.difference, r.operations, r.nodes, r.tips,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Outcome classifies an operation error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tree.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, tree.ErrAlreadyPresent):
		return "already_present"
	case errors.Is(err, tree.ErrNoEligibleNode):
		return "no_eligible_node"
	case errors.Is(err, tree.ErrOrderOutOfRange):
		return "order_out_of_range"
	default:
		return "error"
	}
}

// ObserveOp counts one structural operation. It has the shape of a
// scenario observer.
func (r *Recorder) ObserveOp(op string, err error) {
	r.operations.WithLabelValues(op, Outcome(err)).Inc()
}

// ObserveBatch records a finished relaxation batch and its wall time.
func (r *Recorder) ObserveBatch(b tree.RelaxBatch, d time.Duration) {
	r.ticks.Add(tree.RelaxBatchTicks)
	r.batches.Inc()
	r.difference.Set(b.Difference)
	r.batchDuration.Observe(d.Seconds())
}

// SetTree updates the shape gauges from t.
func (r *Recorder) SetTree(t *tree.Tree) {
	counts := map[tree.BudState]int{}
	for i := range t.Nodes {
		counts[t.Nodes[i].BudState]++
	}
	for _, s := range []tree.BudState{tree.DormantBud, tree.ActiveBud, tree.BranchingSegment, tree.DecapitatedSegment} {
		r.nodes.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
	r.tips.Set(float64(len(t.TipIndices)))
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
