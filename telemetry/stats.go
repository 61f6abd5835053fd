package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/budsim/tree"
)

// TreeStats summarises the shape and hormone state of a tree.
type TreeStats struct {
	Nodes    int `csv:"nodes"`
	Segments int `csv:"segments"`
	Tips     int `csv:"tips"`
	MaxOrder int `csv:"max_order"`

	// Bud state counts
	Dormant     int `csv:"dormant"`
	Active      int `csv:"active"`
	Branching   int `csv:"branching"`
	Decapitated int `csv:"decapitated"`

	// Auxin over every node and segment
	AuxinMean float64 `csv:"auxin_mean"`
	AuxinStd  float64 `csv:"auxin_std"`
	AuxinP10  float64 `csv:"auxin_p10"`
	AuxinP50  float64 `csv:"auxin_p50"`
	AuxinP90  float64 `csv:"auxin_p90"`

	PinMean float64 `csv:"pin_mean"`
	PinStd  float64 `csv:"pin_std"`

	// Pearson correlation of node order and node auxin; 0 when undefined.
	OrderAuxinCorr float64 `csv:"order_auxin_corr"`

	Orders []OrderStats `csv:"-"`
}

// OrderStats summarises the nodes of one order.
type OrderStats struct {
	Order     int     `csv:"order"`
	Nodes     int     `csv:"nodes"`
	Active    int     `csv:"active"`
	Dormant   int     `csv:"dormant"`
	AuxinMean float64 `csv:"auxin_mean"`
	PinMean   float64 `csv:"pin_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// meanStd is stat.MeanStdDev without the NaN for fewer than two samples.
func meanStd(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// ComputeTreeStats walks the whole tree once.
func ComputeTreeStats(t *tree.Tree) TreeStats {
	s := TreeStats{Nodes: t.Size(), Tips: len(t.TipIndices)}

	var auxin, pin, orders, nodeAuxin []float64
	perOrder := map[int]*OrderStats{}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		switch n.BudState {
		case tree.DormantBud:
			s.Dormant++
		case tree.ActiveBud:
			s.Active++
		case tree.BranchingSegment:
			s.Branching++
		case tree.DecapitatedSegment:
			s.Decapitated++
		}
		s.MaxOrder = max(s.MaxOrder, n.Order)
		s.Segments += len(n.Segments)

		auxin = append(auxin, n.Data.Auxin)
		pin = append(pin, n.Data.Pin)
		for _, seg := range n.Segments {
			auxin = append(auxin, seg.Data.Auxin)
			pin = append(pin, seg.Data.Pin)
		}
		orders = append(orders, float64(n.Order))
		nodeAuxin = append(nodeAuxin, n.Data.Auxin)

		o := perOrder[n.Order]
		if o == nil {
			o = &OrderStats{Order: n.Order}
			perOrder[n.Order] = o
		}
		o.Nodes++
		switch n.BudState {
		case tree.ActiveBud:
			o.Active++
		case tree.DormantBud:
			o.Dormant++
		}
		o.AuxinMean += n.Data.Auxin
		o.PinMean += n.Data.Pin
	}

	s.AuxinMean, s.AuxinStd = meanStd(auxin)
	s.PinMean, s.PinStd = meanStd(pin)

	slices.Sort(auxin)
	s.AuxinP10 = Percentile(auxin, 0.10)
	s.AuxinP50 = Percentile(auxin, 0.50)
	s.AuxinP90 = Percentile(auxin, 0.90)

	if len(orders) > 1 {
		if c := stat.Correlation(orders, nodeAuxin, nil); !math.IsNaN(c) {
			s.OrderAuxinCorr = c
		}
	}

	for o := 0; o <= s.MaxOrder; o++ {
		st, ok := perOrder[o]
		if !ok {
			continue
		}
		st.AuxinMean /= float64(st.Nodes)
		st.PinMean /= float64(st.Nodes)
		s.Orders = append(s.Orders, *st)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s TreeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("nodes", s.Nodes),
		slog.Int("segments", s.Segments),
		slog.Int("tips", s.Tips),
		slog.Int("max_order", s.MaxOrder),
		slog.Int("dormant", s.Dormant),
		slog.Int("active", s.Active),
		slog.Int("branching", s.Branching),
		slog.Int("decapitated", s.Decapitated),
		slog.Float64("auxin_mean", s.AuxinMean),
		slog.Float64("auxin_std", s.AuxinStd),
		slog.Float64("auxin_p10", s.AuxinP10),
		slog.Float64("auxin_p50", s.AuxinP50),
		slog.Float64("auxin_p90", s.AuxinP90),
		slog.Float64("pin_mean", s.PinMean),
		slog.Float64("pin_std", s.PinStd),
		slog.Float64("order_auxin_corr", s.OrderAuxinCorr),
	)
}

// LogStats logs the tree stats using slog.
func (s TreeStats) LogStats(msg string) {
	slog.Info(msg, "stats", s)
}
