package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/budsim/tree"
)

// PerfCollector tracks relaxation batch timing over a rolling window.
type PerfCollector struct {
	windowSize   int
	samples      []time.Duration
	writeIndex   int
	sampleCount  int
	batchStart   time.Time
	totalBatches int
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of batches to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 20
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]time.Duration, windowSize),
	}
}

// Start marks the beginning of the first batch.
func (p *PerfCollector) Start() {
	p.batchStart = time.Now()
}

// EndBatch records the time since the previous batch ended (or Start)
// and begins timing the next one.
func (p *PerfCollector) EndBatch() {
	now := time.Now()
	p.Record(now.Sub(p.batchStart))
	p.batchStart = now
}

// Record adds one batch duration to the window.
func (p *PerfCollector) Record(d time.Duration) {
	p.samples[p.writeIndex] = d
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.totalBatches++
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Batches          int
	AvgBatchDuration time.Duration
	MinBatchDuration time.Duration
	MaxBatchDuration time.Duration
	TicksPerSecond   float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{Batches: p.totalBatches}
	}

	var total, minD, maxD time.Duration
	for i := 0; i < p.sampleCount; i++ {
		d := p.samples[i]
		total += d
		if i == 0 || d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
	}

	avg := total / time.Duration(p.sampleCount)
	var ticksPerSec float64
	if avg > 0 {
		ticksPerSec = float64(tree.RelaxBatchTicks) * float64(time.Second) / float64(avg)
	}

	return PerfStats{
		Batches:          p.totalBatches,
		AvgBatchDuration: avg,
		MinBatchDuration: minD,
		MaxBatchDuration: maxD,
		TicksPerSecond:   ticksPerSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("batches", s.Batches),
		slog.Int64("avg_batch_us", s.AvgBatchDuration.Microseconds()),
		slog.Int64("min_batch_us", s.MinBatchDuration.Microseconds()),
		slog.Int64("max_batch_us", s.MaxBatchDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Batch       int     `csv:"batch"`
	AvgBatchUS  int64   `csv:"avg_batch_us"`
	MinBatchUS  int64   `csv:"min_batch_us"`
	MaxBatchUS  int64   `csv:"max_batch_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV() PerfStatsCSV {
	return PerfStatsCSV{
		Batch:       s.Batches,
		AvgBatchUS:  s.AvgBatchDuration.Microseconds(),
		MinBatchUS:  s.MinBatchDuration.Microseconds(),
		MaxBatchUS:  s.MaxBatchDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
	}
}
