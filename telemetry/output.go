package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/budsim/config"
	"github.com/pthm-cable/budsim/tree"
)

// NodeRecord is one row of nodes.csv.
type NodeRecord struct {
	Index        int     `csv:"index"`
	Parent       int     `csv:"parent"`
	State        string  `csv:"state"`
	Order        int     `csv:"order"`
	InitialOrder int     `csv:"initial_order"`
	Segments     int     `csv:"segments"`
	Auxin        float64 `csv:"auxin"`
	Pin          float64 `csv:"pin"`
	AuxinFlow    float64 `csv:"auxin_flow"`
	X            float64 `csv:"x"`
	Y            float64 `csv:"y"`
	Z            float64 `csv:"z"`
}

// NodeRecords flattens the tree into one record per node.
func NodeRecords(t *tree.Tree) []NodeRecord {
	records := make([]NodeRecord, len(t.Nodes))
	for i := range t.Nodes {
		n := &t.Nodes[i]
		x, y, z := n.Transform.Position()
		records[i] = NodeRecord{
			Index:        n.Index,
			Parent:       n.Parent,
			State:        n.BudState.String(),
			Order:        n.Order,
			InitialOrder: n.InitialOrder,
			Segments:     len(n.Segments),
			Auxin:        n.Data.Auxin,
			Pin:          n.Data.Pin,
			AuxinFlow:    n.Data.AuxinFlow,
			X:            x,
			Y:            y,
			Z:            z,
		}
	}
	return records
}

// StemRecord is one row of stem.csv, position 0 being the apex.
type StemRecord struct {
	Position int     `csv:"position"`
	Auxin    float64 `csv:"auxin"`
	Pin      float64 `csv:"pin"`
}

// ConvergenceRecord is one row of convergence.csv.
type ConvergenceRecord struct {
	Batch      int     `csv:"batch"`
	Ticks      int     `csv:"ticks"`
	Difference float64 `csv:"difference"`
}

// csvFile is an output file that writes its header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir string

	nodes       csvFile
	stem        csvFile
	orders      csvFile
	convergence csvFile
	perf        csvFile
}

var outputFiles = []string{"nodes.csv", "stem.csv", "orders.csv", "convergence.csv", "perf.csv"}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	targets := []*csvFile{&om.nodes, &om.stem, &om.orders, &om.convergence, &om.perf}
	for i, name := range outputFiles {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		targets[i].f = f
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteNodes writes every node of t to nodes.csv.
func (om *OutputManager) WriteNodes(t *tree.Tree) error {
	if om == nil {
		return nil
	}
	if err := om.nodes.write(NodeRecords(t)); err != nil {
		return fmt.Errorf("writing nodes: %w", err)
	}
	return nil
}

// WriteStem writes the main-stem profile of t to stem.csv.
func (om *OutputManager) WriteStem(t *tree.Tree) error {
	if om == nil {
		return nil
	}
	values := t.MainStemValues()
	records := make([]StemRecord, len(values))
	for i, v := range values {
		records[i] = StemRecord{Position: i, Auxin: v.Auxin, Pin: v.Pin}
	}
	if len(records) == 0 {
		return nil
	}
	if err := om.stem.write(records); err != nil {
		return fmt.Errorf("writing stem: %w", err)
	}
	return nil
}

// WriteOrders writes the per-order summaries to orders.csv.
func (om *OutputManager) WriteOrders(stats TreeStats) error {
	if om == nil || len(stats.Orders) == 0 {
		return nil
	}
	if err := om.orders.write(stats.Orders); err != nil {
		return fmt.Errorf("writing orders: %w", err)
	}
	return nil
}

// WriteBatch appends one relaxation batch to convergence.csv.
func (om *OutputManager) WriteBatch(b tree.RelaxBatch) error {
	if om == nil {
		return nil
	}
	records := []ConvergenceRecord{{Batch: b.Batch, Ticks: b.Ticks, Difference: b.Difference}}
	if err := om.convergence.write(records); err != nil {
		return fmt.Errorf("writing convergence: %w", err)
	}
	return nil
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV()}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{&om.nodes, &om.stem, &om.orders, &om.convergence, &om.perf} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.f = nil
	}
	return firstErr
}
