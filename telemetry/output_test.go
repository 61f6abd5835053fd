package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/budsim/config"
	"github.com/pthm-cable/budsim/tree"
)

func readCSV[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// Every method is a no-op on a nil manager.
	tr := tree.New(tree.DefaultSettings())
	if err := om.WriteNodes(tr); err != nil {
		t.Error(err)
	}
	if err := om.WriteBatch(tree.RelaxBatch{}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	tr := testTree(t)
	tr.UpdateTransformations(tree.RenderParams{SegmentLength: 1, InitialWidth: 1})

	if err := om.WriteNodes(tr); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteStem(tr); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteOrders(ComputeTreeStats(tr)); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		b := tree.RelaxBatch{Batch: i, Ticks: i * tree.RelaxBatchTicks, Difference: 1 / float64(i)}
		if err := om.WriteBatch(b); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	nodes := readCSV[NodeRecord](t, filepath.Join(dir, "nodes.csv"))
	if len(nodes) != tr.Size() {
		t.Fatalf("nodes.csv has %d rows, want %d", len(nodes), tr.Size())
	}
	if nodes[2].State != "branching_segment" || nodes[2].Auxin != 0.5 || nodes[2].Y != 3 {
		t.Errorf("node 2 row = %+v", nodes[2])
	}

	stem := readCSV[StemRecord](t, filepath.Join(dir, "stem.csv"))
	if len(stem) != len(tr.MainStemValues()) || stem[0].Position != 0 {
		t.Errorf("stem.csv rows = %+v", stem)
	}

	batches := readCSV[ConvergenceRecord](t, filepath.Join(dir, "convergence.csv"))
	if len(batches) != 3 || batches[2].Ticks != 300 {
		t.Errorf("convergence.csv rows = %+v", batches)
	}

	orders := readCSV[OrderStats](t, filepath.Join(dir, "orders.csv"))
	if len(orders) != 3 {
		t.Errorf("orders.csv rows = %+v", orders)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
