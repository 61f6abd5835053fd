package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/budsim/telemetry"
	"github.com/pthm-cable/budsim/tree"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "budsim.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func snapshot(t *testing.T, scenario string, extensions int) *telemetry.Snapshot {
	t.Helper()
	s := tree.DefaultSettings()
	s.SegmentsAmount = 3
	tr := tree.New(s)
	for range extensions {
		if _, err := tr.ExtendMain(nil); err != nil {
			t.Fatal(err)
		}
	}
	tr.Nodes[0].Data.Auxin = 0.25
	return &telemetry.Snapshot{Version: telemetry.SnapshotVersion, Seed: 9, Scenario: scenario, Tree: tr}
}

func TestSaveLoad(t *testing.T) {
	db := openTest(t)
	snap := snapshot(t, "pole", 4)

	id, err := db.Save(snap)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := db.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Scenario != "pole" || loaded.Seed != 9 {
		t.Errorf("header = %+v", loaded)
	}
	if loaded.Tree.Size() != snap.Tree.Size() {
		t.Fatalf("size = %d, want %d", loaded.Tree.Size(), snap.Tree.Size())
	}
	if d := tree.Difference(loaded.Tree, snap.Tree); d != 0 {
		t.Errorf("hormone state changed by %v", d)
	}
}

func TestLoadMissing(t *testing.T) {
	db := openTest(t)
	if _, err := db.Load(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	db := openTest(t)
	for i, name := range []string{"a", "b", "c"} {
		if _, err := db.Save(snapshot(t, name, 2*(i+1))); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := db.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d rows, want 2", len(infos))
	}
	if infos[0].Scenario != "c" || infos[1].Scenario != "b" {
		t.Errorf("order = %q, %q; want newest first", infos[0].Scenario, infos[1].Scenario)
	}
	// Six extensions at quota 3 make three branch points: 2 + 3*2 nodes.
	if infos[0].Nodes != 8 || infos[0].Tips != 1 {
		t.Errorf("summary = %+v", infos[0])
	}
}

func TestNodesAtOrder(t *testing.T) {
	db := openTest(t)
	id, err := db.Save(snapshot(t, "pole", 4))
	if err != nil {
		t.Fatal(err)
	}

	axis, err := db.NodesAtOrder(id, 0)
	if err != nil {
		t.Fatalf("NodesAtOrder failed: %v", err)
	}
	if len(axis) != 3 {
		t.Fatalf("got %d order-0 nodes, want 3", len(axis))
	}
	if axis[0].Index != 0 || axis[0].State != "branching_segment" || axis[0].Auxin != 0.25 || axis[0].Segments != 2 {
		t.Errorf("root row = %+v", axis[0])
	}
	if axis[2].Index != 4 || axis[2].State != "active_bud" {
		t.Errorf("apex row = %+v", axis[2])
	}

	laterals, err := db.NodesAtOrder(id, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range laterals {
		if r.State != "dormant_bud" {
			t.Errorf("lateral %d state = %s", r.Index, r.State)
		}
	}
}
