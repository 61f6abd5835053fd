package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/budsim/tree"
)

func testTree(t *testing.T) *tree.Tree {
	t.Helper()
	s := tree.DefaultSettings()
	s.SegmentsAmount = 3
	tr := tree.New(s)
	for range 4 {
		if _, err := tr.ExtendMain(nil); err != nil {
			t.Fatalf("ExtendMain failed: %v", err)
		}
	}
	if err := tr.Activate(1); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	tr.Nodes[2].Data.Auxin = 0.5
	return tr
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     42,
		Scenario: "pole",
		Ticks:    300,
		Tree:     testTree(t),
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Seed != snapshot.Seed || loaded.Scenario != snapshot.Scenario || loaded.Ticks != snapshot.Ticks {
		t.Errorf("header mismatch: got %+v", loaded)
	}
	if loaded.Tree.Size() != snapshot.Tree.Size() {
		t.Fatalf("tree size = %d, want %d", loaded.Tree.Size(), snapshot.Tree.Size())
	}
	if d := tree.Difference(loaded.Tree, snapshot.Tree); d != 0 {
		t.Errorf("hormone state changed by %v", d)
	}
	if err := loaded.Tree.CheckOrders(); err != nil {
		t.Errorf("order index: %v", err)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tests := []struct {
		snap Snapshot
		want string
	}{
		{Snapshot{Scenario: "pole", Seed: 42}, "snapshot_pole_42.json"},
		{Snapshot{Scenario: "pole", Seed: 42, Ticks: 300}, "snapshot_pole_42_t300.json"},
		{Snapshot{Scenario: "my tree", Seed: 1}, "snapshot_my_tree_1.json"},
		{Snapshot{Seed: 7}, "snapshot_7.json"},
	}

	for _, tt := range tests {
		if got := tt.snap.Filename(); got != tt.want {
			t.Errorf("Filename() = %q, want %q", got, tt.want)
		}
	}
}

func TestLoadSnapshotRejects(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"future version", `{"version": 99, "tree": null}`, ErrSnapshotVersion},
		{"missing version", `{"seed": 1}`, ErrSnapshotVersion},
		{"missing tree", `{"version": 1}`, nil},
		{"garbage", `not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "bad.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSnapshot(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
