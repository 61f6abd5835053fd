package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/budsim/tree"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots written by a newer format.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot holds a tree together with how it was produced.
type Snapshot struct {
	Version  int    `json:"version"`
	Seed     int64  `json:"seed"`
	Scenario string `json:"scenario"`

	// Ticks is the number of hormone ticks applied since growth ended.
	Ticks int `json:"ticks"`

	Tree *tree.Tree `json:"tree"`
}

// Filename is the base name SaveSnapshot uses.
func (s *Snapshot) Filename() string {
	name := "snapshot"
	if s.Scenario != "" {
		name += "_" + strings.ReplaceAll(s.Scenario, " ", "_")
	}
	name += fmt.Sprintf("_%d", s.Seed)
	if s.Ticks > 0 {
		name += fmt.Sprintf("_t%d", s.Ticks)
	}
	return name + ".json"
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, snapshot.Filename())

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk. The tree's order index is
// checked against its nodes while decoding.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeSnapshot(data)
}

// DecodeSnapshot parses a snapshot from its JSON form.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version < 1 || snapshot.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d: %w", snapshot.Version, ErrSnapshotVersion)
	}
	if snapshot.Tree == nil || snapshot.Tree.Size() == 0 {
		return nil, fmt.Errorf("snapshot has no tree")
	}

	return &snapshot, nil
}
