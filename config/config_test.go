package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/budsim/tree"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Settings != tree.DefaultSettings() {
		t.Errorf("embedded settings = %+v, want %+v", cfg.Settings, tree.DefaultSettings())
	}
	if cfg.Hormone.Transport <= 0 {
		t.Errorf("expected positive transport, got %v", cfg.Hormone.Transport)
	}
	want := 137.0 * math.Pi / 180
	if math.Abs(cfg.Derived.Render.DivergenceAngle-want) > 1e-12 {
		t.Errorf("derived divergence = %v, want %v", cfg.Derived.Render.DivergenceAngle, want)
	}
}

func TestLoadOverlayKeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	overlay := "settings:\n  segments_amount: 7\nrelax:\n  precision: 0.5\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Settings.SegmentsAmount != 7 {
		t.Errorf("segments_amount = %d, want 7", cfg.Settings.SegmentsAmount)
	}
	if cfg.Settings.ActiveGain != tree.DefaultSettings().ActiveGain {
		t.Errorf("active_gain overwritten: %v", cfg.Settings.ActiveGain)
	}
	if cfg.Relax.Precision != 0.5 {
		t.Errorf("precision = %v, want 0.5", cfg.Relax.Precision)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"quota too small", "settings:\n  segments_amount: 1\n"},
		{"zero dt", "settings:\n  dt: 0\n"},
		{"zero precision", "relax:\n  precision: 0\n"},
		{"negative workers", "relax:\n  workers: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %q", tt.overlay)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustLoad("")
	cfg.Settings.SegmentsAmount = 9
	cfg.Scenario.Name = "pole"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Settings.SegmentsAmount != 9 || loaded.Scenario.Name != "pole" {
		t.Errorf("round trip lost values: %+v", loaded.Scenario)
	}
}
