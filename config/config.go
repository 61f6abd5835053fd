// Package config provides configuration loading for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/budsim/hormone"
	"github.com/pthm-cable/budsim/tree"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulator configuration. It is loaded once and passed
// explicitly; nothing in the module reads configuration implicitly.
type Config struct {
	Settings tree.Settings  `yaml:"settings"`
	Hormone  hormone.Model  `yaml:"hormone"`
	Render   RenderConfig   `yaml:"render"`
	Relax    RelaxConfig    `yaml:"relax"`
	Scenario ScenarioConfig `yaml:"scenario"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RenderConfig holds transform layout parameters.
type RenderConfig struct {
	DivergenceAngle     float64 `yaml:"divergence_angle"` // Degrees
	BranchingAngle      float64 `yaml:"branching_angle"`  // Degrees
	SegmentLength       float64 `yaml:"segment_length"`
	InitialWidth        float64 `yaml:"initial_width"`
	OrderWidthInfluence float64 `yaml:"order_width_influence"`
}

// RelaxConfig holds steady-state relaxation parameters.
type RelaxConfig struct {
	Precision float64 `yaml:"precision"` // Stop once a 100-tick batch changes less than this
	Workers   int     `yaml:"workers"`   // Tick workers (0 = GOMAXPROCS, 1 = serial)
}

// ScenarioConfig selects and parameterises a growth program.
type ScenarioConfig struct {
	Name          string  `yaml:"name"`
	Seed          int64   `yaml:"seed"`           // 0 = time-based
	Nodes         int     `yaml:"nodes"`          // Random tree growth steps
	InitialSize   int     `yaml:"initial_size"`   // Random tree main-axis extensions
	BranchProb    float64 `yaml:"branch_prob"`    // Random tree: probability of extending without branching
	Size          int     `yaml:"size"`           // Pole length in extensions
	InternodeSize int     `yaml:"internode_size"` // Pole segment quota
}

// OutputConfig holds output locations. Empty values disable that output.
type OutputConfig struct {
	Dir         string `yaml:"dir"`          // CSV logs and config copy
	SnapshotDir string `yaml:"snapshot_dir"` // JSON snapshots
	Database    string `yaml:"database"`     // SQLite snapshot archive
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Listen address for /metrics (empty = disabled)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Render tree.RenderParams // Render with angles in radians
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Validate reports values the simulator cannot run with.
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if c.Relax.Precision <= 0 {
		return fmt.Errorf("relax: precision must be positive, got %g", c.Relax.Precision)
	}
	if c.Relax.Workers < 0 {
		return fmt.Errorf("relax: workers must not be negative, got %d", c.Relax.Workers)
	}
	if c.Hormone.Transport < 0 {
		return fmt.Errorf("hormone: transport must not be negative, got %g", c.Hormone.Transport)
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.Render = tree.RenderParams{
		DivergenceAngle:     c.Render.DivergenceAngle * math.Pi / 180,
		BranchingAngle:      c.Render.BranchingAngle * math.Pi / 180,
		SegmentLength:       c.Render.SegmentLength,
		InitialWidth:        c.Render.InitialWidth,
		OrderWidthInfluence: c.Render.OrderWidthInfluence,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
