package main

import (
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/budsim/scenario"
	"github.com/pthm-cable/budsim/telemetry"
)

func newGrowCmd(a *app) *cobra.Command {
	var (
		name  string
		relax bool
		out   outputs
	)

	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a scenario",
		Long: `Runs a growth scenario, optionally relaxes the hormone distribution on the
result, and writes the snapshot, CSV tables and SQLite archive that are enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if name == "" {
				name = cfg.Scenario.Name
			}
			out = out.withDefaults(cfg.Output.Dir, cfg.Output.SnapshotDir, cfg.Output.Database)

			seed := a.resolveSeed()
			params := scenario.Params{
				Nodes:         cfg.Scenario.Nodes,
				InitialSize:   cfg.Scenario.InitialSize,
				BranchProb:    cfg.Scenario.BranchProb,
				Size:          cfg.Scenario.Size,
				InternodeSize: cfg.Scenario.InternodeSize,
			}

			a.logger.Info("growing", "scenario", name, "seed", seed)
			t, err := scenario.Build(name, cfg.Settings, params, rand.New(rand.NewSource(seed)), a.observeOp)
			if err != nil {
				return err
			}
			a.logger.Info("grown", "nodes", t.Size(), "tips", len(t.TipIndices))

			om, err := telemetry.NewOutputManager(out.dir)
			if err != nil {
				return err
			}
			defer om.Close()

			snap := &telemetry.Snapshot{Version: telemetry.SnapshotVersion, Seed: seed, Scenario: name, Tree: t}
			var perf *telemetry.PerfCollector
			if relax {
				relaxed, ticks, p, err := a.relax(t, om)
				if err != nil {
					return err
				}
				snap.Tree = relaxed
				snap.Ticks = ticks
				perf = p
			}
			if err := a.emit(snap, out, om, perf); err != nil {
				return err
			}
			return om.Close()
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "scenario", "", "Scenario name (empty = config value; see 'budsim scenarios')")
	f.BoolVar(&relax, "relax", false, "Relax the hormone distribution after growth")
	out.bind(cmd)
	return cmd
}

func (o *outputs) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.dir, "output-dir", "", "Output directory for CSV tables and config copy")
	f.StringVar(&o.snapshotDir, "snapshot-dir", "", "Directory for JSON snapshots")
	f.StringVar(&o.database, "db", "", "SQLite database to archive snapshots in")
}

func (o outputs) withDefaults(dir, snapshotDir, database string) outputs {
	if o.dir == "" {
		o.dir = dir
	}
	if o.snapshotDir == "" {
		o.snapshotDir = snapshotDir
	}
	if o.database == "" {
		o.database = database
	}
	return o
}
