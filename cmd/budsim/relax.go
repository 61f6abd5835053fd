package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/budsim/telemetry"
)

func newRelaxCmd(a *app) *cobra.Command {
	var out outputs

	cmd := &cobra.Command{
		Use:   "relax <snapshot.json>",
		Short: "Relax the hormone distribution of a saved tree",
		Long: `Loads a snapshot, runs hormone ticks on its fixed topology until a batch
changes less than the configured precision, and saves the result next to
the input unless another snapshot directory is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := telemetry.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			out = out.withDefaults(a.cfg.Output.Dir, a.cfg.Output.SnapshotDir, a.cfg.Output.Database)
			if out.snapshotDir == "" {
				out.snapshotDir = filepath.Dir(args[0])
			}
			a.logger.Info("relaxing", "snapshot", args[0], "nodes", snap.Tree.Size(), "precision", a.cfg.Relax.Precision)

			om, err := telemetry.NewOutputManager(out.dir)
			if err != nil {
				return err
			}
			defer om.Close()

			relaxed, ticks, perf, err := a.relax(snap.Tree, om)
			if err != nil {
				return err
			}
			snap.Tree = relaxed
			snap.Ticks += ticks

			if err := a.emit(snap, out, om, perf); err != nil {
				return err
			}
			return om.Close()
		},
	}
	out.bind(cmd)
	return cmd
}
