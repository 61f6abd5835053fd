package main

import (
	"fmt"
	"time"

	"github.com/pthm-cable/budsim/store"
	"github.com/pthm-cable/budsim/telemetry"
	"github.com/pthm-cable/budsim/tree"
)

// outputs holds the optional sinks of one run.
type outputs struct {
	dir         string
	snapshotDir string
	database    string
}

func (a *app) observeOp(op string, err error) {
	a.recorder.ObserveOp(op, err)
	if err != nil {
		a.logger.Debug("operation skipped", "op", op, "error", err)
	}
}

// relax runs the tree to its static hormone distribution, reporting each
// batch to the metrics recorder, the log and the optional CSV output.
// It returns the relaxed tree and the number of ticks applied.
func (a *app) relax(t *tree.Tree, om *telemetry.OutputManager) (*tree.Tree, int, *telemetry.PerfCollector, error) {
	stepper := tree.NewStepper(a.cfg.Relax.Workers)
	defer stepper.Close()

	perf := telemetry.NewPerfCollector(20)
	var writeErr error
	ticks := 0
	last := time.Now()
	perf.Start()

	relaxed, err := stepper.Relax(t, a.cfg.Hormone, a.cfg.Relax.Precision, func(b tree.RelaxBatch) {
		now := time.Now()
		perf.EndBatch()
		a.recorder.ObserveBatch(b, now.Sub(last))
		last = now
		ticks = b.Ticks

		a.logger.Debug("relax batch", "batch", b.Batch, "ticks", b.Ticks, "difference", b.Difference)
		if err := om.WriteBatch(b); err != nil && writeErr == nil {
			writeErr = err
		}
	})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("relax: %w", err)
	}
	if writeErr != nil {
		return nil, 0, nil, writeErr
	}

	a.logger.Info("relaxed", "ticks", ticks, "workers", stepper.Workers(), "perf", perf.Stats())
	return relaxed, ticks, perf, nil
}

// emit writes the snapshot and every enabled output for t.
func (a *app) emit(snap *telemetry.Snapshot, out outputs, om *telemetry.OutputManager, perf *telemetry.PerfCollector) error {
	t := snap.Tree
	t.UpdateTransformations(a.cfg.Derived.Render)
	a.recorder.SetTree(t)

	stats := telemetry.ComputeTreeStats(t)
	stats.LogStats("tree")

	if err := om.WriteConfig(a.cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := om.WriteNodes(t); err != nil {
		return err
	}
	if err := om.WriteStem(t); err != nil {
		return err
	}
	if err := om.WriteOrders(stats); err != nil {
		return err
	}
	if perf != nil {
		if err := om.WritePerf(perf.Stats()); err != nil {
			return err
		}
	}

	if out.snapshotDir != "" {
		path, err := telemetry.SaveSnapshot(snap, out.snapshotDir)
		if err != nil {
			return err
		}
		a.logger.Info("snapshot saved", "path", path)
	}

	if out.database != "" {
		db, err := store.Open(out.database)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.Save(snap)
		if err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
		a.logger.Info("snapshot stored", "database", out.database, "id", id)
	}
	return nil
}
