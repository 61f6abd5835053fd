package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/budsim/fit"
	"github.com/pthm-cable/budsim/telemetry"
)

func newFitCmd(a *app) *cobra.Command {
	var (
		maxEvals   int
		population int
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "fit <snapshot.json> <target_stem.csv>",
		Short: "Fit hormone parameters to a measured main-stem auxin profile",
		Long: `Searches transport, decay, gain and PIN parameters with CMA-ES so that the
relaxed main-stem auxin of the snapshot's topology matches the target profile.
The target is a CSV in the format printed by "budsim stem --csv".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := telemetry.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			var records []telemetry.StemRecord
			if err := readCSV(args[1], &records); err != nil {
				return fmt.Errorf("read target profile: %w", err)
			}
			target := make([]float64, len(records))
			for i, r := range records {
				target[i] = r.Auxin
			}

			pv := fit.NewParamVector()
			ev, err := fit.NewEvaluator(pv, a.cfg, snap.Tree, target)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			logFile, err := os.Create(filepath.Join(outputDir, "fit_log.csv"))
			if err != nil {
				return fmt.Errorf("create log file: %w", err)
			}
			defer logFile.Close()

			// Columns follow the parameter set, so rows are written by hand.
			logWriter := csv.NewWriter(logFile)
			defer logWriter.Flush()
			header := []string{"eval", "fitness"}
			for _, spec := range pv.Specs {
				header = append(header, spec.Name)
			}
			if err := logWriter.Write(header); err != nil {
				return err
			}

			onEval := func(e fit.Eval) {
				row := []string{strconv.Itoa(e.N), strconv.FormatFloat(e.Fitness, 'g', 8, 64)}
				for _, v := range e.Params {
					row = append(row, strconv.FormatFloat(v, 'g', 8, 64))
				}
				logWriter.Write(row)
				logWriter.Flush()
				if e.N%10 == 0 {
					a.logger.Info("fit progress", "evals", e.N, "fitness", e.Fitness)
				}
			}

			res, err := fit.Run(ev, fit.Options{MaxEvals: maxEvals, Population: population, OnEval: onEval})
			if err != nil {
				a.logger.Info("optimization ended", "reason", err)
			}
			if err := logWriter.Error(); err != nil {
				return fmt.Errorf("write fit log: %w", err)
			}

			best := ev.Config(res.Params)
			bestPath := filepath.Join(outputDir, "best_config.yaml")
			if err := best.WriteYAML(bestPath); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "fitness\t%.6g\n", res.Fitness)
			for i, spec := range pv.Specs {
				fmt.Fprintf(w, "%s\t%.6g\n", spec.Path, res.Params[i])
			}
			a.logger.Info("fit complete", "evals", res.Evals, "fitness", res.Fitness, "config", bestPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&maxEvals, "max-evals", 200, "Maximum candidate evaluations")
	f.IntVar(&population, "population", 0, "CMA-ES population size (0 = automatic)")
	f.StringVar(&outputDir, "output-dir", "fit", "Directory for fit_log.csv and best_config.yaml")
	return cmd
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}
