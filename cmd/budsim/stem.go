package main

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/budsim/telemetry"
)

func newStemCmd(a *app) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "stem <snapshot.json>",
		Short: "Print auxin and PIN along the main stem",
		Long:  `Prints one line per stem position from the original main apex down to the root.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := telemetry.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			values := snap.Tree.MainStemValues()
			w := cmd.OutOrStdout()

			if asCSV {
				records := make([]telemetry.StemRecord, len(values))
				for i, v := range values {
					records[i] = telemetry.StemRecord{Position: i, Auxin: v.Auxin, Pin: v.Pin}
				}
				return gocsv.Marshal(records, w)
			}
			for i, v := range values {
				fmt.Fprintf(w, "%d\t%.6f\t%.6f\n", i, v.Auxin, v.Pin)
			}
			a.logger.Debug("stem printed", "values", len(values))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Print CSV with a header row")
	return cmd
}
