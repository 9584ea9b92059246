package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fieldsense/sensor-etl/internal/checkpoint"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the ingestion checkpoint state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cp, err := checkpoint.Load(cfg.Checkpoint.Path)
		if err != nil {
			return eris.Wrap(err, "status: load checkpoint")
		}

		if len(cp) == 0 {
			fmt.Fprintln(os.Stdout, "No batches processed yet.")
			return nil
		}

		for _, date := range cp.Dates() {
			fmt.Fprintf(os.Stdout, "%s: %d file(s)\n", date, len(cp[date]))
		}
		if latest := cp.LatestDate(); latest != nil {
			fmt.Fprintf(os.Stdout, "Latest processed date: %s\n", latest.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
