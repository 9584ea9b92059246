package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fieldsense/sensor-etl/internal/ingest"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the inferred schema of a raw batch file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		handler := ingest.New(cfg.Ingest.RawDir)
		cols, err := handler.InspectSchema(inspectFile)
		if err != nil {
			return eris.Wrap(err, "inspect: read schema")
		}

		fmt.Fprintf(os.Stdout, "Schema of %s:\n", inspectFile)
		for _, c := range cols {
			fmt.Fprintf(os.Stdout, "  %-20s %s\n", c.Name, c.Type)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "raw batch file to inspect (required)")
	_ = inspectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(inspectCmd)
}
