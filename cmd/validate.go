package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldsense/sensor-etl/internal/ingest"
	"github.com/fieldsense/sensor-etl/internal/transform"
	"github.com/fieldsense/sensor-etl/internal/validate"
)

var (
	validateFile   string
	validateOutput string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Transform a raw batch and print its data-quality report",
	Long: `Runs the transformation pipeline against one raw batch file and renders the
data-quality report, without touching the store or the checkpoint.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		handler := ingest.New(cfg.Ingest.RawDir)
		if err := handler.ValidatePath(validateFile); err != nil {
			return eris.Wrap(err, "validate: check file")
		}

		ds, _, _ := handler.LoadFiles([]string{validateFile})
		if ds.Empty() {
			zap.L().Warn("validate: batch is empty, nothing to report")
			return nil
		}

		table, err := loadCalibration()
		if err != nil {
			return err
		}

		transformed := transform.New(table).Run(ds)
		report := validate.New(table).RunValidations(transformed)

		if validateOutput != "" {
			if err := report.WriteFile(validateOutput); err != nil {
				return err
			}
			zap.L().Info("validate: report written", zap.String("path", validateOutput))
			return nil
		}

		fmt.Fprint(os.Stdout, report.Render())
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "raw batch file to validate (required)")
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "write report to file (default: stdout)")
	_ = validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}
