package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldsense/sensor-etl/internal/checkpoint"
	"github.com/fieldsense/sensor-etl/internal/ingest"
	"github.com/fieldsense/sensor-etl/internal/model"
	"github.com/fieldsense/sensor-etl/internal/store"
	"github.com/fieldsense/sensor-etl/internal/transform"
	"github.com/fieldsense/sensor-etl/internal/validate"
)

var (
	runFile     string
	runReport   string
	runDryRun   bool
	runSkipLoad bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ETL pipeline on unprocessed raw batches",
	Long: `Discovers dated raw batch files newer than the checkpoint, ingests them,
runs the transformation pipeline, writes the data-quality report, loads the
transformed readings into the store partitioned by (date, sensor_id), and
advances the checkpoint.

Examples:
  # Process everything new under the raw directory
  sensor-etl run

  # Parse one file and print the rows, no pipeline
  sensor-etl run --file data/raw/2023-07-30.csv --dry-run

  # Transform and report without persisting or checkpointing
  sensor-etl run --skip-load`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		handler := ingest.New(cfg.Ingest.RawDir)

		// Discover files.
		var files []string
		if runFile != "" {
			if err := handler.ValidatePath(runFile); err != nil {
				return eris.Wrap(err, "run: validate file")
			}
			files = []string{runFile}
		} else {
			cp, err := checkpoint.Load(cfg.Checkpoint.Path)
			if err != nil {
				return eris.Wrap(err, "run: load checkpoint")
			}
			files, err = handler.ListUnprocessed(cp.LatestDate())
			if err != nil {
				return eris.Wrap(err, "run: discover files")
			}
		}
		zap.L().Info("run: files to ingest", zap.Strings("files", files))

		// Ingest.
		ds, processed, sum := handler.LoadFiles(files)
		if ds.Empty() {
			zap.L().Warn("run: ingested dataset is empty")
			return nil
		}

		if runDryRun {
			return printRowsJSON(ds.Rows)
		}

		table, err := loadCalibration()
		if err != nil {
			return err
		}

		// Transform.
		transformed := transform.New(table).Run(ds)

		// Validate and write the report.
		reportPath := runReport
		if reportPath == "" {
			reportPath = cfg.Report.Path
		}
		report := validate.New(table).RunValidations(transformed)
		if err := report.WriteFile(reportPath); err != nil {
			return err
		}
		zap.L().Info("run: data quality report written", zap.String("path", reportPath))

		if runSkipLoad {
			zap.L().Info("run: skipping load and checkpoint")
			return nil
		}

		// Load.
		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "run: open store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "run: migrate store")
		}

		run, err := st.CreateRun(ctx)
		if err != nil {
			return eris.Wrap(err, "run: create run record")
		}

		written, err := st.SaveReadings(ctx, transformed.Rows)
		if err != nil {
			run.Status = model.RunStatusFailed
			_ = st.CompleteRun(ctx, *run)
			return eris.Wrap(err, "run: save readings")
		}

		run.Status = model.RunStatusComplete
		run.RowsIn = len(ds.Rows)
		run.RowsOut = written
		run.FilesRead = sum.LoadedFiles
		run.ReportPath = reportPath
		if err := st.CompleteRun(ctx, *run); err != nil {
			return eris.Wrap(err, "run: complete run record")
		}

		// Checkpoint.
		if err := checkpoint.Update(cfg.Checkpoint.Path, processed); err != nil {
			return eris.Wrap(err, "run: update checkpoint")
		}

		zap.L().Info("run: pipeline complete",
			zap.Int("files", sum.LoadedFiles),
			zap.Int("rows_in", len(ds.Rows)),
			zap.Int("rows_out", written),
			zap.String("run_id", run.ID),
		)

		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFile, "file", "", "process a single raw batch file")
	runCmd.Flags().StringVar(&runReport, "report", "", "report output path (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "parse and print rows, skip pipeline")
	runCmd.Flags().BoolVar(&runSkipLoad, "skip-load", false, "transform and report without persisting")
	rootCmd.AddCommand(runCmd)
}

// printRowsJSON prints parsed rows as indented JSON.
func printRowsJSON(rows []model.Reading) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
