package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldsense/sensor-etl/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sensor-etl",
	Short: "Agricultural sensor batch ETL and data-quality pipeline",
	Long:  "Ingests dated sensor-reading batches, cleans and normalizes them, derives windowed aggregates and anomaly flags, and produces a data-quality report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
