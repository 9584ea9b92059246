package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Ingest      IngestConfig      `yaml:"ingest" mapstructure:"ingest"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Checkpoint  CheckpointConfig  `yaml:"checkpoint" mapstructure:"checkpoint"`
	Report      ReportConfig      `yaml:"report" mapstructure:"report"`
	Calibration CalibrationConfig `yaml:"calibration" mapstructure:"calibration"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// IngestConfig configures raw batch discovery.
type IngestConfig struct {
	RawDir string `yaml:"raw_dir" mapstructure:"raw_dir"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CheckpointConfig configures ingestion checkpointing.
type CheckpointConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ReportConfig configures the data-quality report output.
type ReportConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CalibrationConfig points at an optional calibration override file.
type CalibrationConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SENSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ingest.raw_dir", "data/raw")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sensor.db")
	v.SetDefault("checkpoint.path", "ingestion_checkpoint.json")
	v.SetDefault("report.path", "data_quality_report.csv")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
