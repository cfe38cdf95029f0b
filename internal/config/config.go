package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a schedgen invocation.
// Values are populated from .schedgen.yaml, SCHEDGEN_* env vars, and CLI
// flags.
type Config struct {
	DBPath           string `mapstructure:"db_path"`
	MacrosPath       string `mapstructure:"macros_path"`
	OutputDir        string `mapstructure:"output_dir"`
	TelemetryPath    string `mapstructure:"telemetry_path"`
	SlotsPerPeriod   int    `mapstructure:"slots_per_period"`
	CommandsPerTable int    `mapstructure:"commands_per_table"`
	AppFieldName     string `mapstructure:"app_field_name"`
	Verbose          bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db_path", "project.db")
	viper.SetDefault("macros_path", "macros.toml")
	viper.SetDefault("output_dir", "generated")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("slots_per_period", 5)
	viper.SetDefault("commands_per_table", 128)
	viper.SetDefault("app_field_name", "Application name")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.SlotsPerPeriod <= 0 {
		return Config{}, fmt.Errorf("config: slots_per_period must be positive, got %d", cfg.SlotsPerPeriod)
	}
	if cfg.CommandsPerTable <= 0 {
		return Config{}, fmt.Errorf("config: commands_per_table must be positive, got %d", cfg.CommandsPerTable)
	}
	return cfg, nil
}
