// Package config provides configuration management for the EuroMillions ticket evaluator.
package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "EUROMILLIONS"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadAndPrepare loads the configuration with defaults, overlays AWS secrets
// when enabled and validates the result.
func LoadAndPrepare(ctx context.Context, configPath string) (*Config, error) {
	cfg, err := LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Secrets.Enabled {
		if err := LoadSecretsFromAWS(ctx, cfg, cfg.Secrets.Region, cfg.Secrets.SecretName); err != nil {
			return nil, err
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if err := ValidateEnvironment(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReloadFromEnv reloads the configuration from EUROMILLIONS_CONFIG_PATH when set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// EUROMILLIONS_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "euromillions")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("classifier.request_timeout_seconds", 10)
	v.SetDefault("classifier.retry_attempts", 3)
	v.SetDefault("classifier.cache_ttl_seconds", 3600)
	v.SetDefault("classifier.cache_max_size", 10000)

	v.SetDefault("features.main_sum_mode", BinModeCoarse)
	v.SetDefault("features.lucky_sum_bins", 6)
	v.SetDefault("features.combined_sum_bins", 6)
	v.SetDefault("features.drop_columns", []string{"draw_day", "draw_month", "draw_year", "winners"})
	v.SetDefault("features.feature_list_path", "models/feature-list.yaml")

	v.SetDefault("scoring.evaluation_workers", 4)

	v.SetDefault("data_ingestion.schedule.cron", "0 0 23 * * 2,5")
	v.SetDefault("data_ingestion.http.timeout_seconds", 30)
	v.SetDefault("data_ingestion.http.max_retries", 5)
	v.SetDefault("data_ingestion.http.rate_limit", 2.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("health.port", 8080)
}
