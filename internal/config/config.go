// Package config provides configuration management for the EuroMillions ticket evaluator.
package config

import (
	"fmt"
	"net/url"

	"github.com/yourusername/euromillions/internal/features"
)

// Main-sum bin modes observed in deployed models
const (
	BinModeCoarse = "coarse"
	BinModeFine   = "fine"
)

// Data source types
const (
	SourceTypeFile   = "file"
	SourceTypeRemote = "remote"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Classifier    ClassifierConfig    `mapstructure:"classifier" validate:"required"`
	Features      FeaturesConfig      `mapstructure:"features" validate:"required"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Health        HealthConfig        `mapstructure:"health"`
	Secrets       SecretsConfig       `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// ClassifierConfig represents the ticket classifier service configuration
type ClassifierConfig struct {
	URL                   string `mapstructure:"url" validate:"required,url"`
	APIKey                string `mapstructure:"api_key"`
	ModelVersion          string `mapstructure:"model_version" validate:"required"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RetryAttempts         int    `mapstructure:"retry_attempts" validate:"gte=0"`
	CacheTTLSeconds       int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize          int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// FeaturesConfig represents feature engineering configuration
type FeaturesConfig struct {
	MainSumMode string `mapstructure:"main_sum_mode" validate:"required,binmode"`
	// MainSumBins overrides the bin count implied by MainSumMode
	MainSumBins       int      `mapstructure:"main_sum_bins" validate:"gte=0"`
	LuckySumBins      int      `mapstructure:"lucky_sum_bins" validate:"required,gt=0"`
	CombinedSumBins   int      `mapstructure:"combined_sum_bins" validate:"required,gt=0"`
	IncludeTicketRows bool     `mapstructure:"include_ticket_rows"`
	DropColumns       []string `mapstructure:"drop_columns"`
	FeatureListPath   string   `mapstructure:"feature_list_path" validate:"required"`
}

// ScoringConfig represents population scoring and batch evaluation settings
type ScoringConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	EvaluationWorkers int  `mapstructure:"evaluation_workers" validate:"gte=0"`
}

// DataIngestionConfig represents data ingestion configuration
type DataIngestionConfig struct {
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	Schedule ScheduleConfig     `mapstructure:"schedule" validate:"required"`
	HTTP     HTTPConfig         `mapstructure:"http"`
}

// DataSourceConfig represents a single historical draw source
type DataSourceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Type    string `mapstructure:"type" validate:"required,oneof=file remote"`
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	URL     string `mapstructure:"url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
}

// ScheduleConfig represents data ingestion scheduling
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron" validate:"required,cronspec"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// HTTPConfig represents the remote source HTTP client settings
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the liveness/readiness server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// SecretsConfig points at the AWS Secrets Manager secret overlaid on startup
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.GetDatabaseDSN()
}

// GetDatabaseDSN returns a postgres:// URL with the credentials escaped
func (d DatabaseConfig) GetDatabaseDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// MainSumBinCount resolves the main-sum bin count from the override or the mode
func (f FeaturesConfig) MainSumBinCount() int {
	if f.MainSumBins > 0 {
		return f.MainSumBins
	}
	if f.MainSumMode == BinModeFine {
		return features.FineMainSumBins
	}
	return features.DefaultBins
}

// EnabledSources returns the enabled data sources in configuration order
func (d DataIngestionConfig) EnabledSources() []DataSourceConfig {
	out := make([]DataSourceConfig, 0, len(d.Sources))
	for _, s := range d.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
