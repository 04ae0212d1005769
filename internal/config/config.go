// Package config provides configuration loading, validation, and management
// for the chatscope application. It handles reading from YAML files, setting
// default values, and validating configuration parameters.
package config

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration wraps every configuration failure so callers can treat
// loading and validation problems uniformly.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration parameters for all components
// of the chatscope system: logging, the HTTP server, storage, uploads, AI
// integration, the statistics engine and background maintenance.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	AI        AIConfig        `mapstructure:"ai"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"required,min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig controls the SQLite storage layer.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"              validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// UploadsConfig controls transcript file uploads.
type UploadsConfig struct {
	Dir           string        `mapstructure:"dir"            validate:"required"`
	MaxSizeBytes  int64         `mapstructure:"max_size_bytes" validate:"required,min=1"`
	Retention     time.Duration `mapstructure:"retention"      validate:"required,min=1h"`
	AllowedSuffix string        `mapstructure:"allowed_suffix" validate:"required"`
}

// AIConfig controls the conversational AI integration. The feature is
// disabled when no API key is set.
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"        validate:"required"`
	Temperature float32       `mapstructure:"temperature"  validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"required,min=1s,max=10m"`
	MaxRetries  int           `mapstructure:"max_retries"  validate:"min=0,max=10"`
	HistorySize int           `mapstructure:"history_size" validate:"min=0,max=1000"`
}

// Enabled reports whether the AI layer is configured.
func (c AIConfig) Enabled() bool { return c.APIKey != "" }

// AnalysisConfig controls the statistics engine.
type AnalysisConfig struct {
	MinWordLength int `mapstructure:"min_word_length" validate:"required,min=1"`
	TopWords      int `mapstructure:"top_words"       validate:"required,min=1,max=500"`
	ContextSize   int `mapstructure:"context_size"    validate:"required,min=1,max=100"`
}

// SchedulerConfig controls background maintenance jobs.
type SchedulerConfig struct {
	UploadPruneInterval time.Duration `mapstructure:"upload_prune_interval" validate:"required,min=1m"`
	SQLMaintenanceCron  string        `mapstructure:"sql_maintenance_cron"  validate:"required"`
}

// Validate checks the complete configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
