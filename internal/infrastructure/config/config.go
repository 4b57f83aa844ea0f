// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	matcherCfg, err := cfg.MatcherConfig()
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
)

// Config represents the entire application configuration
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig holds reconciliation engine settings
type MatchingConfig struct {
	Strategy              string   `yaml:"strategy"`
	MinConfidence         *float64 `yaml:"min_confidence"`
	CategoryMinConfidence *float64 `yaml:"category_min_confidence"`
	BatchSize             int      `yaml:"batch_size"`
	DriveBy               string   `yaml:"drive_by"`
	ValidCardTypes        []string `yaml:"valid_card_types"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults used when neither the file nor the environment sets a value
const (
	DefaultDatabasePath = "reconcile.db"
	DefaultAPIPort      = 8085
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILE_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Matching: MatchingConfig{
			Strategy:       getEnv("RECONCILE_STRATEGY", scoring.NameAuto),
			BatchSize:      getEnvInt("RECONCILE_BATCH_SIZE", 0),
			DriveBy:        getEnv("RECONCILE_DRIVE_BY", string(matcher.DriveByExpense)),
			ValidCardTypes: splitList(os.Getenv("RECONCILE_VALID_CARD_TYPES")),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", DefaultDatabasePath),
		},
		API: APIConfig{
			Port:           getEnvInt("RECONCILE_API_PORT", DefaultAPIPort),
			AllowedOrigins: splitList(os.Getenv("RECONCILE_ALLOWED_ORIGINS")),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	if v, ok := getEnvFloat("RECONCILE_MIN_CONFIDENCE"); ok {
		cfg.Matching.MinConfidence = &v
	}
	if v, ok := getEnvFloat("RECONCILE_CATEGORY_MIN_CONFIDENCE"); ok {
		cfg.Matching.CategoryMinConfidence = &v
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	defaults := matcher.DefaultConfig()
	if c.Matching.Strategy == "" {
		c.Matching.Strategy = scoring.NameAuto
	}
	if c.Matching.MinConfidence == nil {
		c.Matching.MinConfidence = &defaults.MinConfidence
	}
	if c.Matching.CategoryMinConfidence == nil {
		c.Matching.CategoryMinConfidence = &defaults.CategoryMinConfidence
	}
	if c.Matching.BatchSize == 0 {
		c.Matching.BatchSize = defaults.BatchSize
	}
	if c.Matching.DriveBy == "" {
		c.Matching.DriveBy = string(defaults.Direction)
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// MatcherConfig converts the matching section to a matcher.Config
func (c *Config) MatcherConfig() (matcher.Config, error) {
	direction, err := matcher.ParseDirection(c.Matching.DriveBy)
	if err != nil {
		return matcher.Config{}, err
	}

	mc := matcher.DefaultConfig()
	if c.Matching.MinConfidence != nil {
		mc.MinConfidence = *c.Matching.MinConfidence
	}
	if c.Matching.CategoryMinConfidence != nil {
		mc.CategoryMinConfidence = *c.Matching.CategoryMinConfidence
	}
	if c.Matching.BatchSize != 0 {
		mc.BatchSize = c.Matching.BatchSize
	}
	mc.Direction = direction
	mc.ValidCardTypes = c.Matching.ValidCardTypes

	return mc, mc.Validate()
}

// Validate checks that the configuration can drive a reconciliation run
func (c *Config) Validate() error {
	var errs []error
	if _, err := scoring.ByName(c.Matching.Strategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.MatcherConfig(); err != nil {
		errs = append(errs, err)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api port %d out of range", c.API.Port))
	}
	switch strings.ToLower(c.Observability.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Observability.Logging.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable if it is set and parses
func getEnvFloat(key string) (float64, bool) {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result, true
		}
	}
	return 0, false
}

// splitList parses a comma separated env value
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
