// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv("config.yaml")
//	engine := cfg.Engine.ToEngineConfig()
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// Config represents the entire application configuration.
type Config struct {
	Engine        EngineConfig        `yaml:"engine"`
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Insights      InsightsConfig      `yaml:"insights"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// EngineConfig holds the matching engine tunables. Zero values fall back
// to the engine defaults, so a config file only needs the overrides.
type EngineConfig struct {
	AmountToleranceAbs    string  `yaml:"amount_tolerance_abs"`
	AmountTolerancePct    string  `yaml:"amount_tolerance_pct"`
	DateWindowDays        int     `yaml:"date_window_days"`
	MinConsiderationScore float64 `yaml:"min_consideration_score"`
	PerfectThreshold      float64 `yaml:"perfect_threshold"`
	NameWeight            float64 `yaml:"name_weight"`
	AmountWeight          float64 `yaml:"amount_weight"`
	DateWeight            float64 `yaml:"date_weight"`
	ReferenceWeight       float64 `yaml:"reference_weight"`
	Workers               int     `yaml:"workers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// InsightsConfig holds settings for the optional narrative generation.
type InsightsConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ToEngineConfig merges the overrides onto the engine defaults.
func (e EngineConfig) ToEngineConfig() (recon.Config, error) {
	cfg := recon.DefaultConfig()

	if e.AmountToleranceAbs != "" {
		tol, err := decimal.NewFromString(e.AmountToleranceAbs)
		if err != nil {
			return recon.Config{}, fmt.Errorf("invalid amount_tolerance_abs %q: %w", e.AmountToleranceAbs, err)
		}
		cfg.AmountToleranceAbs = tol
	}
	if e.AmountTolerancePct != "" {
		tol, err := decimal.NewFromString(e.AmountTolerancePct)
		if err != nil {
			return recon.Config{}, fmt.Errorf("invalid amount_tolerance_pct %q: %w", e.AmountTolerancePct, err)
		}
		cfg.AmountTolerancePct = tol
	}
	if e.DateWindowDays > 0 {
		cfg.DateWindowDays = e.DateWindowDays
	}
	if e.MinConsiderationScore > 0 {
		cfg.MinConsiderationScore = e.MinConsiderationScore
	}
	if e.PerfectThreshold > 0 {
		cfg.PerfectThreshold = e.PerfectThreshold
	}
	if e.NameWeight > 0 {
		cfg.NameWeight = e.NameWeight
	}
	if e.AmountWeight > 0 {
		cfg.AmountWeight = e.AmountWeight
	}
	if e.DateWeight > 0 {
		cfg.DateWeight = e.DateWeight
	}
	if e.ReferenceWeight > 0 {
		cfg.ReferenceWeight = e.ReferenceWeight
	}
	if e.Workers > 0 {
		cfg.Workers = e.Workers
	}
	return cfg, nil
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${OPENAI_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("RECONCILE_PORT", 8080),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", "reconcile.db"),
		},
		Insights: InsightsConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries the config file first and falls back to environment
// variables when it does not exist.
func LoadOrEnv(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return LoadFromEnv()
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
