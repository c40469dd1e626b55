// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv("config.yaml")
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ReconcileConfig holds matching tolerances
type ReconcileConfig struct {
	AmountTolerance float64 `yaml:"amount_tolerance"`
	DateWindowDays  float64 `yaml:"date_window_days"`
	MinConfidence   float64 `yaml:"min_confidence"`
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

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${POCKETTRACK_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := defaults()

	cfg.Server.Port = getEnvInt("POCKETTRACK_PORT", cfg.Server.Port)
	if origins := os.Getenv("POCKETTRACK_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.Storage.DatabasePath = getEnv("POCKETTRACK_DB_PATH", cfg.Storage.DatabasePath)
	cfg.Reconcile.AmountTolerance = getEnvFloat("POCKETTRACK_AMOUNT_TOLERANCE", cfg.Reconcile.AmountTolerance)
	cfg.Reconcile.DateWindowDays = getEnvFloat("POCKETTRACK_DATE_WINDOW_DAYS", cfg.Reconcile.DateWindowDays)
	cfg.Reconcile.MinConfidence = getEnvFloat("POCKETTRACK_MIN_CONFIDENCE", cfg.Reconcile.MinConfidence)
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return cfg
}

// LoadOrEnv tries the config file first, then falls back to environment
// variables when the file is missing.
func LoadOrEnv(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv(), nil
	}

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return LoadFromEnv(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Storage: StorageConfig{
			DatabasePath: "pockettrack.db",
		},
		Reconcile: ReconcileConfig{
			AmountTolerance: 0.01,
			DateWindowDays:  14,
			MinConfidence:   60,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
