package config

import (
	"os"
	"strconv"

	"taxoscreen/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Screen   ScreenConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ScreenConfig holds default screening thresholds
type ScreenConfig struct {
	AbundanceCutoff float64
	Alpha           float64
	Workers         int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Screen: ScreenConfig{
			AbundanceCutoff: getEnvFloatOrDefault("ABUNDANCE_CUTOFF", 1e-3),
			Alpha:           getEnvFloatOrDefault("ALPHA", 0.05),
			Workers:         getEnvIntOrDefault("SCREEN_WORKERS", 0),
		},
	}

	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	if cfg.Screen.Alpha <= 0 || cfg.Screen.Alpha >= 1 {
		return nil, errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
