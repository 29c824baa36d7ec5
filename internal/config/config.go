// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Chat     ChatConfig
	Mirror   MirrorConfig
}

type ServerConfig struct {
	HTTPPort    string
	BaseURL     string
	Environment string
}

type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string
	// DSN is the sqlite file path or the postgres connection string.
	DSN string
}

type ChatConfig struct {
	// Users known to the tracker; reassign quick-actions are generated
	// for each of them.
	Users []string
}

type MirrorConfig struct {
	Enabled  bool
	Dir      string
	Interval time.Duration
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			HTTPPort:    getEnv("HTTP_PORT", "5000"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:5000"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "tasks.db"),
		},
		Chat: ChatConfig{
			Users: getEnvAsList("CHAT_USERS", []string{"Ofek", "Shachar"}),
		},
		Mirror: MirrorConfig{
			Enabled:  getEnvAsBool("MIRROR_ENABLED", false),
			Dir:      getEnv("MIRROR_DIR", "notes"),
			Interval: getEnvAsDuration("MIRROR_INTERVAL", 5*time.Minute),
		},
	}, nil
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}

	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
