// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Observability ObservabilityConfig
	Platforms     PlatformsConfig
}

type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// PlatformsConfig tunes the simulated reservation platform clients.
type PlatformsConfig struct {
	ResyAPIKey            string
	ResyLatency           time.Duration
	ResyFailureRate       float64
	OpenTableClientID     string
	OpenTableClientSecret string
	OpenTableLatency      time.Duration
	OpenTableFailureRate  float64
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:               getEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:        getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:       getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			RateLimitPerSecond: getInt("RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getInt("RATE_LIMIT_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "restaurant_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getBool("METRICS_ENABLED", true),
		},
		Platforms: PlatformsConfig{
			ResyAPIKey:            getEnv("RESY_API_KEY", "mock-api-key"),
			ResyLatency:           getDuration("RESY_LATENCY", 300*time.Millisecond),
			ResyFailureRate:       getFloat("RESY_FAILURE_RATE", 0.05),
			OpenTableClientID:     getEnv("OPENTABLE_CLIENT_ID", "mock-client-id"),
			OpenTableClientSecret: getEnv("OPENTABLE_CLIENT_SECRET", "mock-client-secret"),
			OpenTableLatency:      getDuration("OPENTABLE_LATENCY", 250*time.Millisecond),
			OpenTableFailureRate:  getFloat("OPENTABLE_FAILURE_RATE", 0.03),
		},
	}

	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("database name is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
