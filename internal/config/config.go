package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Seed     SeedConfig
	Cache    CacheConfig
	Combined CombinedConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// AuthConfig guards the seed endpoint. An empty key list leaves it open.
type AuthConfig struct {
	APIKeys []string
}

type DatabaseConfig struct {
	Driver string // sqlite or postgres
	DSN    string
	Debug  bool
}

type SeedConfig struct {
	URL     string
	Timeout time.Duration
}

// CacheConfig configures the optional Redis report cache.
// Caching is disabled when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

// Enabled reports whether a Redis address was configured
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

type CombinedConfig struct {
	BaseURL string // defaults to this server's own listen address
	Timeout time.Duration
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from environment variables, after loading a
// .env file from the working directory if one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 75),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", nil),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:    getEnv("DB_DSN", "products.db"),
			Debug:  getEnvAsBool("DB_DEBUG", false),
		},
		Seed: SeedConfig{
			URL:     getEnv("SEED_URL", "https://s3.amazonaws.com/roxiler.com/product_transaction.json"),
			Timeout: time.Duration(getEnvAsInt("SEED_TIMEOUT", 60)) * time.Second,
		},
		Cache: CacheConfig{
			RedisAddr: getEnv("REDIS_ADDR", ""),
			Prefix:    getEnv("CACHE_PREFIX", "report:"),
			TTL:       time.Duration(getEnvAsInt("CACHE_TTL", 300)) * time.Second,
		},
		Combined: CombinedConfig{
			BaseURL: strings.TrimRight(getEnv("COMBINED_BASE_URL", ""), "/"),
			Timeout: time.Duration(getEnvAsInt("COMBINED_TIMEOUT", 10)) * time.Second,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Combined.BaseURL == "" {
		cfg.Combined.BaseURL = selfBaseURL(cfg.Server.Host, cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Seed.URL == "" {
		return fmt.Errorf("SEED_URL is required")
	}

	if c.Seed.Timeout <= 0 || c.Combined.Timeout <= 0 {
		return fmt.Errorf("SEED_TIMEOUT and COMBINED_TIMEOUT must be positive")
	}

	// The seed response is written after the fetch and insert finish
	if time.Duration(c.Server.WriteTimeout)*time.Second <= c.Seed.Timeout {
		return fmt.Errorf("WRITE_TIMEOUT (%ds) must exceed SEED_TIMEOUT (%s)", c.Server.WriteTimeout, c.Seed.Timeout)
	}

	if c.Combined.BaseURL == "" {
		return fmt.Errorf("COMBINED_BASE_URL is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// selfBaseURL is the loopback URL of this server. Wildcard hosts are
// reached through 127.0.0.1.
func selfBaseURL(host, port string) string {
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
