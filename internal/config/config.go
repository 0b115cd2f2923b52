package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	DiscordToken  string
	DatabaseDSN   string
	FlushInterval time.Duration
	RateLimit     time.Duration
	LogLevel      string
	MetricsAddr   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue with environment variables
	}

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		DatabaseDSN:  os.Getenv("DATABASE_DSN"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
	}

	if config.DiscordToken == "" {
		return nil, &ConfigError{Field: "DISCORD_TOKEN", Message: "DISCORD_TOKEN is required"}
	}

	if config.DatabaseDSN == "" {
		return nil, &ConfigError{Field: "DATABASE_DSN", Message: "DATABASE_DSN is required"}
	}

	var err error
	config.FlushInterval, err = getDuration("FLUSH_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	config.RateLimit, err = getDuration("RATE_LIMIT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("%s must be a duration like 10s: %v", key, err)}
	}
	if d <= 0 {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("%s must be positive", key)}
	}
	return d, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
