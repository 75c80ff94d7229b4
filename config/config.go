package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Lichess account to analyze
	Username string
	// Optional personal API token; the export endpoint works without one
	// but a token raises the per-IP rate limit
	APIToken   string
	LichessURL string

	// Import window (inclusive). Zero values mean "everything".
	ImportSince time.Time
	ImportUntil time.Time

	// Local timezone for date-part breakdowns (hours, weekdays)
	Timezone string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// HTTP API
	ServerPort int

	// Optional webhook notified when an import run completes
	WebhookURL string

	// Background loops
	SyncIntervalMinutes    int
	RefreshIntervalMinutes int

	// LLM configuration
	LLM LLMConfig
}

// LLMConfig holds LLM service configuration
type LLMConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Username:   os.Getenv("LICHESS_USERNAME"),
		APIToken:   os.Getenv("LICHESS_API_TOKEN"),
		LichessURL: getEnvOrDefault("LICHESS_URL", "https://lichess.org"),

		ImportSince: getEnvDate("IMPORT_SINCE"),
		ImportUntil: getEnvDate("IMPORT_UNTIL"),

		Timezone: getEnvOrDefault("TIMEZONE", "Africa/Cairo"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "lichess_games"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "lichess"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "lichess123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		ServerPort: getEnvInt("SERVER_PORT", 8080),

		WebhookURL: os.Getenv("WEBHOOK_URL"),

		SyncIntervalMinutes:    getEnvInt("SYNC_INTERVAL_MINUTES", 60),
		RefreshIntervalMinutes: getEnvInt("REFRESH_INTERVAL_MINUTES", 15),

		// LLM configuration
		LLM: LLMConfig{
			Enabled:  getEnvOrDefault("LLM_ENABLED", "false") == "true",
			Endpoint: getEnvOrDefault("LLM_ENDPOINT", "https://api.openai.com/v1"),
			APIKey:   getEnvOrDefault("LLM_API_KEY", ""),
			Model:    getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("⚠️  Unknown timezone %q, falling back to UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// getEnvDate parses a YYYY-MM-DD environment variable, zero time if unset or malformed
func getEnvDate(key string) time.Time {
	value := os.Getenv(key)
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		log.Printf("⚠️  Invalid date in %s (%q), ignoring", key, value)
		return time.Time{}
	}
	return t
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
