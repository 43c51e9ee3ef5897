// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string
	DatabaseURL  string // optional; enables the Postgres audit journal
	BooksCSV     string // optional; seeds the catalog on startup
	FinePerDay   string // decimal, e.g. "1.00"
	RateLimitRPS int
	AdminKeyHash string
	AdminKeySalt string
	OTLPEndpoint string
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		BooksCSV:     os.Getenv("BOOKS_CSV"),
		FinePerDay:   getEnv("FINE_PER_DAY", "1.00"),
		RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 50),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		AdminKeySalt: os.Getenv("ADMIN_KEY_SALT"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
