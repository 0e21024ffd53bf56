// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	CORSOrigins   []string
	AuthJWTSecret string
	TokenTTL      time.Duration

	// Scheduling
	ClinicClosedWeekday int // time.Weekday value; clinic does not open this day
	HistorySyncInterval time.Duration

	// Redis month-view cache
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	MonthCacheTTL time.Duration

	// Patient file storage (S3-compatible)
	AWSRegion           string
	AWSEndpointOverride string
	FilesBucket         string
	PresignTTL          time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		CORSOrigins:   splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		TokenTTL:      getEnvAsDuration("AUTH_TOKEN_TTL", 12*time.Hour),

		ClinicClosedWeekday: getEnvAsInt("CLINIC_CLOSED_WEEKDAY", 0), // Sunday
		HistorySyncInterval: getEnvAsDuration("HISTORY_SYNC_INTERVAL", 6*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		MonthCacheTTL: getEnvAsDuration("MONTH_CACHE_TTL", 10*time.Minute),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		FilesBucket:         getEnv("PATIENT_FILES_BUCKET", ""),
		PresignTTL:          getEnvAsDuration("PRESIGN_TTL", 15*time.Minute),
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
