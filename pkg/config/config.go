package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	Environment            string
	ServerPort             int
	LogLevel               string
	Store                  string
	Database               DatabaseConfig
	RedisURL               string // empty keeps forecasts in process memory
	JWTSecret              string
	JWTIssuer              string
	TokenTTL               time.Duration
	RateLimitPerMinute     int
	LoginAttemptsPerMinute int
	ForecastCacheTTL       time.Duration
	CacheJanitorInterval   time.Duration
	CORSAllowedOrigins     []string
	OTLPEndpoint           string
	LLM                    LLMConfig
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LLMConfig points the chat fallback at an OpenAI-compatible endpoint.
type LLMConfig struct {
	Endpoint string
	APIKey   string
	Model    string
}

// Configured reports whether a remote model can be called.
func (c LLMConfig) Configured() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	port, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	dbPort, err := getInt("DATABASE_PORT", 5432)
	if err != nil {
		return nil, err
	}
	ttlHours, err := getInt("TOKEN_TTL_HOURS", 30*24)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getInt("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return nil, err
	}
	loginAttempts, err := getInt("LOGIN_ATTEMPTS_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	forecastMinutes, err := getInt("FORECAST_CACHE_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	janitorMinutes, err := getInt("CACHE_JANITOR_MINUTES", 5)
	if err != nil {
		return nil, err
	}

	store := strings.ToLower(getEnv("STORE", StorePostgres))
	if store != StorePostgres && store != StoreMemory {
		return nil, fmt.Errorf("invalid STORE %q: want %s or %s", store, StorePostgres, StoreMemory)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Store:       store,
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DATABASE_USER", "krishisakhi"),
			Password: getEnv("DATABASE_PASSWORD", "dev"),
			Name:     getEnv("DATABASE_NAME", "krishisakhi"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		RedisURL:               os.Getenv("REDIS_URL"),
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		JWTIssuer:              getEnv("JWT_ISSUER", "krishisakhi"),
		TokenTTL:               time.Duration(ttlHours) * time.Hour,
		RateLimitPerMinute:     rateLimit,
		LoginAttemptsPerMinute: loginAttempts,
		ForecastCacheTTL:       time.Duration(forecastMinutes) * time.Minute,
		CacheJanitorInterval:   time.Duration(janitorMinutes) * time.Minute,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:8501",
		}),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LLM: LLMConfig{
			Endpoint: os.Getenv("LLM_ENDPOINT"),
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
