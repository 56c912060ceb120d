package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// RateLimitAlgorithmSliding weights the previous window by the time left in it
	RateLimitAlgorithmSliding = "sliding"
	// RateLimitAlgorithmFixed resets the count when the window expires
	RateLimitAlgorithmFixed = "fixed"

	// RateLimitStoreRedis keeps counters in Redis (required for multiple instances)
	RateLimitStoreRedis = "redis"
	// RateLimitStoreMemory keeps counters in process memory (local development only)
	RateLimitStoreMemory = "memory"

	// FailModeClosed rejects requests when the rate limit store is unreachable
	FailModeClosed = "closed"
	// FailModeOpen lets requests through when the rate limit store is unreachable
	FailModeOpen = "open"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	FrontendURL     string
	EnableHSTS      bool
	ServerDebugMode bool
	LogFormat       string
	RequestTimeout  time.Duration
	OpenAPIPath     string

	OpenAIKey     string
	AIModel       string
	AIBaseURL     string
	AITemperature float64
	AIMaxTokens   int
	AITimeout     time.Duration

	RedisURL                string
	DatabaseURL             string
	TeamsPerDayLimit        int
	RateLimitWindow         time.Duration
	RateLimitAlgorithm      string
	RateLimitStore          string
	RateLimitFailMode       string
	RateLimitPrefix         string
	RateLimitAnalytics      bool
	RateLimitReloadInterval time.Duration

	OTELEnabled  bool
	OTELEndpoint string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "json")),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 120*time.Second),
		OpenAPIPath:     getEnv("OPENAPI_PATH", "api/openapi/openapi.yaml"),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "gpt-4o"),
		AIBaseURL:     getEnv("AI_BASE_URL", ""),
		AITemperature: getEnvFloat("AI_TEMPERATURE", 0.7),
		AIMaxTokens:   getEnvInt("AI_MAX_TOKENS", 4000),
		AITimeout:     getEnvDuration("AI_TIMEOUT", 90*time.Second),

		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		TeamsPerDayLimit:        getEnvInt("TEAM_PER_DAY_LIMIT", 5),
		RateLimitWindow:         getEnvDuration("RATE_LIMIT_WINDOW", 24*time.Hour),
		RateLimitAlgorithm:      strings.ToLower(getEnv("RATE_LIMIT_ALGORITHM", RateLimitAlgorithmSliding)),
		RateLimitStore:          strings.ToLower(getEnv("RATE_LIMIT_STORE", RateLimitStoreRedis)),
		RateLimitFailMode:       strings.ToLower(getEnv("RATE_LIMIT_FAIL_MODE", FailModeClosed)),
		RateLimitPrefix:         getEnv("RATE_LIMIT_PREFIX", "team-builder:ratelimit"),
		RateLimitAnalytics:      getEnvBool("RATE_LIMIT_ANALYTICS", true),
		RateLimitReloadInterval: getEnvDuration("RATE_LIMIT_RELOAD_INTERVAL", time.Minute),

		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TeamsPerDayLimit <= 0 {
		return fmt.Errorf("TEAM_PER_DAY_LIMIT must be positive, got %d", c.TeamsPerDayLimit)
	}
	if c.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %s", c.RateLimitWindow)
	}
	switch c.RateLimitAlgorithm {
	case RateLimitAlgorithmSliding, RateLimitAlgorithmFixed:
	default:
		return fmt.Errorf("RATE_LIMIT_ALGORITHM must be %q or %q, got %q", RateLimitAlgorithmSliding, RateLimitAlgorithmFixed, c.RateLimitAlgorithm)
	}
	switch c.RateLimitStore {
	case RateLimitStoreRedis, RateLimitStoreMemory:
	default:
		return fmt.Errorf("RATE_LIMIT_STORE must be %q or %q, got %q", RateLimitStoreRedis, RateLimitStoreMemory, c.RateLimitStore)
	}
	switch c.RateLimitFailMode {
	case FailModeClosed, FailModeOpen:
	default:
		return fmt.Errorf("RATE_LIMIT_FAIL_MODE must be %q or %q, got %q", FailModeClosed, FailModeOpen, c.RateLimitFailMode)
	}
	// Moderate range: consistency over creativity
	if c.AITemperature < 0 || c.AITemperature > 1 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 1, got %v", c.AITemperature)
	}
	if c.AIMaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AIMaxTokens)
	}
	// The provider call must finish before the request deadline or the quota is spent on a 503
	if c.AITimeout <= 0 || c.AITimeout >= c.RequestTimeout {
		return fmt.Errorf("AI_TIMEOUT must be positive and less than REQUEST_TIMEOUT (%s), got %s", c.RequestTimeout, c.AITimeout)
	}
	// Stored rates use the "<limit>-<S|M|H|D>" format
	if c.DatabaseURL != "" && !storableWindow(c.RateLimitWindow) {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be 1s, 1m, 1h or 24h when DATABASE_URL is set, got %s", c.RateLimitWindow)
	}
	return nil
}

func storableWindow(d time.Duration) bool {
	switch d {
	case time.Second, time.Minute, time.Hour, 24 * time.Hour:
		return true
	}
	return false
}

// FailOpen reports whether requests should pass when the rate limit store errors
func (c *Config) FailOpen() bool {
	return c.RateLimitFailMode == FailModeOpen
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
