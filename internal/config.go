package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Timezone decides where the daily AI allowance rolls over.
	Timezone string
	Location *time.Location

	// AI Provider Configuration
	AIProvider        string // "openai" or "mock"
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string // Optional, for OpenAI-compatible gateways
	AIMaxRetries      int
	AIRetryBaseDelay  time.Duration
	AIRequestTimeout  time.Duration
	AIBreakerFailures int
	AIBreakerTimeout  time.Duration

	// Entitlements
	AIQuotaMode   string        // "soft" or "strict"
	TrialDuration time.Duration // 0 disables trials for new accounts

	// Authentication
	AuthMode          string // "firebase" or "dev"
	FirebaseProjectID string

	// Rate limiting
	RateLimitStore    string // "memory" or "redis"
	RedisURL          string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsEnabled  bool
	MetricsUsername string
	MetricsPassword string
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),
		Timezone: getEnv("TIMEZONE", "Local"),

		// AI provider defaults
		AIProvider:        strings.ToLower(getEnv("AI_PROVIDER", "mock")),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		AIMaxRetries:      getEnvInt("AI_MAX_RETRIES", 3),
		AIRetryBaseDelay:  getEnvDuration("AI_RETRY_BASE_DELAY", 1*time.Second),
		AIRequestTimeout:  getEnvDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		AIBreakerFailures: getEnvInt("AI_BREAKER_FAILURES", 5),
		AIBreakerTimeout:  getEnvDuration("AI_BREAKER_TIMEOUT", 30*time.Second),

		AIQuotaMode:   strings.ToLower(getEnv("AI_QUOTA_MODE", "soft")),
		TrialDuration: getEnvDuration("TRIAL_DURATION", 7*24*time.Hour),

		AuthMode:          strings.ToLower(getEnv("AUTH_MODE", "firebase")),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),

		RateLimitStore:    strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory")),
		RedisURL:          getEnv("REDIS_URL", ""),
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		// Metrics
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	// Validate AI provider configuration
	if cfg.AIProvider == "openai" {
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is 'openai'")
		}
	} else if cfg.AIProvider != "mock" {
		return nil, fmt.Errorf("AI_PROVIDER must be either 'openai' or 'mock', got: %s", cfg.AIProvider)
	}
	if cfg.AIBreakerFailures < 1 {
		return nil, fmt.Errorf("AI_BREAKER_FAILURES must be at least 1, got: %d", cfg.AIBreakerFailures)
	}

	if cfg.AIQuotaMode != "soft" && cfg.AIQuotaMode != "strict" {
		return nil, fmt.Errorf("AI_QUOTA_MODE must be either 'soft' or 'strict', got: %s", cfg.AIQuotaMode)
	}
	if cfg.TrialDuration < 0 {
		return nil, fmt.Errorf("TRIAL_DURATION must not be negative, got: %s", cfg.TrialDuration)
	}

	// Validate authentication
	switch cfg.AuthMode {
	case "firebase":
		if cfg.FirebaseProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_MODE is 'firebase'")
		}
	case "dev":
		if cfg.Env == "production" {
			return nil, fmt.Errorf("AUTH_MODE 'dev' is not allowed when ENV is 'production'")
		}
	default:
		return nil, fmt.Errorf("AUTH_MODE must be either 'firebase' or 'dev', got: %s", cfg.AuthMode)
	}

	// Validate rate limiting
	if cfg.RateLimitStore == "redis" {
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when RATE_LIMIT_STORE is 'redis'")
		}
	} else if cfg.RateLimitStore != "memory" {
		return nil, fmt.Errorf("RATE_LIMIT_STORE must be either 'memory' or 'redis', got: %s", cfg.RateLimitStore)
	}
	if cfg.RateLimitRequests < 1 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
