// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// AppConfig provides application-wide URL settings.
type AppConfig interface {
	GetAppBaseURL() string
}

// RedisConfig provides settings for Redis-backed infrastructure
// (verification lockout counters, background job queue).
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetJobQueueName() string
}

// AccessCodeConfig provides settings for access-code hashing.
type AccessCodeConfig interface {
	GetBcryptCost() int
}

// LockoutConfig provides settings for the failed-verification lockout.
type LockoutConfig interface {
	GetLockoutMaxAttempts() int
	GetLockoutWindow() time.Duration
}

// RetentionConfig provides audit-retention settings for background jobs.
type RetentionConfig interface {
	GetGrantRetention() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	AppBaseURL         string
	RedisURL           string
	RedisTLSInsecure   bool
	JobQueueName       string
	BcryptCost         int
	LockoutMaxAttempts int
	LockoutWindow      time.Duration
	GrantRetention     time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// AppConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetJobQueueName() string   { return c.JobQueueName }

// AccessCodeConfig implementation
func (c *Config) GetBcryptCost() int { return c.BcryptCost }

// LockoutConfig implementation
func (c *Config) GetLockoutMaxAttempts() int      { return c.LockoutMaxAttempts }
func (c *Config) GetLockoutWindow() time.Duration { return c.LockoutWindow }

// RetentionConfig implementation
func (c *Config) GetGrantRetention() time.Duration { return c.GrantRetention }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:4200"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		JobQueueName:       getEnv("JOB_QUEUE_NAME", "default"),
		BcryptCost:         mustInt(getEnv("ACCESS_CODE_BCRYPT_COST", "10")),
		LockoutMaxAttempts: mustInt(getEnv("LOCKOUT_MAX_ATTEMPTS", "10")),
		LockoutWindow:      mustDuration(getEnv("LOCKOUT_WINDOW", "15m")),
		GrantRetention:     mustDuration(getEnv("GRANT_RETENTION", "4320h")), // 180 days
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
