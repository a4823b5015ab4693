// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/bilemo/bilemo/internal/paginate"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Apply embedded migrations at startup
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Base URL of hypermedia links (e.g., https://api.bilemo.com)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Pagination
	PaginationDefaultLimit int  `env:"PAGINATION_DEFAULT_LIMIT" envDefault:"10"`
	PaginationMaxLimit     int  `env:"PAGINATION_MAX_LIMIT" envDefault:"100"`
	PaginationStrictEmpty  bool `env:"PAGINATION_STRICT_EMPTY" envDefault:"false"`

	// HTTP caching of GET responses
	CacheMaxAge time.Duration `env:"CACHE_MAX_AGE" envDefault:"1h"`

	// Authentication
	AuthMinDuration   time.Duration `env:"AUTH_MIN_DURATION" envDefault:"200ms"`
	PrincipalCacheTTL time.Duration `env:"PRINCIPAL_CACHE_TTL" envDefault:"5m"`

	// Rate limiting
	RateLimitAPIEnabled bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitIPEnabled  bool `env:"RATE_LIMIT_IP_ENABLED" envDefault:"true"`
	RateLimitIPRPS      int  `env:"RATE_LIMIT_IP_RPS" envDefault:"100"`
	RateLimitIPBurst    int  `env:"RATE_LIMIT_IP_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// PaginationOptions returns the paginator settings.
func (c *Config) PaginationOptions() paginate.Options {
	return paginate.Options{
		DefaultLimit: c.PaginationDefaultLimit,
		MaxLimit:     c.PaginationMaxLimit,
		StrictEmpty:  c.PaginationStrictEmpty,
	}
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PaginationDefaultLimit < 1 {
		return nil, fmt.Errorf("PAGINATION_DEFAULT_LIMIT must be positive, got %d", cfg.PaginationDefaultLimit)
	}
	if cfg.PaginationMaxLimit < cfg.PaginationDefaultLimit {
		return nil, fmt.Errorf("PAGINATION_MAX_LIMIT (%d) must not be below PAGINATION_DEFAULT_LIMIT (%d)",
			cfg.PaginationMaxLimit, cfg.PaginationDefaultLimit)
	}
	return cfg, nil
}

