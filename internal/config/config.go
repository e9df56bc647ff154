// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Optional Redis backend for the rate limiter. When empty the
	// limiter falls back to the in-process fixed-window implementation.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Base URL used when building swapped-image links in responses.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. ReadTimeout must cover a full 2 MiB upload on a
	// slow link; WriteTimeout must cover the 30s face-swap call.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// File storage
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"2097152"` // 2 MiB

	// Face-swap provider. When FaceSwapAPIKey is empty the simulated
	// transformer is used instead of the HTTP client.
	FaceSwapAPIKey  string        `env:"FACESWAP_API_KEY" envDefault:""`
	FaceSwapAPIURL  string        `env:"FACESWAP_API_URL" envDefault:"https://api.faceswap.dev/v1/swap"`
	FaceSwapTimeout time.Duration `env:"FACESWAP_TIMEOUT" envDefault:"30s"`
	SimulatedDelay  time.Duration `env:"SIMULATED_DELAY" envDefault:"2s"`

	// Rate limiting (per client address, fixed window)
	RateLimitEnabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitMax     int           `env:"RATE_LIMIT_MAX" envDefault:"10"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`

	// Argon2id hash of the admin key protecting destructive endpoints.
	// When empty, admin endpoints reject every request.
	AdminKeyHash string `env:"ADMIN_KEY_HASH" envDefault:""`

	// Request body size ceiling in bytes. Must leave headroom above
	// MaxUploadSize for multipart framing and the text fields.
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"4194304"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
