// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// defaultDBPassword is the development fallback for POSTGRES_PASSWORD.
const defaultDBPassword = "changeme"

// MinJWTSecretLength is the minimum accepted JWT signing secret length in
// production. HS256 wants at least 256 bits of key material.
const MinJWTSecretLength = 32

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:8080"`
	SiteName string `env:"SITE_NAME" envDefault:"CoinPress"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"coinpress"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"coinpress"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// Authentication
	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	// Cron endpoint gate. Empty means every cron call is refused.
	CronSecret string `env:"CRON_SECRET"`
	// Optional in-process trigger, standard 5-field cron spec. Empty disables it.
	CronSchedule string `env:"CRON_SCHEDULE"`

	// AI provider settings
	AIProvider     string `env:"AI_PROVIDER" envDefault:"openai"`
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	GeminiKey      string `env:"GEMINI_API_KEY"`
	GeminiModel    string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiImage    string `env:"GEMINI_MODEL_IMAGE"`
	GeminiBaseURL  string `env:"GEMINI_BASE_URL"`
	ClaudeKey      string `env:"CLAUDE_API_KEY"`
	ClaudeModel    string `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-5"`
	ClaudeBaseURL  string `env:"CLAUDE_BASE_URL"`
	MistralKey     string `env:"MISTRAL_API_KEY"`
	MistralModel   string `env:"MISTRAL_MODEL" envDefault:"mistral-large-latest"`
	MistralBaseURL string `env:"MISTRAL_BASE_URL"`
	PromptsFile    string `env:"PROMPTS_FILE"`

	// S3-compatible object storage for cover images (optional)
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET" envDefault:"coinpress-media"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Public endpoint rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first if present; real environment variables take precedence.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.CronSecret == "" {
		slog.Warn("CRON_SECRET is not set; the cron endpoint will reject every request")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}

	if c.Env == "production" {
		if c.DBPassword == defaultDBPassword {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if len(c.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", MinJWTSecretLength)
		}
		return nil
	}

	// Development convenience: a fixed, obviously non-production secret.
	if c.JWTSecret == "" {
		c.JWTSecret = "coinpress-development-jwt-secret-change-me"
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StorageEnabled reports whether S3 credentials are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// SlogLevel maps LOG_LEVEL to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
