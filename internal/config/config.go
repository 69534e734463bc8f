package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting of the API.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080/api/v1"`
	// FrontendURL is both the CORS origin and the base of invite links.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBUser     string `env:"DB_USER" envDefault:"okruser"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"okrpassword"`
	DBName     string `env:"DB_NAME" envDefault:"myokr"`
	DBPath     string `env:"DB_PATH" envDefault:"myokr.db"`

	SessionStore  string        `env:"SESSION_STORE" envDefault:"cookie"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string        `env:"REDIS_PORT" envDefault:"6379"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"default-jwt-secret-change-me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	BrevoAPIKey     string        `env:"BREVO_API_KEY"`
	MailFromAddress string        `env:"MAIL_FROM_ADDRESS" envDefault:"no-reply@myokr.app"`
	MailFromName    string        `env:"MAIL_FROM_NAME" envDefault:"MyOKR"`
	MailTimeout     time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	MailConcurrency int           `env:"MAIL_CONCURRENCY" envDefault:"10"`

	AIAPIKey  string `env:"AI_API_KEY"`
	AIBaseURL string `env:"AI_BASE_URL"`
	AIModel   string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
}

const defaultSecretPrefix = "default-"

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the API runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Validate checks settings that cannot be defaulted safely.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}

	if c.MailConcurrency < 1 {
		return errors.New("MAIL_CONCURRENCY must be at least 1")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" || hasDefaultPrefix(c.JWTSecret) {
			return errors.New("JWT_SECRET must be set in release mode")
		}
		if c.SessionSecret == "" || hasDefaultPrefix(c.SessionSecret) {
			return errors.New("SESSION_SECRET must be set in release mode")
		}
	}

	return nil
}

func hasDefaultPrefix(s string) bool {
	return len(s) >= len(defaultSecretPrefix) && s[:len(defaultSecretPrefix)] == defaultSecretPrefix
}
