package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, "cookie", cfg.SessionStore)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 10, cfg.MailConcurrency)
	require.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("MAIL_TIMEOUT", "3s")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, 3*time.Second, cfg.MailTimeout)
	require.Equal(t, "https://app.example.com", cfg.FrontendURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBDriver:        "sqlite",
			SessionStore:    "cookie",
			MailConcurrency: 10,
			JWTSecret:       "default-jwt-secret-change-me",
			SessionSecret:   "default-secret-key-change-me",
		}
	}

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.DBDriver = "oracle"
		require.Error(t, cfg.Validate())
	})

	t.Run("unknown session store", func(t *testing.T) {
		cfg := base()
		cfg.SessionStore = "memcached"
		require.Error(t, cfg.Validate())
	})

	t.Run("default secrets rejected in release", func(t *testing.T) {
		cfg := base()
		cfg.GinMode = "release"
		require.Error(t, cfg.Validate())

		cfg.JWTSecret = "a-real-secret"
		cfg.SessionSecret = "another-real-secret"
		require.NoError(t, cfg.Validate())
	})

	t.Run("debug accepts defaults", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})
}
