package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"INVOICING_APP_NAME":          os.Getenv("INVOICING_APP_NAME"),
		"INVOICING_APP_ENV":           os.Getenv("INVOICING_APP_ENV"),
		"INVOICING_APP_PORT":          os.Getenv("INVOICING_APP_PORT"),
		"INVOICING_DATABASE_HOST":     os.Getenv("INVOICING_DATABASE_HOST"),
		"INVOICING_DATABASE_PASSWORD": os.Getenv("INVOICING_DATABASE_PASSWORD"),
		"INVOICING_DATABASE_SSLMODE":  os.Getenv("INVOICING_DATABASE_SSLMODE"),
		"INVOICING_JWT_SECRET":        os.Getenv("INVOICING_JWT_SECRET"),
		"INVOICING_EMAIL_ENABLED":     os.Getenv("INVOICING_EMAIL_ENABLED"),
		"INVOICING_EMAIL_API_KEY":     os.Getenv("INVOICING_EMAIL_API_KEY"),
	}
	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads defaults when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "invoicing-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "invoicing", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 0.01, cfg.Invoice.PaymentTolerance)
		assert.Equal(t, time.Hour, cfg.Invoice.SweepInterval)
		assert.Equal(t, 24*time.Hour, cfg.Invoice.SendIdempotencyTTL)
		assert.Equal(t, "https://api.resend.com", cfg.Email.BaseURL)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICING_APP_PORT", "9090")
		os.Setenv("INVOICING_DATABASE_HOST", "db.internal")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICING_APP_ENV", "production")
		os.Setenv("INVOICING_DATABASE_SSLMODE", "require")

		_, err := Load()
		assert.Error(t, err)

		os.Setenv("INVOICING_JWT_SECRET", "short")
		_, err = Load()
		assert.Error(t, err)

		os.Setenv("INVOICING_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("email enabled requires api key", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICING_EMAIL_ENABLED", "true")

		_, err := Load()
		assert.Error(t, err)

		os.Setenv("INVOICING_EMAIL_API_KEY", "re_test_key")
		os.Setenv("INVOICING_EMAIL_FROM_EMAIL", "billing@acme.test")
		defer os.Unsetenv("INVOICING_EMAIL_FROM_EMAIL")

		_, err = Load()
		assert.NoError(t, err)
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "secret", DBName: "invoicing", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=invoicing sslmode=disable",
		d.DSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
