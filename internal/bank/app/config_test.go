package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, 5, cfg.LoginAttempts)
	require.Equal(t, 30*time.Minute, cfg.LockoutDuration)
	require.Equal(t, 5*time.Minute, cfg.OTPTTL)
	require.Equal(t, 6, cfg.OTPDigits)
	require.Equal(t, "teller", cfg.Issuer)
	require.Equal(t, []string{"teller-api"}, cfg.Audience)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOGIN_ATTEMPTS", "3")
	t.Setenv("LOCKOUT_DURATION", "45") // bare integers are minutes
	t.Setenv("ACCESS_TOKEN_LIFETIME", "5m")
	t.Setenv("REFRESH_TOKEN_LIFETIME", "12h")
	t.Setenv("AUTH_AUDIENCE", "teller-api, teller-web")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("COOKIE_SAMESITE", "strict")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://teller@localhost/teller")

	cfg := LoadConfig()
	require.Equal(t, 3, cfg.LoginAttempts)
	require.Equal(t, 45*time.Minute, cfg.LockoutDuration)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 12*time.Hour, cfg.RefreshTTL)
	require.Equal(t, []string{"teller-api", "teller-web"}, cfg.Audience)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no attempts", func(c *Config) { c.LoginAttempts = 0 }, "LOGIN_ATTEMPTS"},
		{"no lockout window", func(c *Config) { c.LockoutDuration = 0 }, "LOCKOUT_DURATION"},
		{"access outlives refresh", func(c *Config) { c.AccessTTL = c.RefreshTTL }, "shorter than"},
		{"short otp", func(c *Config) { c.OTPDigits = 4 }, "otp digits"},
		{"otp lives too long", func(c *Config) { c.OTPTTL = time.Hour }, "too long"},
		{"bad samesite", func(c *Config) { c.CookieSameSite = "sometimes" }, "COOKIE_SAMESITE"},
		{"samesite none over http", func(c *Config) {
			c.CookieSameSite = "none"
			c.CookieSecure = false
		}, "COOKIE_SECURE"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) {
			c.DatabaseDriver = DriverPostgres
			c.DatabaseURL = ""
		}, "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
