package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	httpapi "github.com/aussiebroadwan/teller/internal/bank/http"
	"github.com/aussiebroadwan/teller/internal/bank/notify"
	"github.com/aussiebroadwan/teller/internal/bank/service"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Login policy
	LoginAttempts   int           // failures before lockout (default: 5)
	LockoutDuration time.Duration // lockout window (default: 30m)
	OTPTTL          time.Duration // one-time code validity (default: 5m)
	OTPDigits       int           // one-time code length, 6 to 8 (default: 6)

	// Sessions
	Issuer         string        // iss claim (default: teller)
	Audience       []string      // aud claim, comma separated in env (default: teller-api)
	AccessTTL      time.Duration // access token lifetime (default: 15m)
	RefreshTTL     time.Duration // refresh token lifetime (default: 24h)
	SigningKeyFile string        // Ed25519 PKCS8 PEM, created if missing. Empty means ephemeral.
	PepperFile     string        // password pepper (default: ./pepper)

	// Cookies
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string // lax, strict or none (default: lax)

	// Storage
	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // sqlite file (default: ./teller.db)
	DatabaseURL    string // postgres DSN

	// Optional backends
	RedisURL     string // shared rate limit counters when set
	AMQPURL      string // publish notifications to RabbitMQ when set
	AMQPExchange string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		LoginAttempts:   getEnvIntOrDefault("LOGIN_ATTEMPTS", service.DefaultLoginAttempts),
		LockoutDuration: getEnvDurationOrDefault("LOCKOUT_DURATION", service.DefaultLockoutDuration),
		OTPTTL:          getEnvDurationOrDefault("OTP_TTL", service.DefaultOTPTTL),
		OTPDigits:       getEnvIntOrDefault("OTP_DIGITS", service.DefaultOTPDigits),

		Issuer:         getEnvOrDefault("AUTH_ISSUER", "teller"),
		Audience:       splitList(getEnvOrDefault("AUTH_AUDIENCE", "teller-api")),
		AccessTTL:      getEnvDurationOrDefault("ACCESS_TOKEN_LIFETIME", 15*time.Minute),
		RefreshTTL:     getEnvDurationOrDefault("REFRESH_TOKEN_LIFETIME", 24*time.Hour),
		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		CookiePath:     getEnvOrDefault("COOKIE_PATH", "/"),
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:   getEnvBoolOrDefault("COOKIE_SECURE", true),
		CookieSameSite: getEnvOrDefault("COOKIE_SAMESITE", "lax"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "teller.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		RedisURL:     os.Getenv("REDIS_URL"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnvOrDefault("AMQP_EXCHANGE", notify.DefaultExchange),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", service.DefaultHousekeepingInterval),
	}
}

// Validate rejects configurations the login and session flows can't run
// safely with.
func (c Config) Validate() error {
	var errs []error

	if c.LoginAttempts < 1 {
		errs = append(errs, fmt.Errorf("LOGIN_ATTEMPTS must be at least 1, got %d", c.LoginAttempts))
	}
	if c.LockoutDuration <= 0 {
		errs = append(errs, errors.New("LOCKOUT_DURATION must be positive"))
	}
	if err := service.ValidateOTPPolicy(c.OTPDigits, c.OTPTTL); err != nil {
		errs = append(errs, err)
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_LIFETIME must be positive"))
	}
	if c.AccessTTL >= c.RefreshTTL {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_LIFETIME (%s) must be shorter than REFRESH_TOKEN_LIFETIME (%s)",
			c.AccessTTL, c.RefreshTTL))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must not be empty"))
	}

	sameSite, ok := httpapi.ParseSameSite(c.CookieSameSite)
	if !ok {
		errs = append(errs, fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none, got %q", c.CookieSameSite))
	}
	if ok && sameSite == http.SameSiteNoneMode && !c.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE=true"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE must not be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
