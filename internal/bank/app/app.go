package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/teller/internal/bank/http"
	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/notify"
	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the bank service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	metrics    *metrics.Metrics
	notifier   notify.Notifier
	redis      *redis.Client // nil unless REDIS_URL is set

	// Services
	loginService        *service.LoginService
	sessionService      *service.SessionService
	depositService      *service.DepositService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "teller",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	ctx := context.Background()
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("database ready", "driver", cfg.DatabaseDriver)

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	if app.metrics, err = metrics.New(); err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	if err := app.initBackends(ctx); err != nil {
		app.closeBackends()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("bank service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down bank service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("bank service stopped")
	return nil
}

// initBackends connects the optional redis and AMQP backends.
func (app *Application) initBackends(ctx context.Context) error {
	if app.cfg.RedisURL != "" {
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		app.redis = client
		app.logger.Info("rate limits shared through redis", "addr", opts.Addr)
	}

	if app.cfg.AMQPURL != "" {
		n, err := notify.DialAMQP(app.cfg.AMQPURL, app.cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to amqp: %w", err)
		}
		app.notifier = n
		app.logger.Info("notifications published to amqp", "exchange", app.cfg.AMQPExchange)
	} else {
		app.notifier = &notify.LogNotifier{Logger: app.logger, RevealCodes: app.cfg.Env == "dev"}
		app.logger.Warn("no AMQP_URL, notifications are only logged")
	}

	return nil
}

func (app *Application) closeBackends() error {
	if c, ok := app.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing notifier", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	lockout := &service.LockoutGovernor{
		Threshold: app.cfg.LoginAttempts,
		Duration:  app.cfg.LockoutDuration,
		Metrics:   app.metrics,
	}

	app.sessionService = &service.SessionService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		Metrics:    app.metrics,
	}

	app.loginService = &service.LoginService{
		Store:    app.db,
		Lockout:  lockout,
		OTP:      &service.OTPService{TTL: app.cfg.OTPTTL, Digits: app.cfg.OTPDigits},
		Sessions: app.sessionService,
		Notifier: app.notifier,
		Metrics:  app.metrics,
	}

	app.depositService = &service.DepositService{
		Store:    app.db,
		Notifier: app.notifier,
		Metrics:  app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	sameSite, _ := httpapi.ParseSameSite(app.cfg.CookieSameSite) // validated in New
	router.Cookies = &httpapi.CookieManager{
		Path:       app.cfg.CookiePath,
		Domain:     app.cfg.CookieDomain,
		Secure:     app.cfg.CookieSecure,
		SameSite:   sameSite,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.DepositService = app.depositService
	router.Metrics = app.metrics

	if app.redis != nil {
		client := app.redis
		router.Limiters = func(scope string, cfg httpx.RateLimitConfig) httpx.Limiter {
			return httpx.NewRedisLimiter(client, scope, cfg)
		}
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
