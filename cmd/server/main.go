package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps/payments"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps/sms"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routeguard"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.SessionSecret == "" {
		slog.Error("SESSION_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Public route allow-list
	matcher, err := loadPublicRoutes(cfg.PublicRoutesPath)
	if err != nil {
		slog.Error("failed to load public routes", "path", cfg.PublicRoutesPath, "error", err)
		os.Exit(1)
	}
	slog.Info("public routes loaded", "patterns", len(matcher.Patterns()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch), optional rotating file
	pgLogHandler := logging.NewPGHandler(database.DB)
	var fileHandler slog.Handler
	var logFile io.Closer
	if cfg.LogFile != "" {
		fileHandler, logFile = logging.FileHandler(cfg.LogFile)
	}
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.StdoutHandler(),
		pgLogHandler,
		fileHandler,
	)))

	// Redis (optional, shared rate limit counters)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		slog.Info("redis rate limiting enabled")
	}

	// Identity provider
	var authenticator identity.Authenticator
	if cfg.IdentityConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		provider, err := identity.NewOIDCProvider(ctx, cfg.OIDCIssuerURL, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL())
		cancel()
		if err != nil {
			slog.Error("identity provider discovery failed", "issuer", cfg.OIDCIssuerURL, "error", err)
			os.Exit(1)
		}
		authenticator = provider
	} else {
		slog.Warn("identity provider not configured, sign-in disabled")
	}
	sessions := identity.NewSessions(cfg.SessionSecret, cfg.SessionTTL)

	// Services
	userRepo := repository.NewUserRepository(database.DB)
	syncService := services.NewUserSyncService(userRepo, services.RetryPolicy{
		MaxAttempts:     cfg.SyncMaxAttempts,
		InitialInterval: cfg.SyncInitialBackoff,
		MaxInterval:     cfg.SyncMaxBackoff,
	})
	authService := services.NewAuthService(authenticator, sessions, syncService)
	onboardingService := services.NewOnboardingService(userRepo)

	cleanupService := services.NewCleanupService(database.DB, cfg.LogRetention)
	if err := cleanupService.Start(cfg.CleanupSchedule); err != nil {
		slog.Error("failed to schedule cleanup", "schedule", cfg.CleanupSchedule, "error", err)
		os.Exit(1)
	}

	// External providers are constructed once and shared.
	var paymentProvider payments.PaymentProvider
	if cfg.StripeSecretKey != "" {
		paymentProvider = payments.NewStripeProvider(cfg.StripeSecretKey)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, payment intents disabled")
	}
	var smsProvider sms.SMSProvider
	if cfg.TwilioConfigured() {
		smsProvider = sms.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	} else {
		slog.Warn("twilio not configured, test sms disabled")
	}

	plugins := []apps.Plugin{
		payments.New(paymentProvider, nil),
		sms.New(smsProvider, rdb),
	}

	// Migrate plugin models
	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, syncService, sessions, cfg)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService, cfg)
	pagesHandler := handlers.NewPagesHandler(cfg.AppName)
	healthHandler := handlers.NewHealthHandler(database.Ping, rdb)
	adminHandler := handlers.NewAdminHandler(cleanupService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    4 * 1024 * 1024,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, rdb, matcher, sessions, userRepo,
		authHandler, onboardingHandler, pagesHandler, healthHandler, adminHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cleanupService.Stop()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
	if logFile != nil {
		logFile.Close()
	}
}

func loadPublicRoutes(path string) (*routeguard.Matcher, error) {
	if path == "" {
		return routeguard.NewMatcher(routeguard.DefaultPublicRoutes)
	}
	return routeguard.LoadFromFile(path)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if code == fiber.StatusServiceUnavailable {
			message = "Service temporarily unavailable"
		} else {
			message = "Internal server error"
		}
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
