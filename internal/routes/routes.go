package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routeguard"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	matcher *routeguard.Matcher,
	sessions *identity.Sessions,
	onboardingReader middleware.OnboardingStatusReader,
	authHandler *handlers.AuthHandler,
	onboardingHandler *handlers.OnboardingHandler,
	pagesHandler *handlers.PagesHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	plugins []apps.Plugin,
) {
	// Every request passes the route guard; public paths skip it.
	app.Use(middleware.RouteGuard(matcher, sessions))

	// Marketing pages (public, signed-in aware)
	optional := middleware.OptionalIdentity(sessions)
	app.Get("/", optional, pagesHandler.Home)
	app.Get("/pricing", optional, pagesHandler.Pricing)
	app.Get("/features", optional, pagesHandler.Features)
	app.Get("/contact", optional, pagesHandler.Contact)

	// Identity provider flow: 10 req/min per IP
	signIn := middleware.RateLimit(rdb, "sign_in", 10, time.Minute)
	app.Get("/sign-in", signIn, authHandler.SignIn)
	app.Get("/sign-up", signIn, authHandler.SignUp)
	app.Get("/sign-in/callback", signIn, authHandler.Callback)

	// Signed-in pages
	app.Get("/auth-redirect", onboardingHandler.AuthRedirect)
	app.Get("/onboarding", pagesHandler.Onboarding)
	app.Get("/dashboard", middleware.RequireOnboarded(onboardingReader), pagesHandler.Dashboard)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(middleware.RateLimit(rdb, "api", 60, time.Minute))

	api.Get("/health", healthHandler.Check)

	api.Post("/auth/signout", authHandler.SignOut)
	api.Get("/auth/me", authHandler.Me)
	api.Post("/users/sync", authHandler.Sync)

	api.Get("/onboarding/status", onboardingHandler.Status)
	api.Post("/onboarding/complete", onboardingHandler.Complete)

	admin := api.Group("/admin", middleware.AdminRequired(cfg))
	admin.Post("/cleanup", adminHandler.RunCleanup)

	for _, p := range plugins {
		p.RegisterRoutes(api, db, cfg)
		// If the plugin also implements AdminPlugin, register admin routes
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
