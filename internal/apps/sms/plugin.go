package sms

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	testSendLimit  = 5
	testSendWindow = time.Hour
)

type Plugin struct {
	provider SMSProvider
	rdb      *redis.Client
}

// New takes the process-wide SMS provider, or nil when Twilio is not
// configured, and an optional Redis client for rate limiting.
func New(provider SMSProvider, rdb *redis.Client) *Plugin {
	return &Plugin{provider: provider, rdb: rdb}
}

func (p *Plugin) ID() string { return "sms" }

func (p *Plugin) Models() []interface{} { return nil }

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewSMSHandler(NewSMSService(p.provider, cfg.TwilioPhoneNumber, cfg.AppName))

	router.Post("/sms/validate", handler.Validate)
	router.Post("/sms/test", middleware.RateLimit(p.rdb, "sms_test", testSendLimit, testSendWindow), handler.Test)
}
