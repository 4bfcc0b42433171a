package payments

import (
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Plugin struct {
	provider PaymentProvider
	store    BookingFeeStore
}

// New takes the process-wide payment provider, or nil when Stripe is not
// configured. store defaults to the GORM store when nil.
func New(provider PaymentProvider, store BookingFeeStore) *Plugin {
	return &Plugin{provider: provider, store: store}
}

func (p *Plugin) ID() string { return "payments" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&BookingFee{},
	}
}

func (p *Plugin) bookingFees(db *gorm.DB) BookingFeeStore {
	if p.store == nil {
		p.store = NewGormBookingFeeStore(db)
	}
	return p.store
}

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	paymentHandler := NewPaymentHandler(NewPaymentService(p.provider))
	webhookHandler := NewWebhookHandler(NewWebhookService(p.bookingFees(db)), cfg.StripeWebhookSecret)

	router.Post("/stripe/create-payment-intent", paymentHandler.CreatePaymentIntent)
	router.Post("/webhooks/stripe", webhookHandler.HandleStripe)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	webhookHandler := NewWebhookHandler(NewWebhookService(p.bookingFees(db)), cfg.StripeWebhookSecret)
	router.Get("/booking-fees", webhookHandler.ListBookingFees)
}
