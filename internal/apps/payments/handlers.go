package payments

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v83/webhook"
)

// maxWebhookBody matches Stripe's recommended payload cap.
const maxWebhookBody = 64 * 1024

type PaymentHandler struct {
	paymentService *PaymentService
}

func NewPaymentHandler(paymentService *PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	var req BookingPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	intent, err := h.paymentService.CreateBookingFeeIntent(c.UserContext(), &req)
	if err != nil {
		var providerErr *apps.ProviderError
		switch {
		case errors.Is(err, ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Missing required fields"})
		case errors.Is(err, ErrProviderMissing):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Stripe is not configured"})
		case errors.As(err, &providerErr):
			slog.Error("stripe rejected payment intent", "booking_id", req.BookingID, "action", "create_payment_intent",
				"status", providerErr.Status, "error", providerErr.Message)
			return c.Status(providerErr.HTTPStatus()).JSON(dto.ErrorResponse{Error: providerErr.Message, Details: providerErr.Code})
		}
		slog.Error("payment intent creation failed", "booking_id", req.BookingID, "action", "create_payment_intent", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to create payment intent"})
	}

	return c.JSON(CreatePaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
	})
}

type WebhookHandler struct {
	webhookService *WebhookService
	secret         string
}

func NewWebhookHandler(webhookService *WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, secret: secret}
}

// HandleStripe verifies the Stripe-Signature header before touching the
// payload.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	if h.secret == "" {
		slog.Error("stripe webhook received but STRIPE_WEBHOOK_SECRET is not set")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Webhooks not configured"})
	}

	payload := c.Body()
	if len(payload) > maxWebhookBody {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Error: "Payload too large"})
	}

	event, err := webhook.ConstructEventWithOptions(payload, c.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		slog.Warn("stripe webhook signature rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid signature"})
	}

	if err := h.webhookService.HandleEvent(c.UserContext(), &event); err != nil {
		switch {
		case errors.Is(err, ErrUnhandledEvent):
			slog.Debug("stripe event ignored", "type", string(event.Type))
		case errors.Is(err, ErrMalformedEvent):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Malformed event payload"})
		default:
			slog.Error("stripe webhook processing failed", "event_id", event.ID, "type", string(event.Type), "action", "stripe_webhook", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to process webhook event"})
		}
	}

	return c.JSON(dto.WebhookResponse{Received: true})
}

// ListBookingFees is an admin view of recorded fee outcomes.
func (h *WebhookHandler) ListBookingFees(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	fees, err := h.webhookService.store.List(c.UserContext(), limit)
	if err != nil {
		slog.Error("failed to list booking fees", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to list booking fees"})
	}
	return c.JSON(fiber.Map{"bookingFees": fees})
}
