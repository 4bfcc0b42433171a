package sms

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type ValidateRequest struct {
	Phone string `json:"phone"`
}

type ValidateResponse struct {
	Valid     bool    `json:"valid"`
	Formatted *string `json:"formatted"`
	Original  string  `json:"original"`
}

type TestRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type TestResponse struct {
	Success    bool   `json:"success"`
	MessageSID string `json:"messageSid"`
	To         string `json:"to"`
	Status     string `json:"status"`
}

type TestErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SMSHandler struct {
	smsService *SMSService
}

func NewSMSHandler(smsService *SMSService) *SMSHandler {
	return &SMSHandler{smsService: smsService}
}

func (h *SMSHandler) Validate(c *fiber.Ctx) error {
	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Phone number is required"})
	}

	resp := ValidateResponse{Original: req.Phone}
	if formatted, ok := NormalizePhone(req.Phone); ok {
		resp.Valid = true
		resp.Formatted = &formatted
	}
	return c.JSON(resp)
}

func (h *SMSHandler) Test(c *fiber.Ctx) error {
	var req TestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(TestErrorResponse{Error: "Invalid request body"})
	}

	msg, err := h.smsService.SendTest(c.UserContext(), req.Phone, req.Message)
	if err != nil {
		var providerErr *apps.ProviderError
		switch {
		case errors.Is(err, ErrPhoneRequired):
			return c.Status(fiber.StatusBadRequest).JSON(TestErrorResponse{Error: "Phone number is required"})
		case errors.Is(err, ErrInvalidPhone):
			return c.Status(fiber.StatusBadRequest).JSON(TestErrorResponse{Error: "Invalid phone number format. Use +1XXXXXXXXXX"})
		case errors.Is(err, ErrNotConfigured):
			slog.Error("sms test requested but twilio is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(TestErrorResponse{Error: "Twilio is not configured"})
		case errors.As(err, &providerErr):
			slog.Error("twilio rejected test sms", "action", "sms_test", "status", providerErr.Status, "error", providerErr.Message)
			return c.Status(providerErr.HTTPStatus()).JSON(TestErrorResponse{Error: providerErr.Message, Details: providerErr.Code})
		}
		slog.Error("test sms failed", "action", "sms_test", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(TestErrorResponse{Error: "Failed to send test message"})
	}

	return c.JSON(TestResponse{
		Success:    true,
		MessageSID: msg.SID,
		To:         msg.To,
		Status:     msg.Status,
	})
}
