package handlers

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type CleanupRunner interface {
	RunOnce(ctx context.Context) (*dto.CleanupResponse, error)
}

type AdminHandler struct {
	cleanup CleanupRunner
}

func NewAdminHandler(cleanup CleanupRunner) *AdminHandler {
	return &AdminHandler{cleanup: cleanup}
}

// RunCleanup runs one janitor pass on demand and returns what it removed.
func (h *AdminHandler) RunCleanup(c *fiber.Ctx) error {
	result, err := h.cleanup.RunOnce(c.UserContext())
	if err != nil {
		slog.Error("manual cleanup failed", "action", "cleanup", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Cleanup failed"})
	}
	return c.JSON(result)
}
