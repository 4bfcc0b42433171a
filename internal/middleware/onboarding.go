package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/onboarding"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routeguard"
	"github.com/gofiber/fiber/v2"
)

type OnboardingStatusReader interface {
	OnboardingStatus(ctx context.Context, identityID string) (bool, error)
}

// RequireOnboarded enforces the second authorization stage: a signed-in user
// who has not finished onboarding is sent to the onboarding flow, and one
// whose record has not been synchronized yet is sent to the auth redirect
// page. It must run after RouteGuard.
func RequireOnboarded(reader OnboardingStatusReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := identity.FromContext(c)
		if err != nil {
			return c.Redirect(routeguard.SignInRedirect(c.OriginalURL()), fiber.StatusTemporaryRedirect)
		}

		complete, err := reader.OnboardingStatus(c.UserContext(), id.ID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Redirect(onboarding.AuthRedirectPath, fiber.StatusSeeOther)
		}
		if err != nil {
			slog.Error("onboarding status lookup failed", "identity_id", id.ID, "error", err)
			return fiber.ErrServiceUnavailable
		}

		if onboarding.StageOf(true, complete) != onboarding.Complete {
			return c.Redirect(onboarding.OnboardingPath, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
