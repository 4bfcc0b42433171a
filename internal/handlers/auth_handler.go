package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/onboarding"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routeguard"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	syncService *services.UserSyncService
	sessions    *identity.Sessions
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, syncService *services.UserSyncService, sessions *identity.Sessions, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, syncService: syncService, sessions: sessions, cfg: cfg}
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	return h.begin(c, false)
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	return h.begin(c, true)
}

func (h *AuthHandler) begin(c *fiber.Ctx, signUp bool) error {
	state, authURL, err := h.authService.BeginSignIn(signUp)
	if err != nil {
		if errors.Is(err, identity.ErrProviderNotConfigured) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Sign-in is not configured"})
		}
		slog.Error("failed to start sign-in", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to start sign-in"})
	}

	setCookie(c, h.cfg.CookieSecure, stateCookie, state, time.Now().Add(oauthTTL))
	returnTo := routeguard.SafeReturnPath(c.Query(routeguard.ReturnParam), onboarding.AuthRedirectPath)
	setCookie(c, h.cfg.CookieSecure, returnCookie, returnTo, time.Now().Add(oauthTTL))

	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback finishes the authorization code flow. The session is established
// even when the user sync fails; the client retries through POST /api/users/sync.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if providerErr := c.Query("error"); providerErr != "" {
		slog.Warn("identity provider returned an error", "error", providerErr, "description", c.Query("error_description"))
		clearCookie(c, h.cfg.CookieSecure, stateCookie)
		return c.Redirect(routeguard.SignInPath, fiber.StatusFound)
	}

	result, err := h.authService.CompleteSignIn(c.UserContext(), c.Cookies(stateCookie), c.Query("state"), c.Query("code"))
	clearCookie(c, h.cfg.CookieSecure, stateCookie)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidState):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid sign-in state"})
		case errors.Is(err, identity.ErrProviderNotConfigured):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Sign-in is not configured"})
		}
		slog.Error("sign-in callback failed", "action", "sign_in", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Sign-in failed"})
	}

	setCookie(c, h.cfg.CookieSecure, identity.SessionCookie, result.Token, time.Now().Add(h.sessions.TTL()))

	// A new session starts with a fresh onboarding gate and loading budget.
	for _, name := range []string{gateCookie, roundsCookie} {
		clearCookie(c, h.cfg.CookieSecure, name)
	}

	returnTo := routeguard.SafeReturnPath(c.Cookies(returnCookie), onboarding.AuthRedirectPath)
	clearCookie(c, h.cfg.CookieSecure, returnCookie)
	return c.Redirect(returnTo, fiber.StatusFound)
}

// SignOut always succeeds; it only clears cookies.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	for _, name := range []string{identity.SessionCookie, stateCookie, returnCookie, gateCookie, roundsCookie} {
		clearCookie(c, h.cfg.CookieSecure, name)
	}
	return c.JSON(dto.SignOutResponse{Success: true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}
	return c.JSON(dto.IdentityResponse{ID: id.ID, Email: id.Email, Name: id.DisplayName()})
}

// Sync reconciles the signed-in identity into the users table. Clients call
// it once when their session loads.
func (h *AuthHandler) Sync(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	result, err := h.syncService.Sync(c.UserContext(), id)
	if err != nil {
		attempts := 0
		if result != nil {
			attempts = result.Attempts
		}
		if errors.Is(err, services.ErrMissingIdentity) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.SyncResponse{
			State:    "failed",
			Attempts: attempts,
			Error:    "Failed to synchronize user",
		})
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.SyncResponse{
		State:    "synced",
		Attempts: result.Attempts,
		User:     dto.NewUserResponse(result.User),
	})
}
