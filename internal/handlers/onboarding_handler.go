package handlers

import (
	"encoding/base64"
	"errors"
	"html"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/onboarding"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// maxLoadingRounds bounds how often the loading page reloads itself before it
// gives up and shows the sync failure page.
const maxLoadingRounds = 15

type OnboardingHandler struct {
	onboardingService *services.OnboardingService
	appName           string
	secureCookies     bool
}

func NewOnboardingHandler(onboardingService *services.OnboardingService, cfg *config.Config) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
		appName:           cfg.AppName,
		secureCookies:     cfg.CookieSecure,
	}
}

func (h *OnboardingHandler) Status(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	complete, err := h.onboardingService.Status(c.UserContext(), id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "User not synchronized"})
		}
		slog.Error("onboarding status lookup failed", "identity_id", id.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to load onboarding status"})
	}
	return c.JSON(dto.OnboardingStatusResponse{OnboardingComplete: complete})
}

func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	var req dto.CompleteOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	user, err := h.onboardingService.Complete(c.UserContext(), id.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOnboarding):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "User not synchronized"})
		case errors.Is(err, repository.ErrAlreadyOnboarded):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "Onboarding already completed"})
		}
		slog.Error("onboarding completion failed", "identity_id", id.ID, "action", "complete_onboarding", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to complete onboarding"})
	}

	return c.JSON(dto.NewUserResponse(user))
}

// AuthRedirect is the landing page after sign-in. Browsers get a loading page
// until the user record exists and are then redirected to the dashboard or
// the onboarding flow. API clients asking for JSON poll the gate instead.
func (h *OnboardingHandler) AuthRedirect(c *fiber.Ctx) error {
	snap := h.snapshot(c)

	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return h.pollGate(c, snap)
	}

	// Each full page load observes the session afresh.
	var gate onboarding.Gate
	if decision, fire := gate.Observe(snap); fire {
		clearCookie(c, h.secureCookies, roundsCookie)
		return c.Redirect(decision.Path(), fiber.StatusSeeOther)
	}
	return h.loading(c, snap.IdentityID)
}

func (h *OnboardingHandler) snapshot(c *fiber.Ctx) onboarding.Snapshot {
	snap := onboarding.Snapshot{}
	id, err := identity.FromContext(c)
	if err != nil {
		return snap
	}
	snap.IdentityID = id.ID

	complete, err := h.onboardingService.Status(c.UserContext(), id.ID)
	switch {
	case err == nil:
		snap.UserLoaded = true
		snap.OnboardingComplete = complete
	case !errors.Is(err, repository.ErrUserNotFound):
		slog.Error("onboarding status lookup failed", "identity_id", id.ID, "error", err)
	}
	return snap
}

// pollGate keeps the gate in a cookie so a polling client is told to redirect
// once per resolution of its session.
func (h *OnboardingHandler) pollGate(c *fiber.Ctx, snap onboarding.Snapshot) error {
	var gate onboarding.Gate
	if raw, err := base64.RawURLEncoding.DecodeString(c.Cookies(gateCookie)); err == nil {
		if err := gate.UnmarshalText(raw); err != nil {
			slog.Warn("discarding gate cookie", "identity_id", snap.IdentityID, "error", err)
		}
	}

	decision, fire := gate.Observe(snap)
	resp := dto.GateResponse{State: string(decision)}
	if fire {
		resp.Redirect = decision.Path()
		text, _ := gate.MarshalText()
		setCookie(c, h.secureCookies, gateCookie, base64.RawURLEncoding.EncodeToString(text), time.Now().Add(gateTTL))
	}
	return c.JSON(resp)
}

// loading renders the loading page. The first round triggers one user sync;
// later rounds only reload, and after maxLoadingRounds the failure page is
// shown. ?retry=1 starts a new budget.
func (h *OnboardingHandler) loading(c *fiber.Ctx, identityID string) error {
	if c.Query("sync") == "failed" {
		return h.syncFailed(c, identityID)
	}

	rounds := 0
	if c.Query("retry") == "" {
		rounds, _ = strconv.Atoi(c.Cookies(roundsCookie))
	}
	if rounds >= maxLoadingRounds {
		return h.syncFailed(c, identityID)
	}

	rounds++
	setCookie(c, h.secureCookies, roundsCookie, strconv.Itoa(rounds), time.Now().Add(gateTTL))
	return c.Type("html").SendString(loadingPage(h.appName, rounds == 1))
}

func (h *OnboardingHandler) syncFailed(c *fiber.Ctx, identityID string) error {
	slog.Warn("account setup gave up waiting for user sync", "identity_id", identityID, "action", "user_sync")
	clearCookie(c, h.secureCookies, roundsCookie)
	return c.Status(fiber.StatusServiceUnavailable).Type("html").SendString(syncFailedPage(h.appName))
}

func loadingPage(appName string, runSync bool) string {
	name := html.EscapeString(appName)
	script := `setTimeout(function(){location.replace("` + onboarding.AuthRedirectPath + `")},2000);`
	if runSync {
		script = `fetch("/api/users/sync",{method:"POST",credentials:"include"})
.then(function(r){return r.json()})
.then(function(b){location.replace(b.state==="failed"?"` + onboarding.AuthRedirectPath + `?sync=failed":"` + onboarding.AuthRedirectPath + `")})
.catch(function(){location.replace("` + onboarding.AuthRedirectPath + `?sync=failed")});`
	}
	return `<!DOCTYPE html>
<html><head><title>Signing you in - ` + name + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<noscript><meta http-equiv="refresh" content="2;url=` + onboarding.AuthRedirectPath + `"></noscript>
` + pageStyle + `
</head><body>
<h1>Setting up your account</h1>
<p>Hang tight, we are getting ` + name + ` ready for you.</p>
<script>` + script + `</script>
</body></html>`
}

func syncFailedPage(appName string) string {
	name := html.EscapeString(appName)
	return `<!DOCTYPE html>
<html><head><title>Account setup failed - ` + name + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
` + pageStyle + `
</head><body>
<h1>We could not finish setting up your account</h1>
<p>` + name + ` is having trouble reaching its database. Your sign-in worked; please try again in a moment.</p>
<p><a href="` + onboarding.AuthRedirectPath + `?retry=1">Try again</a> or <a href="/">go back home</a>.</p>
</body></html>`
}
