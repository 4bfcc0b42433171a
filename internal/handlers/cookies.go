package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	stateCookie  = "__oauth_state"
	returnCookie = "__oauth_return"
	oauthTTL     = 10 * time.Minute

	// gateCookie holds the onboarding gate's last fired redirect.
	gateCookie = "__gate"
	// roundsCookie counts loading page renders since the last sync attempt.
	roundsCookie = "__gate_rounds"
	gateTTL      = 10 * time.Minute
)

func setCookie(c *fiber.Ctx, secure bool, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearCookie(c *fiber.Ctx, secure bool, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
