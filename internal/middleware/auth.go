package middleware

import (
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routeguard"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RouteGuard lets public paths through and requires a valid session token on
// everything else. A missing, invalid or expired token redirects to sign-in
// with the original URL as the return target.
func RouteGuard(matcher *routeguard.Matcher, sessions *identity.Sessions) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return matcher.IsPublic(c.Path())
		},
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwt.SigningMethodHS256.Alg(),
			Key:    sessions.Secret(),
		},
		ContextKey:  identity.ContextKey,
		TokenLookup: "header:Authorization,cookie:" + identity.SessionCookie,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Redirect(routeguard.SignInRedirect(c.OriginalURL()), fiber.StatusTemporaryRedirect)
		},
	})
}

// OptionalIdentity attaches the session identity on public paths when a
// valid token is present, so public handlers can tell signed-in callers apart.
func OptionalIdentity(sessions *identity.Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals(identity.ContextKey).(*jwt.Token); ok {
			return c.Next()
		}
		raw := c.Cookies(identity.SessionCookie)
		if raw == "" {
			return c.Next()
		}
		if token, err := sessions.Verify(raw); err == nil {
			c.Locals(identity.ContextKey, token)
		}
		return c.Next()
	}
}
