package identity

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "__session"
	// ContextKey is where the route guard stores the verified *jwt.Token.
	ContextKey = "user"
)

// Sessions issues and verifies the HS256 session tokens handed out after a
// successful identity provider sign-in.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

func (s *Sessions) Secret() []byte { return s.secret }

func (s *Sessions) TTL() time.Duration { return s.ttl }

func (s *Sessions) Issue(id *Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        id.ID,
		"email":      id.Email,
		"name":       id.Name,
		"given_name": id.FirstName,
		"iat":        now.Unix(),
		"exp":        now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *Sessions) Parse(raw string) (*Identity, error) {
	token, err := s.Verify(raw)
	if err != nil {
		return nil, err
	}
	return fromToken(token)
}

// Verify checks signature, algorithm and expiry. Tokens without exp are
// rejected.
func (s *Sessions) Verify(raw string) (*jwt.Token, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	return token, nil
}

// FromContext returns the identity the route guard attached to the request.
func FromContext(c *fiber.Ctx) (*Identity, error) {
	token, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNotAuthenticated
	}
	return fromToken(token)
}

func fromToken(token *jwt.Token) (*Identity, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidSession
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	first, _ := claims["given_name"].(string)

	return &Identity{ID: sub, Email: email, Name: name, FirstName: first}, nil
}
