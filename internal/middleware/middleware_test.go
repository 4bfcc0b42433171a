package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/routeguard"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const testSecret = "middleware-test-secret"

func ok(c *fiber.Ctx) error { return c.SendString("ok") }

func newGuardedApp(t *testing.T) (*fiber.App, *identity.Sessions) {
	t.Helper()
	matcher, err := routeguard.NewMatcher(routeguard.DefaultPublicRoutes)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	sessions := identity.NewSessions(testSecret, time.Hour)

	app := fiber.New()
	app.Use(RouteGuard(matcher, sessions))
	app.Get("/pricing", ok)
	app.Get("/sign-in/callback", ok)
	app.Get("/dashboard", ok)
	app.Get("/api/auth/me", func(c *fiber.Ctx) error {
		id, err := identity.FromContext(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(id.ID)
	})
	return app, sessions
}

func TestRouteGuardPublicPaths(t *testing.T) {
	app, _ := newGuardedApp(t)

	for _, path := range []string{"/pricing", "/sign-in/callback?code=x"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestRouteGuardRedirectsAnonymous(t *testing.T) {
	app, _ := newGuardedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard?tab=bookings", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", resp.StatusCode)
	}
	want := "/sign-in?redirect_url=%2Fdashboard%3Ftab%3Dbookings"
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestRouteGuardAcceptsSessionCookieAndBearer(t *testing.T) {
	app, sessions := newGuardedApp(t)
	token, err := sessions.Issue(&identity.Identity{ID: "idp_1"})
	if err != nil {
		t.Fatal(err)
	}

	withCookie := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	withCookie.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: token})

	withHeader := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	withHeader.Header.Set("Authorization", "Bearer "+token)

	for name, req := range map[string]*http.Request{"cookie": withCookie, "header": withHeader} {
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s: expected 200, got %d", name, resp.StatusCode)
		}
	}
}

func TestRouteGuardTreatsForeignTokenAsAbsent(t *testing.T) {
	app, _ := newGuardedApp(t)
	foreign, _ := identity.NewSessions("someone-else", time.Hour).Issue(&identity.Identity{ID: "idp_1"})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: foreign})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Errorf("expected 307, got %d", resp.StatusCode)
	}
}

type stubStatus struct {
	complete bool
	err      error
}

func (s stubStatus) OnboardingStatus(context.Context, string) (bool, error) {
	return s.complete, s.err
}

func TestRequireOnboarded(t *testing.T) {
	sessions := identity.NewSessions(testSecret, time.Hour)
	token, _ := sessions.Issue(&identity.Identity{ID: "idp_1"})

	tests := []struct {
		name     string
		reader   stubStatus
		status   int
		location string
	}{
		{"complete", stubStatus{complete: true}, fiber.StatusOK, ""},
		{"pending", stubStatus{}, fiber.StatusSeeOther, "/onboarding"},
		{"not synced", stubStatus{err: repository.ErrUserNotFound}, fiber.StatusSeeOther, "/auth-redirect"},
		{"store down", stubStatus{err: errors.New("db down")}, fiber.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher, _ := routeguard.NewMatcher(routeguard.DefaultPublicRoutes)
			app := fiber.New()
			app.Use(RouteGuard(matcher, sessions))
			app.Get("/dashboard", RequireOnboarded(tt.reader), ok)

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: token})
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.location != "" && resp.Header.Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", resp.Header.Get("Location"), tt.location)
			}
		})
	}
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{AdminToken: "s3cret", AdminEmails: "Owner@Salon.test, ops@salon.test"}
	sessions := identity.NewSessions(testSecret, time.Hour)
	matcher, _ := routeguard.NewMatcher(routeguard.DefaultPublicRoutes)

	app := fiber.New()
	app.Use(RouteGuard(matcher, sessions))
	app.Post("/api/admin/cleanup", AdminRequired(cfg), ok)

	adminToken, _ := sessions.Issue(&identity.Identity{ID: "idp_1", Email: "owner@salon.test"})
	userToken, _ := sessions.Issue(&identity.Identity{ID: "idp_2", Email: "client@salon.test"})

	tests := []struct {
		name   string
		header map[string]string
		status int
	}{
		{"admin email", map[string]string{"Authorization": "Bearer " + adminToken}, fiber.StatusOK},
		{"admin token", map[string]string{"Authorization": "Bearer " + userToken, "X-Admin-Token": "s3cret"}, fiber.StatusOK},
		{"regular user", map[string]string{"Authorization": "Bearer " + userToken}, fiber.StatusForbidden},
		{"wrong token", map[string]string{"Authorization": "Bearer " + userToken, "X-Admin-Token": "nope"}, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestRateLimitInProcessFallback(t *testing.T) {
	app := fiber.New()
	app.Post("/api/sms/test", RateLimit(nil, "sms", 2, time.Minute), ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/sms/test", nil))
		if err != nil {
			t.Fatal(err)
		}
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != fiber.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRateLimitRedisWindow(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}

	name := fmt.Sprintf("test_%d", time.Now().UnixNano())
	app := fiber.New()
	app.Post("/api/sms/test", RateLimit(rdb, name, 2, time.Minute), ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/sms/test", nil))
		if err != nil {
			t.Fatal(err)
		}
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != fiber.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	keys, err := rdb.Keys(ctx, "ratelimit:"+name+":*").Result()
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected one counter key, got %v (%v)", keys, err)
	}
	defer rdb.Del(ctx, keys...)
	ttl, err := rdb.TTL(ctx, keys[0]).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected the window to expire within a minute, ttl=%v", ttl)
	}
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	app := fiber.New()
	app.Post("/api/sms/test", RateLimit(rdb, "down", 1, time.Minute), ok)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/sms/test", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 while redis is down, got %d", i, resp.StatusCode)
		}
	}
}

func TestOptionalIdentity(t *testing.T) {
	sessions := identity.NewSessions(testSecret, time.Hour)
	token, _ := sessions.Issue(&identity.Identity{ID: "idp_1"})

	app := fiber.New()
	app.Use(OptionalIdentity(sessions))
	app.Get("/", func(c *fiber.Ctx) error {
		if _, err := identity.FromContext(c); err != nil {
			return c.SendString("anonymous")
		}
		return c.SendString("signed-in")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: token})
	resp, _ := app.Test(req)
	if body := readBody(t, resp); body != "signed-in" {
		t.Errorf("expected signed-in, got %q", body)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if body := readBody(t, resp); body != "anonymous" {
		t.Errorf("expected anonymous, got %q", body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}
