package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SYNC_MAX_ATTEMPTS", "")
	t.Setenv("SYNC_INITIAL_BACKOFF", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_NAME", "")
	t.Setenv("HTTP_READ_TIMEOUT", "")

	cfg := Load()

	if cfg.SyncMaxAttempts != 5 {
		t.Errorf("expected 5 sync attempts, got %d", cfg.SyncMaxAttempts)
	}
	if cfg.SyncInitialBackoff != 2*time.Second {
		t.Errorf("expected 2s initial backoff, got %v", cfg.SyncInitialBackoff)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.AppName != "SalonBook" {
		t.Errorf("expected default app name, got %s", cfg.AppName)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s read timeout, got %v", cfg.ReadTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYNC_MAX_ATTEMPTS", "3")
	t.Setenv("SYNC_INITIAL_BACKOFF", "250ms")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("BASE_URL", "https://salonbook.example")

	cfg := Load()

	if cfg.SyncMaxAttempts != 3 {
		t.Errorf("expected 3 sync attempts, got %d", cfg.SyncMaxAttempts)
	}
	if cfg.SyncInitialBackoff != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.SyncInitialBackoff)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Errorf("invalid duration should fall back, got %v", cfg.SessionTTL)
	}
	if got := cfg.OIDCRedirectURL(); got != "https://salonbook.example/sign-in/callback" {
		t.Errorf("unexpected redirect url %s", got)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"7", 7},
		{"0", 4},
		{"-1", 4},
		{"abc", 4},
	}
	for _, tt := range tests {
		if got := parseInt(tt.in, 4); got != tt.want {
			t.Errorf("parseInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestProviderConfigured(t *testing.T) {
	cfg := &Config{TwilioAccountSID: "AC123", TwilioAuthToken: "token"}
	if cfg.TwilioConfigured() {
		t.Error("twilio should not be configured without a from number")
	}
	cfg.TwilioPhoneNumber = "+15550000000"
	if !cfg.TwilioConfigured() {
		t.Error("twilio should be configured")
	}
	if cfg.IdentityConfigured() {
		t.Error("identity provider should not be configured")
	}
}
