package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session tokens issued after identity provider sign-in
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	// Identity provider (OIDC)
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Twilio
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Redis (optional, rate limiting)
	RedisURL string

	// User synchronizer retry policy
	SyncMaxAttempts    int
	SyncInitialBackoff time.Duration
	SyncMaxBackoff     time.Duration

	// Cleanup janitor
	CleanupSchedule string
	LogRetention    time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Logging
	LogFile string

	// Server
	AppName          string
	BaseURL          string
	Port             string
	CORSOrigins      string
	PublicRoutesPath string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "salonbook"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    parseDuration(getEnv("SESSION_TTL", "168h"), 168*time.Hour),
		CookieSecure:  getEnv("COOKIE_SECURE", "true") == "true",

		OIDCIssuerURL:    getEnv("OIDC_ISSUER_URL", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		SyncMaxAttempts:    parseInt(getEnv("SYNC_MAX_ATTEMPTS", "5"), 5),
		SyncInitialBackoff: parseDuration(getEnv("SYNC_INITIAL_BACKOFF", "2s"), 2*time.Second),
		SyncMaxBackoff:     parseDuration(getEnv("SYNC_MAX_BACKOFF", "30s"), 30*time.Second),

		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@daily"),
		LogRetention:    parseDuration(getEnv("LOG_RETENTION", "720h"), 720*time.Hour),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		LogFile: getEnv("LOG_FILE", ""),

		AppName:          getEnv("APP_NAME", "SalonBook"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		Port:             getEnv("PORT", "8080"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		PublicRoutesPath: getEnv("PUBLIC_ROUTES_PATH", ""),
		ReadTimeout:      parseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"), 10*time.Second),
		WriteTimeout:     parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "15s"), 15*time.Second),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// OIDCRedirectURL is the callback registered with the identity provider.
func (c *Config) OIDCRedirectURL() string {
	return c.BaseURL + "/sign-in/callback"
}

func (c *Config) IdentityConfigured() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != "" && c.OIDCClientSecret != ""
}

func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
