package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the DarkChannel backend service.
type Config struct {
	AppPort      int
	DatabaseURL  string
	MigrationDir string
	SeedDir      string
	LogLevel     string
	CORSOrigin   string

	RateLimitPerMinute int

	Auth        AuthConfig
	N8N         N8NConfig
	Payments    PaymentsConfig
	ObjectStore ObjectStoreConfig

	// ChannelCipherKey seals stored channel OAuth blobs. 32 bytes,
	// base64-encoded. Channel writes are rejected when unset.
	ChannelCipherKey string
}

// AuthConfig controls bearer-token verification against the identity provider.
type AuthConfig struct {
	// JWTSecret is the identity provider's HS256 signing secret. When empty
	// the service runs without token verification (degraded mode).
	JWTSecret string
	// AllowAnon accepts requests without a bearer token as an anonymous user.
	AllowAnon bool
	// AllowAnonAdmin grants the anonymous user the admin role.
	AllowAnonAdmin bool
	// AnonEmail identifies the anonymous user in degraded mode.
	AnonEmail string
}

// N8NConfig points at the workflow-automation webhooks.
type N8NConfig struct {
	ScreenplayURL  string
	VideoURL       string
	CallbackSecret string
	Timeout        time.Duration
}

// PaymentsConfig selects and configures the payment provider.
type PaymentsConfig struct {
	Provider            string
	StripeSecretKey     string
	StripeWebhookSecret string
	PriceCents          int64
	SuccessURL          string
	CancelURL           string
}

// ObjectStoreConfig targets the S3-compatible bucket for archived renders.
// Archiving is disabled when Bucket is empty.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development. A .env file in the working directory is
// loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppPort:      getInt("DARKCHANNEL_PORT", 8080),
		DatabaseURL:  getString("DARKCHANNEL_DATABASE_URL", ""),
		MigrationDir: getString("DARKCHANNEL_MIGRATIONS", "migrations"),
		SeedDir:      getString("DARKCHANNEL_SEEDS", "seeds"),
		LogLevel:     getString("DARKCHANNEL_LOG_LEVEL", "info"),
		CORSOrigin:   getString("DARKCHANNEL_CORS_ORIGIN", "http://localhost:3000"),

		RateLimitPerMinute: getInt("DARKCHANNEL_RATE_LIMIT_PER_MINUTE", 300),

		Auth: AuthConfig{
			JWTSecret:      getString("SUPABASE_JWT_SECRET", ""),
			AllowAnon:      getBool("ALLOW_ANON", false),
			AllowAnonAdmin: getBool("ALLOW_ANON_ADMIN", false),
			AnonEmail:      getString("DARKCHANNEL_ANON_EMAIL", "anon@example.com"),
		},
		N8N: N8NConfig{
			ScreenplayURL:  getString("N8N_WEBHOOK_SCREENPLAY_URL", ""),
			VideoURL:       getString("N8N_WEBHOOK_VIDEO_URL", ""),
			CallbackSecret: getString("N8N_CALLBACK_SECRET", ""),
			Timeout:        getDuration("N8N_TIMEOUT", 30*time.Second),
		},
		Payments: PaymentsConfig{
			Provider:            getString("PAYMENT_PROVIDER", "stripe"),
			StripeSecretKey:     getString("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getString("STRIPE_WEBHOOK_SECRET", ""),
			PriceCents:          int64(getInt("CREDITS_PRICE_CENTS", 3000)),
			SuccessURL:          getString("PAYMENT_SUCCESS_URL", "http://localhost:3000/pay/success"),
			CancelURL:           getString("PAYMENT_CANCEL_URL", "http://localhost:3000/pay/cancel"),
		},
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("DARKCHANNEL_ARCHIVE_BUCKET", ""),
			Region:        getString("DARKCHANNEL_ARCHIVE_REGION", "us-east-1"),
			Endpoint:      getString("DARKCHANNEL_ARCHIVE_ENDPOINT", ""),
			PublicBaseURL: getString("DARKCHANNEL_ARCHIVE_PUBLIC_URL", ""),
		},

		ChannelCipherKey: getString("DARKCHANNEL_CHANNEL_CIPHER_KEY", ""),
	}

	return cfg, nil
}

// DatabaseConfigured reports whether a persistent store is available. When
// false the service runs in degraded mode: reads return empty collections
// and writes are rejected or no-op.
func (c Config) DatabaseConfigured() bool {
	return c.DatabaseURL != ""
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
