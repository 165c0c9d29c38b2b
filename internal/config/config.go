package config

import (
	"fmt"
	"strings"

	sharedauth "github.com/internhub/portal-service/shared/auth"
	"github.com/internhub/portal-service/shared/envconfig"
)

// Config encapsulates the runtime configuration for the portal service.
type Config struct {
	Port         string    `validate:"required,numeric"`
	GCPProjectID string
	DataStore    DataStore `validate:"oneof=memory firestore"`
	LogLevel     string
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Fixture      FixtureConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps interns and sessions in-memory and serves portal data from fixtures.
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores interns, sessions and portal data in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// AuthConfig selects how session tokens are minted and verified.
type AuthConfig struct {
	Mode   sharedauth.Mode
	Secret string
	Issuer string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost string
}

// FixtureConfig controls the in-memory data source.
type FixtureConfig struct {
	// SimulateLatency delays each fixture fetch like the mock API did.
	SimulateLatency bool
	CatalogPath     string
}

// RateLimitConfig bounds auth requests per client IP.
type RateLimitConfig struct {
	RPS   float64 `validate:"gt=0"`
	Burst int     `validate:"gte=1"`
}

// CORSConfig lists the front end origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `validate:"dive,url"`
}

// Load reads a .env file when present and then environment variables into Config with validation.
func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		LogLevel:     envconfig.Get("LOG_LEVEL", "info"),
		Auth: AuthConfig{
			Mode:   sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			Secret: envconfig.Get("SESSION_SECRET", ""),
			Issuer: envconfig.Get("SESSION_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Fixture: FixtureConfig{
			SimulateLatency: envconfig.GetBool("FIXTURE_LATENCY", true),
			CatalogPath:     envconfig.Get("FIXTURE_CATALOG_PATH", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   envconfig.GetFloat("AUTH_RATE_LIMIT_RPS", 5),
			Burst: envconfig.GetInt("AUTH_RATE_LIMIT_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: envconfig.GetList("CORS_ALLOWED_ORIGINS"),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.DataStore == DataStoreFirestore && cfg.GCPProjectID == "" {
		return fmt.Errorf("gcp project id required when datastore=firestore")
	}

	switch cfg.Auth.Mode {
	case sharedauth.ModeHMAC:
		if len(cfg.Auth.Secret) < 16 {
			return fmt.Errorf("SESSION_SECRET of at least 16 bytes is required when AUTH_MODE=hmac")
		}
	case sharedauth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
