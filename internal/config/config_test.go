package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedauth "github.com/internhub/portal-service/shared/auth"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATASTORE", "AUTH_MODE", "SESSION_SECRET", "GCP_PROJECT_ID", "FIXTURE_LATENCY", "CORS_ALLOWED_ORIGINS", "AUTH_RATE_LIMIT_RPS", "AUTH_RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DataStoreMemory, cfg.DataStore)
	assert.Equal(t, sharedauth.ModeNoop, cfg.Auth.Mode)
	assert.True(t, cfg.Fixture.SimulateLatency)
	assert.Equal(t, RateLimitConfig{RPS: 5, Burst: 10}, cfg.RateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATASTORE", "FIRESTORE")
	t.Setenv("GCP_PROJECT_ID", "intern-portal")
	t.Setenv("AUTH_MODE", "hmac")
	t.Setenv("SESSION_SECRET", "0123456789abcdef")
	t.Setenv("FIXTURE_LATENCY", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://portal.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DataStoreFirestore, cfg.DataStore)
	assert.Equal(t, sharedauth.ModeHMAC, cfg.Auth.Mode)
	assert.False(t, cfg.Fixture.SimulateLatency)
	assert.Equal(t, []string{"http://localhost:5173", "https://portal.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown datastore", map[string]string{"DATASTORE": "postgres"}},
		{"firestore without project", map[string]string{"DATASTORE": "firestore", "GCP_PROJECT_ID": ""}},
		{"hmac without secret", map[string]string{"AUTH_MODE": "hmac", "SESSION_SECRET": "short"}},
		{"unknown auth mode", map[string]string{"AUTH_MODE": "clerk"}},
		{"non numeric port", map[string]string{"PORT": "http"}},
		{"bad origin", map[string]string{"CORS_ALLOWED_ORIGINS": "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"PORT", "DATASTORE", "AUTH_MODE", "SESSION_SECRET", "GCP_PROJECT_ID", "CORS_ALLOWED_ORIGINS"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
