package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "GIN_MODE", "SITE_BASE_URL", "GOLD_API_KEY", "GOLD_API_URL", "GOLD_API_MOCK",
	"CATALOG_SOURCE", "CATALOG_FILE", "FIREBASE_PROJECT_ID", "FIREBASE_CREDS_BASE64",
	"FIREBASE_CREDS_FILE", "REDIS_URL", "QUOTE_CACHE_TTL", "VIEW_TTL", "VIEW_LOAD_TIMEOUT",
	"HTTP_TIMEOUT", "ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.SiteBaseURL)
	assert.Equal(t, CatalogSourceHTTP, cfg.CatalogSource)
	assert.Empty(t, cfg.GoldAPIKey, "missing key must not fail startup")
	assert.False(t, cfg.GoldAPIMock)
	assert.Zero(t, cfg.QuoteCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.ViewTTL)
	assert.Zero(t, cfg.ViewLoadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SITE_BASE_URL", "https://shop.example.com/")
	t.Setenv("GOLD_API_KEY", "goldapi-key")
	t.Setenv("GOLD_API_MOCK", "true")
	t.Setenv("QUOTE_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.SiteBaseURL)
	assert.Equal(t, "goldapi-key", cfg.GoldAPIKey)
	assert.True(t, cfg.GoldAPIMock)
	assert.Equal(t, 90*time.Second, cfg.QuoteCacheTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"bad bool":          {"GOLD_API_MOCK": "maybe"},
		"bad duration":      {"VIEW_TTL": "soon"},
		"unknown source":    {"CATALOG_SOURCE": "ftp"},
		"firestore no proj": {"CATALOG_SOURCE": "firestore", "FIREBASE_CREDS_FILE": "creds.json"},
		"firestore no cred": {"CATALOG_SOURCE": "firestore", "FIREBASE_PROJECT_ID": "proj"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestFirebaseCredentialsJSON(t *testing.T) {
	cfg := Config{FirebaseCredsBase64: base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`))}
	data, source, err := cfg.FirebaseCredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, "base64", source)
	assert.JSONEq(t, `{"type":"service_account"}`, string(data))

	_, _, err = Config{}.FirebaseCredentialsJSON()
	assert.Error(t, err)
}
