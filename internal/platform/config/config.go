package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog sources.
const (
	CatalogSourceHTTP      = "http"
	CatalogSourceFirestore = "firestore"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                string
	GinMode             string
	SiteBaseURL         string
	GoldAPIKey          string
	GoldAPIURL          string
	GoldAPIMock         bool
	CatalogSource       string
	CatalogFile         string
	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	RedisURL            string
	QuoteCacheTTL       time.Duration
	ViewTTL             time.Duration
	ViewLoadTimeout     time.Duration
	HTTPTimeout         time.Duration
	AllowedOrigins      string
	LogLevel            string
	LogFormat           string
}

// Load reads environment variables into a Config with sensible defaults.
// A missing GOLD_API_KEY is not an error here: only the gold endpoint needs it.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		SiteBaseURL:         strings.TrimSpace(os.Getenv("SITE_BASE_URL")),
		GoldAPIKey:          strings.TrimSpace(os.Getenv("GOLD_API_KEY")),
		GoldAPIURL:          strings.TrimSpace(os.Getenv("GOLD_API_URL")),
		CatalogSource:       strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceHTTP)),
		CatalogFile:         strings.TrimSpace(os.Getenv("CATALOG_FILE")),
		FirebaseProjectID:   strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64: strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		AllowedOrigins:      strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
	}
	if cfg.SiteBaseURL == "" {
		cfg.SiteBaseURL = "http://127.0.0.1:" + cfg.Port
	}
	cfg.SiteBaseURL = strings.TrimRight(cfg.SiteBaseURL, "/")

	mock, err := parseBoolEnv("GOLD_API_MOCK", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse GOLD_API_MOCK: %w", err)
	}
	cfg.GoldAPIMock = mock

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"QUOTE_CACHE_TTL", 0, &cfg.QuoteCacheTTL},
		{"VIEW_TTL", 30 * time.Minute, &cfg.ViewTTL},
		{"VIEW_LOAD_TIMEOUT", 0, &cfg.ViewLoadTimeout},
		{"HTTP_TIMEOUT", 10 * time.Second, &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		v, err := parseDurationEnv(d.key, d.def)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dest = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.CatalogSource {
	case CatalogSourceHTTP:
	case CatalogSourceFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when CATALOG_SOURCE=firestore")
		}
		if c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
			return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogSourceHTTP, CatalogSourceFirestore, c.CatalogSource)
	}
	if c.ViewTTL <= 0 {
		return errors.New("VIEW_TTL must be positive")
	}
	if c.QuoteCacheTTL < 0 || c.ViewLoadTimeout < 0 || c.HTTPTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}
