package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBind             = ":8080"
	DefaultDataDir          = "downloads"
	DefaultCatalogFile      = "exercises.json"
	DefaultDisplayLimit     = 400
	DefaultGeneratorTimeout = 15 * time.Second
	DefaultBrowseTagLimit   = 40
	DefaultPickerTagLimit   = 120
	DefaultMaxRequestBytes  = 1 << 20
)

type AuthMode string

const (
	AuthNone   AuthMode = "none"
	AuthAPIKey AuthMode = "apikey"
)

type Config struct {
	Bind               string
	DataDir            string
	CatalogFile        string
	DBDSN              string
	GeneratorURL       string
	GeneratorTimeout   time.Duration
	DisplayLimit       int
	BrowseTagLimit     int
	PickerTagLimit     int
	MaxRequestBytes    int64
	TagDenylistFile    string
	AuthMode           AuthMode
	APIKeysFile        string
	CORSAllowedOrigins []string
	LogLevel           string
	SwaggerUIPath      string
	OpenAPIPath        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Bind:               getenv("ANNALES_BIND", DefaultBind),
		DataDir:            getenv("ANNALES_DATA_DIR", DefaultDataDir),
		CatalogFile:        getenv("ANNALES_CATALOG_FILE", DefaultCatalogFile),
		DBDSN:              os.Getenv("ANNALES_DB_DSN"),
		GeneratorURL:       os.Getenv("ANNALES_GENERATOR_URL"),
		GeneratorTimeout:   getDuration("ANNALES_GENERATOR_TIMEOUT", DefaultGeneratorTimeout),
		DisplayLimit:       getInt("ANNALES_DISPLAY_LIMIT", DefaultDisplayLimit),
		BrowseTagLimit:     getInt("ANNALES_BROWSE_TAG_LIMIT", DefaultBrowseTagLimit),
		PickerTagLimit:     getInt("ANNALES_PICKER_TAG_LIMIT", DefaultPickerTagLimit),
		MaxRequestBytes:    getInt64("ANNALES_MAX_REQUEST_BYTES", DefaultMaxRequestBytes),
		TagDenylistFile:    os.Getenv("ANNALES_TAG_DENYLIST_FILE"),
		AuthMode:           AuthMode(getenv("ANNALES_AUTH_MODE", string(AuthNone))),
		CORSAllowedOrigins: splitAndTrim(os.Getenv("ANNALES_CORS_ALLOWED_ORIGINS")),
		LogLevel:           os.Getenv("ANNALES_LOG_LEVEL"),
		SwaggerUIPath:      "/swagger",
		OpenAPIPath:        "/openapi.yaml",
	}

	switch cfg.AuthMode {
	case AuthNone, AuthAPIKey:
	default:
		return nil, fmt.Errorf("invalid ANNALES_AUTH_MODE: %s", cfg.AuthMode)
	}

	if cfg.AuthMode == AuthAPIKey {
		cfg.APIKeysFile = getenv("ANNALES_API_KEYS_FILE", "api-keys.yaml")
	}

	if cfg.DisplayLimit < 0 {
		return nil, fmt.Errorf("ANNALES_DISPLAY_LIMIT must not be negative")
	}

	return cfg, nil
}

// CatalogPath is the JSON catalog location. A relative CatalogFile is
// resolved inside DataDir.
func (c *Config) CatalogPath() string {
	if filepath.IsAbs(c.CatalogFile) {
		return c.CatalogFile
	}
	return filepath.Join(c.DataDir, c.CatalogFile)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
