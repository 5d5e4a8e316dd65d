package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Search    SearchConfig
	Sitemap   SitemapConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig

	// Locale selects the language of user-facing error labels ("en", "zh-TW").
	Locale string // default: "en"
}

// ServerConfig controls the MCP transport.
type ServerConfig struct {
	Name    string // default: "SearchMCP"
	Version string // default: "1.0.0"

	// Transport is "stdio" or "http".
	Transport string // default: "stdio"

	Host string // default: "127.0.0.1"
	Port int    // default: 8080
	Mode string // gin mode: "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Chromium instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to Chromium as --proxy-server.
	Proxy string

	// Stealth injects the go-rod/stealth evasions into every new page.
	Stealth bool // default: false

	// AcceptLanguage is sent as an extra header on every navigation. Empty disables it.
	AcceptLanguage string

	// LaunchTimeout bounds browser start-up.
	LaunchTimeout time.Duration // default: 30s

	// BlockedResourceTypes lists CDP resource types that pages never load.
	// Valid values: "Image", "Stylesheet", "Font", "Media".
	BlockedResourceTypes []string // default: none

	// BlockAds fails requests to well-known ad and tracking domains.
	BlockAds bool // default: false
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// DefaultTimeoutMs is applied when a scrape request carries no timeout.
	DefaultTimeoutMs int // default: 60000
}

// SearchConfig controls the Google Custom Search client.
type SearchConfig struct {
	APIKey   string
	CX       string
	Endpoint string        // default: "https://www.googleapis.com/customsearch/v1"
	Timeout  time.Duration // default: 15s

	// RequestsPerSecond throttles outbound API calls. Zero disables throttling.
	RequestsPerSecond float64 // default: 5

	// CacheTTL keeps identical queries from reaching the API again.
	// Zero disables the cache.
	CacheTTL     time.Duration // default: 0
	CacheEntries int           // default: 256
}

// SitemapConfig controls sitemap downloads.
type SitemapConfig struct {
	Timeout  time.Duration // default: 30s
	MaxBytes int64         // default: 10 MiB
	MaxDepth int           // default: 3
}

// AuthConfig controls API key authentication on the HTTP transport.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting on the HTTP transport.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads an optional .env file and then configuration from environment
// variables with sane defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Name:      envOr("SEARCHMCP_NAME", "SearchMCP"),
			Version:   envOr("SEARCHMCP_VERSION", "1.0.0"),
			Transport: envOr("SEARCHMCP_TRANSPORT", "stdio"),
			Host:      envOr("SEARCHMCP_HOST", "127.0.0.1"),
			Port:      envIntOr("SEARCHMCP_PORT", 8080),
			Mode:      envOr("SEARCHMCP_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:             envBoolOr("SEARCHMCP_HEADLESS", true),
			NoSandbox:            envBoolOr("SEARCHMCP_NO_SANDBOX", false),
			BrowserBin:           os.Getenv("SEARCHMCP_BROWSER_BIN"),
			Proxy:                os.Getenv("SEARCHMCP_PROXY"),
			Stealth:              envBoolOr("SEARCHMCP_STEALTH", false),
			AcceptLanguage:       os.Getenv("SEARCHMCP_ACCEPT_LANGUAGE"),
			LaunchTimeout:        envDurationOr("SEARCHMCP_LAUNCH_TIMEOUT", 30*time.Second),
			BlockedResourceTypes: envSliceOr("SEARCHMCP_BLOCK_RESOURCES", nil),
			BlockAds:             envBoolOr("SEARCHMCP_BLOCK_ADS", false),
		},
		Scraper: ScraperConfig{
			DefaultTimeoutMs: envIntOr("SEARCHMCP_SCRAPE_TIMEOUT_MS", 60000),
		},
		Search: SearchConfig{
			APIKey:            os.Getenv("GOOGLE_API_KEY"),
			CX:                os.Getenv("GOOGLE_CX_ID"),
			Endpoint:          envOr("SEARCHMCP_SEARCH_ENDPOINT", "https://www.googleapis.com/customsearch/v1"),
			Timeout:           envDurationOr("SEARCHMCP_SEARCH_TIMEOUT", 15*time.Second),
			RequestsPerSecond: envFloatOr("SEARCHMCP_SEARCH_RPS", 5.0),
			CacheTTL:          envDurationOr("SEARCHMCP_SEARCH_CACHE_TTL", 0),
			CacheEntries:      envIntOr("SEARCHMCP_SEARCH_CACHE_ENTRIES", 256),
		},
		Sitemap: SitemapConfig{
			Timeout:  envDurationOr("SEARCHMCP_SITEMAP_TIMEOUT", 30*time.Second),
			MaxBytes: int64(envIntOr("SEARCHMCP_SITEMAP_MAX_BYTES", 10<<20)),
			MaxDepth: envIntOr("SEARCHMCP_SITEMAP_MAX_DEPTH", 3),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SEARCHMCP_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SEARCHMCP_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SEARCHMCP_RATE_RPS", 5.0),
			Burst:             envIntOr("SEARCHMCP_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("SEARCHMCP_LOG_LEVEL", "info"),
			Format: envOr("SEARCHMCP_LOG_FORMAT", "json"),
		},
		Locale: envOr("SEARCHMCP_LOCALE", "en"),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
