// Package config loads demo application settings from the environment.
// SDK credentials (ALLSCREENSHOTS_*) are read separately by
// allscreenshots.NewFromEnv; everything here carries the DEMO_ prefix.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all demo application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Compare   CompareConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication for the demo endpoints.
type AuthConfig struct {
	// APIKeys is the list of accepted keys. Empty means open access.
	APIKeys []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client.
	Burst int // default: 10
}

// CacheConfig controls the capture response cache.
type CacheConfig struct {
	// Enabled toggles the cache entirely.
	Enabled bool // default: true

	// MaxEntries is the maximum number of cached captures.
	MaxEntries int // default: 1000

	// TTL is how long a cached capture stays valid.
	TTL time.Duration // default: 15m
}

// CompareConfig controls the multi-device compare endpoint.
type CompareConfig struct {
	// MaxConcurrent bounds the captures running at once per request.
	MaxConcurrent int // default: 3

	// Devices is the preset matrix used when a request names none.
	// default: ["Desktop HD", "iPhone 14", "iPad"]
	Devices []string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DEMO_HOST", "0.0.0.0"),
			Port: envIntOr("DEMO_PORT", 8080),
			Mode: envOr("DEMO_MODE", "release"),
		},
		Auth: AuthConfig{
			APIKeys: envSliceOr("DEMO_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DEMO_RATE_RPS", 5.0),
			Burst:             envIntOr("DEMO_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			Enabled:    envBoolOr("DEMO_CACHE_ENABLED", true),
			MaxEntries: envIntOr("DEMO_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("DEMO_CACHE_TTL", 15*time.Minute),
		},
		Compare: CompareConfig{
			MaxConcurrent: envIntOr("DEMO_COMPARE_CONCURRENCY", 3),
			Devices: envSliceOr("DEMO_COMPARE_DEVICES", []string{
				"Desktop HD", "iPhone 14", "iPad",
			}),
		},
		Log: LogConfig{
			Level:  envOr("DEMO_LOG_LEVEL", "info"),
			Format: envOr("DEMO_LOG_FORMAT", "json"),
		},
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
