package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/domhash/domhash"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Fetch     FetchConfig
	Batch     BatchConfig
	Digest    DigestConfig
}

// DigestConfig holds the default digest options.
type DigestConfig struct {
	// Strategy is "ngram" or "chunk".
	Strategy string // default: "ngram"

	BaseChunkSize    int // default: 64
	ScalingFactor    int // default: 100
	MaxUnits         int // default: 10
	NgramSize        int // default: 5
	DigestLength     int // default: 64
	MinContentLength int // default: 20

	// HashPrefixLength truncates unit hashes; 0 keeps full hex.
	HashPrefixLength int // default: 0
}

// Options converts the config section into engine options.
func (d DigestConfig) Options() domhash.Options {
	return domhash.Options{
		Strategy:         domhash.Strategy(d.Strategy),
		BaseChunkSize:    d.BaseChunkSize,
		ScalingFactor:    d.ScalingFactor,
		MaxUnits:         d.MaxUnits,
		NgramSize:        d.NgramSize,
		DigestLength:     d.DigestLength,
		MinContentLength: d.MinContentLength,
		HashPrefixLength: d.HashPrefixLength,
	}
}

// CacheConfig controls the digest cache.
type CacheConfig struct {
	// Enabled toggles memoization of digests.
	Enabled bool // default: true

	// MaxEntries is the maximum number of cached digests.
	MaxEntries int // default: 1000
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 // default: 20 MiB
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 20

	// Burst is the maximum burst size per API key.
	Burst int // default: 40
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// FetchConfig controls fetch-and-digest requests.
type FetchConfig struct {
	// Timeout bounds a single fetch.
	Timeout time.Duration // default: 15s

	// MaxBytes caps the response body read.
	MaxBytes int64 // default: 10 MiB

	// Proxy is an optional http(s) proxy URL.
	Proxy string
}

// BatchConfig controls asynchronous batch digests.
type BatchConfig struct {
	MaxItems    int // default: 100
	Concurrency int // default: 8
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         envOr("DOMHASH_HOST", "0.0.0.0"),
			Port:         envIntOr("DOMHASH_PORT", 8080),
			Mode:         envOr("DOMHASH_MODE", "release"),
			MaxBodyBytes: int64(envIntOr("DOMHASH_MAX_BODY_BYTES", 20<<20)),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DOMHASH_AUTH_ENABLED", false),
			APIKeys: envSliceOr("DOMHASH_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DOMHASH_RATE_RPS", 20.0),
			Burst:             envIntOr("DOMHASH_RATE_BURST", 40),
		},
		Cache: CacheConfig{
			Enabled:    envBoolOr("DOMHASH_CACHE_ENABLED", true),
			MaxEntries: envIntOr("DOMHASH_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("DOMHASH_LOG_LEVEL", "info"),
			Format: envOr("DOMHASH_LOG_FORMAT", "json"),
		},
		Fetch: FetchConfig{
			Timeout:  envDurationOr("DOMHASH_FETCH_TIMEOUT", 15*time.Second),
			MaxBytes: int64(envIntOr("DOMHASH_FETCH_MAX_BYTES", 10<<20)),
			Proxy:    os.Getenv("DOMHASH_FETCH_PROXY"),
		},
		Batch: BatchConfig{
			MaxItems:    envIntOr("DOMHASH_BATCH_MAX_ITEMS", 100),
			Concurrency: envIntOr("DOMHASH_BATCH_CONCURRENCY", 8),
		},
		Digest: DigestConfig{
			Strategy:         envOr("DOMHASH_STRATEGY", string(domhash.StrategyNGram)),
			BaseChunkSize:    envIntOr("DOMHASH_BASE_CHUNK_SIZE", 64),
			ScalingFactor:    envIntOr("DOMHASH_SCALING_FACTOR", 100),
			MaxUnits:         envIntOr("DOMHASH_MAX_UNITS", 10),
			NgramSize:        envIntOr("DOMHASH_NGRAM_SIZE", 5),
			DigestLength:     envIntOr("DOMHASH_DIGEST_LENGTH", 64),
			MinContentLength: envIntOr("DOMHASH_MIN_CONTENT_LENGTH", 20),
			HashPrefixLength: envIntOr("DOMHASH_HASH_PREFIX_LENGTH", 0),
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
