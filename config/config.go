package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Fetch  FetchConfig
	Log    LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout is how long in-flight requests get to drain.
	ShutdownTimeout time.Duration // default: 5s
}

// FetchConfig controls the outbound page fetch.
type FetchConfig struct {
	// Timeout is the deadline for fetching the target page.
	Timeout time.Duration // default: 10s

	// UserAgent overrides the desktop-browser User-Agent.
	UserAgent string

	// Proxy is an optional http:// or socks5:// proxy URL for outbound requests.
	Proxy string

	// MaxBodyBytes caps how much of the target page is read.
	MaxBodyBytes int64 // default: 10 MiB
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
			Host:            envOr("THEMESCOUT_HOST", "0.0.0.0"),
			Port:            envIntOr("THEMESCOUT_PORT", 8080),
			Mode:            envOneOf("THEMESCOUT_MODE", "release", "debug", "release", "test"),
			ShutdownTimeout: envDurationOr("THEMESCOUT_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("THEMESCOUT_FETCH_TIMEOUT", 10*time.Second),
			UserAgent:    os.Getenv("THEMESCOUT_USER_AGENT"),
			Proxy:        os.Getenv("THEMESCOUT_PROXY"),
			MaxBodyBytes: envInt64Or("THEMESCOUT_MAX_BODY_BYTES", 10<<20),
		},
		Log: LogConfig{
			Level:  envOr("THEMESCOUT_LOG_LEVEL", "info"),
			Format: envOr("THEMESCOUT_LOG_FORMAT", "json"),
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

// envOneOf returns the env value if it is one of allowed, else fallback.
func envOneOf(key, fallback string, allowed ...string) string {
	v := os.Getenv(key)
	for _, a := range allowed {
		if v == a {
			return v
		}
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

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
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
