package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for one endpoint tier.
type EndpointConfig struct {
	Path   string        // Exact path, "*" segment pattern, or prefix ending with "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Key identifies the tier's bucket
func (e EndpointConfig) Key() string {
	return e.Method + " " + e.Path
}

// LoadConfig reads RATE_LIMIT_* variables through getenv. Unset or unparsable values
// keep their defaults.
func LoadConfig(getenv func(string) string) *Config {
	env := envReader(getenv)
	if !env.bool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.int("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Allowlist:       parseIPList(getenv("RATE_LIMIT_ALLOWLIST")),
		Denylist:        parseIPList(getenv("RATE_LIMIT_DENYLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: Browser-backed exports and gallery renders (strictest limits)
		{Path: "/versions/*/export", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/versions/*/export/batch", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/versions/*/gallery", Method: "GET", Limit: 60, Window: time.Hour, Burst: 5},

		// Tier 2: Write operations (moderate limits)
		{Path: "/versions", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/versions/import", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/versions/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/versions/", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/versions/", Method: "PATCH", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/versions/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: Reads and previews use the default limit; /health is never limited
	}
}

type envReader func(string) string

func (e envReader) int(key string, def int) int {
	if n, err := strconv.Atoi(e(key)); err == nil {
		return n
	}
	return def
}

func (e envReader) bool(key string, def bool) bool {
	if b, err := strconv.ParseBool(e(key)); err == nil {
		return b
	}
	return def
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e(key)); err == nil {
		return d
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
