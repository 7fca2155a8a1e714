package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for requests matching Path and Method.
// A Path ending in "/" matches every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // Requests per Window
	Window time.Duration
	Burst  int // Defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused bucket is kept
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig reads the RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     getEnvDuration("RATE_LIMIT_IDLE_TIMEOUT", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Routes that call the
// LLM several times are the most expensive.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Several LLM calls per request
		{Path: "/v1/session/rewrites", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/v1/session/enhance", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/v1/session/match", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/v1/session/portfolio", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Audio uploads
		{Path: "/v1/session/interview/voice", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/v1/session/speech", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// PDF rendering in Chrome
		{Path: "/v1/session/export", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Other single LLM calls
		{Path: "/v1/session/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Session creation
		{Path: "/v1/sessions", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
	}
}

// MatchEndpoint returns the config for a request. Exact paths win over
// prefixes. GET /health is unlimited. Nil means the default limit applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
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
