package ratelimit

import "time"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	EndpointConfigs []EndpointConfig
}

// DefaultConfig allows 100 requests a minute per client and endpoint.
func DefaultConfig() *Config {
	return NewConfig(100, time.Minute)
}

// NewConfig builds a configuration with the given default limit and the
// stricter per-endpoint limits. A non-positive limit disables limiting.
func NewConfig(limit int, window time.Duration) *Config {
	if limit <= 0 {
		return &Config{Enabled: false}
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    limit,
		DefaultWindow:   window,
		CleanupInterval: 5 * time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Routes that call
// the language model are the strictest.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed operations
		{Path: "/jobs/analyze-all", Method: "POST", Limit: 5, Window: time.Hour, Burst: 1},
		{Path: "/resumes", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/resumes/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/jobs/import", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/jobs/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Credentials
		{Path: "/auth/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},

		// Writes
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/resumes/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/resumes/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
	}
}
