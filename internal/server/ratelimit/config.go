package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/skillbuddy/internal/config"
)

// EndpointConfig limits one method on a path. A Path ending in "/" matches by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	// Limit is the number of requests allowed per Window.
	Limit  int
	Window time.Duration
	// Burst is the bucket capacity. Zero means Limit.
	Burst int
}

// Config holds rate limiting settings.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns an enabled limiter config allowing 1000 requests a minute
// per endpoint plus the stricter per-endpoint tiers.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// FromSettings builds a limiter config from the loaded application settings.
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       ipSet(s.Whitelist),
		Blacklist:       ipSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint tiers. Reads fall through to the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Account creation and login
		{Path: "/api/auth/register", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/api/auth/login", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},

		// XP grants and profile writes
		{Path: "/api/profile/", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/feedback/submit", Method: http.MethodPost, Limit: 20, Window: time.Minute, Burst: 5},

		// Interview sessions
		{Path: "/api/interview/start", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/api/interview/response", Method: http.MethodPost, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/api/interview/end", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
	}
}

func ipSet(ips []string) map[string]bool {
	set := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
