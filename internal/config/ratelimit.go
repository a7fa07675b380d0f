package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig drives the Redis token bucket placed in front of the
// credential endpoints (signup and login).
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip, route or ip_route
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* and clamps values the bucket
// script cannot work with.
func LoadRateLimitConfig() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       max(envInt("RATE_LIMIT_CAPACITY", 10), 1),
		RefillTokens:   max(envInt("RATE_LIMIT_REFILL_TOKENS", 1), 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route")),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "auth:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// the key must outlive a full refill of a drained bucket
	rl.TTL = max(rl.TTL, 5*rl.RefillInterval)
	return rl
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}
