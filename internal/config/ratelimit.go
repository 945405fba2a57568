package config

import "strconv"

// RateLimitConfig throttles the public lead endpoints per client IP.
// Capacity is the bucket size (burst); RefillPerSec how many tokens come
// back each second. The defaults allow 5 quick submissions, then roughly
// one every five seconds.
type RateLimitConfig struct {
	Enabled      bool
	Capacity     int
	RefillPerSec float64
	Prefix       string
}

// LoadRateLimitConfig reads the limiter settings from environment variables.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:      envBool("RATE_LIMIT_ENABLED", true),
		Capacity:     envInt("RATE_LIMIT_CAPACITY", 5),
		RefillPerSec: envFloat("RATE_LIMIT_REFILL_PER_SEC", 0.2),
		Prefix:       envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillPerSec <= 0 {
		cfg.RefillPerSec = 0.2
	}
	return cfg
}

func envFloat(k string, d float64) float64 {
	if v := envStr(k, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}
