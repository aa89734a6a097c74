package config

import (
	"testing"
	"time"
)

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,,POST")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Errorf("missing method %s", want)
		}
	}
	if len(m) != 3 {
		t.Errorf("expected 3 methods, got %d", len(m))
	}
}

func TestParseDur(t *testing.T) {
	if d := parseDur("45s"); d != 45*time.Second {
		t.Errorf("parseDur(45s) = %v", d)
	}
	if d := parseDur("garbage"); d != time.Second {
		t.Errorf("invalid duration should fall back to 1s, got %v", d)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-2")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("capacity = %d, want clamp to 1", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Errorf("refill tokens = %d, want clamp to 1", cfg.RefillTokens)
	}
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Errorf("ttl = %v, want at least %v", cfg.TTL, 5*cfg.RefillInterval)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG_X", "on")
	if !envBool("FLAG_X", false) {
		t.Error("expected on -> true")
	}
	t.Setenv("FLAG_X", "0")
	if envBool("FLAG_X", true) {
		t.Error("expected 0 -> false")
	}
	t.Setenv("FLAG_X", "maybe")
	if !envBool("FLAG_X", true) {
		t.Error("unparseable value should keep default")
	}
}
