package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// clock is a manually advanced time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *clock) {
	t.Helper()
	c := newClock()
	l := NewLimiter(cfg, WithClock(c.Now))
	t.Cleanup(l.Stop)
	return l, c
}

func TestBucket_TakeAndRefill(t *testing.T) {
	now := newClock().Now()
	b := newBucket(2, 1, now) // 2 tokens, one per second

	if !b.take(now) || !b.take(now) {
		t.Fatal("a full bucket should allow its capacity")
	}
	if b.take(now) {
		t.Fatal("an empty bucket should deny")
	}

	now = now.Add(500 * time.Millisecond)
	if b.take(now) {
		t.Error("half a token is not enough")
	}
	now = now.Add(500 * time.Millisecond)
	if !b.take(now) {
		t.Error("one second should refill one token")
	}

	now = now.Add(time.Hour)
	if remaining, _ := b.status(now); remaining != 2 {
		t.Errorf("refill should stop at capacity, got %d", remaining)
	}
}

func TestBucket_StatusResetTime(t *testing.T) {
	now := newClock().Now()
	b := newBucket(10, 2, now)
	for i := 0; i < 4; i++ {
		b.take(now)
	}

	remaining, reset := b.status(now)
	if remaining != 6 {
		t.Errorf("Expected 6 remaining, got %d", remaining)
	}
	if want := now.Add(2 * time.Second); !reset.Equal(want) {
		t.Errorf("Expected reset at %v, got %v", want, reset)
	}
}

func TestLimiter_DefaultTier(t *testing.T) {
	l, c := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Minute})

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", fmt.Sprintf("/versions/v%d", i), "GET")
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if info.Tier != defaultTier || info.Limit != 3 || info.Remaining != 2-i {
			t.Errorf("request %d: unexpected info %+v", i, info)
		}
	}

	allowed, info := l.Allow("10.0.0.1", "/versions/other", "GET")
	if allowed {
		t.Fatal("paths in one tier share a bucket")
	}
	if info.RetryAfter != 20*time.Second {
		t.Errorf("Expected retry after 20s, got %v", info.RetryAfter)
	}

	if allowed, _ := l.Allow("10.0.0.2", "/versions", "GET"); !allowed {
		t.Error("other clients have their own bucket")
	}

	c.Advance(20 * time.Second)
	if allowed, _ := l.Allow("10.0.0.1", "/versions", "GET"); !allowed {
		t.Error("one token should be back after a third of the window")
	}
}

func TestLimiter_EndpointTiers(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	// export allows a burst of 3 across every version
	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("c", fmt.Sprintf("/versions/v%d/export", i), "POST")
		if !allowed {
			t.Fatalf("export %d should be allowed", i)
		}
		if info.Tier != "POST /versions/*/export" || info.Limit != 30 {
			t.Errorf("unexpected export info %+v", info)
		}
	}
	if allowed, _ := l.Allow("c", "/versions/v9/export", "POST"); allowed {
		t.Error("fourth export should exceed the burst")
	}

	// other tiers are unaffected
	if allowed, info := l.Allow("c", "/versions/v1/name", "PUT"); !allowed || info.Limit != 300 {
		t.Errorf("PUT should use the edit tier, got %+v", info)
	}
	if allowed, info := l.Allow("c", "/versions", "GET"); !allowed || info.Tier != defaultTier {
		t.Errorf("GET should use the default tier, got %+v", info)
	}
	if allowed, info := l.Allow("c", "/health", "GET"); !allowed || info.Limit != 0 {
		t.Errorf("health should be unlimited, got %+v", info)
	}
}

func TestLimiter_AllowlistAndDenylist(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Allowlist:     map[string]bool{"127.0.0.1": true},
		Denylist:      map[string]bool{"192.168.1.1": true},
	})

	for i := 0; i < 5; i++ {
		if allowed, _ := l.Allow("127.0.0.1", "/versions", "GET"); !allowed {
			t.Fatal("allowlisted client should never be limited")
		}
		if allowed, _ := l.Allow("192.168.1.1", "/health", "GET"); allowed {
			t.Fatal("denylisted client should always be denied")
		}
	}
	if n := l.Buckets(); n != 0 {
		t.Errorf("listed clients should not get buckets, got %d", n)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("c", "/versions", "POST"); !allowed {
			t.Fatal("a disabled limiter allows everything")
		}
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l, c := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTTL:       10 * time.Minute,
	})

	l.Allow("old", "/versions", "GET")
	c.Advance(6 * time.Minute)
	l.Allow("recent", "/versions", "GET")
	if n := l.Buckets(); n != 2 {
		t.Fatalf("Expected 2 buckets, got %d", n)
	}

	c.Advance(5 * time.Minute)
	l.Sweep()
	if n := l.Buckets(); n != 1 {
		t.Errorf("idle bucket should be dropped, got %d buckets", n)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/versions", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowed)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()
	l.Stop()

	allowed, info := l.Allow("c", "/versions", "GET")
	if !allowed || info.Limit != 1000 {
		t.Errorf("nil config should allow 1000 per minute, got %+v", info)
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_DEFAULT_LIMIT":  "42",
		"RATE_LIMIT_DEFAULT_WINDOW": "30s",
		"RATE_LIMIT_IDLE_TTL":       "bogus",
		"RATE_LIMIT_ALLOWLIST":      " 10.0.0.1, ,10.0.0.2",
	}
	cfg := LoadConfig(func(k string) string { return env[k] })

	if !cfg.Enabled || cfg.DefaultLimit != 42 || cfg.DefaultWindow != 30*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.IdleTTL != time.Hour {
		t.Errorf("unparsable duration should keep the default, got %v", cfg.IdleTTL)
	}
	if len(cfg.Allowlist) != 2 || !cfg.Allowlist["10.0.0.2"] {
		t.Errorf("unexpected allowlist %v", cfg.Allowlist)
	}
	if len(cfg.Denylist) != 0 {
		t.Errorf("unexpected denylist %v", cfg.Denylist)
	}

	env["RATE_LIMIT_ENABLED"] = "false"
	if LoadConfig(func(k string) string { return env[k] }).Enabled {
		t.Error("RATE_LIMIT_ENABLED=false should disable limiting")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()
	tests := []struct {
		path, method string
		want         string // tier key, "" for no match
	}{
		{"/versions", "POST", "POST /versions"},
		{"/versions/import", "POST", "POST /versions/import"},
		{"/versions/abc/export", "POST", "POST /versions/*/export"},
		{"/versions/abc/export/batch", "POST", "POST /versions/*/export/batch"},
		{"/versions//export", "POST", "POST /versions/"},
		{"/versions/abc/duplicate", "POST", "POST /versions/"},
		{"/versions/abc", "DELETE", "DELETE /versions/"},
		{"/versions/abc/gallery", "GET", "GET /versions/*/gallery"},
		{"/versions/abc", "GET", ""},
		{"/health", "GET", "GET /health"},
	}
	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("%s %s: expected no match, got %s", tt.method, tt.path, got.Key())
		case tt.want != "" && (got == nil || got.Key() != tt.want):
			t.Errorf("%s %s: expected %s, got %v", tt.method, tt.path, tt.want, got)
		}
	}
}
