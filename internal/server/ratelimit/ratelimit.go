// Package ratelimit provides per-client token bucket rate limiting for the HTTP API.
// Requests are counted per endpoint tier, so every version id behind
// "/versions/*/export" draws from the same bucket.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket: capacity tokens, refilled continuously at rate per second
type bucket struct {
	capacity float64
	rate     float64
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		last:     now,
		lastSeen: now,
	}
}

func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
	}
	b.last = now
}

// take consumes one token when available
func (b *bucket) take(now time.Time) bool {
	b.refill(now)
	b.lastSeen = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// status reports whole tokens left and when the bucket will be full again
func (b *bucket) status(now time.Time) (int, time.Time) {
	b.refill(now)
	if b.tokens >= b.capacity || b.rate <= 0 {
		return int(b.tokens), now
	}
	missing := b.capacity - b.tokens
	return int(b.tokens), now.Add(time.Duration(missing / b.rate * float64(time.Second)))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an untouched bucket is kept; zero means one hour
	IdleTTL         time.Duration
	Allowlist       map[string]bool
	Denylist        map[string]bool
	EndpointConfigs []EndpointConfig
}

// defaultTier names the bucket of requests no endpoint config matches
const defaultTier = "default"

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket // client + tier -> bucket
	ticker  *time.Ticker
	stop    chan struct{}
	once    sync.Once
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter. A nil config allows 1000 requests per minute per client
// and tier.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.ticker = time.NewTicker(config.CleanupInterval)
		l.stop = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow counts a request of clientID against the tier of path and method.
// Limit is zero in the returned Info when the request is not limited at all.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Allowlist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Denylist[clientID] {
		return false, Info{}
	}

	tier, ep := defaultTier, EndpointConfig{
		Limit:  l.config.DefaultLimit,
		Window: l.config.DefaultWindow,
	}
	if matched := MatchEndpoint(path, method, l.config.EndpointConfigs); matched != nil {
		tier, ep = matched.Key(), *matched
	}
	if ep.Limit <= 0 || ep.Window <= 0 {
		return true, Info{Allowed: true, Tier: tier}
	}

	now := l.now()
	l.mu.Lock()
	key := clientID + "|" + tier
	b, ok := l.buckets[key]
	if !ok {
		capacity := ep.Burst
		if capacity <= 0 {
			capacity = ep.Limit
		}
		b = newBucket(capacity, float64(ep.Limit)/ep.Window.Seconds(), now)
		l.buckets[key] = b
	}
	allowed := b.take(now)
	remaining, reset := b.status(now)
	var retry time.Duration
	if !allowed && b.rate > 0 {
		// time until one whole token is back
		retry = time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	}
	l.mu.Unlock()

	return allowed, Info{
		Allowed:    allowed,
		Tier:       tier,
		Limit:      ep.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retry,
	}
}

// Buckets returns the number of live buckets
func (l *Limiter) Buckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}

// Sweep drops buckets idle for longer than IdleTTL
func (l *Limiter) Sweep() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() {
		if l.ticker != nil {
			l.ticker.Stop()
		}
		if l.stop != nil {
			close(l.stop)
		}
	})
}
