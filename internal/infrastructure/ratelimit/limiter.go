package ratelimit

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RateLimitInfo captures limiter response metadata.
type RateLimitInfo struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter defines common interface.
type Limiter interface {
	Allow(ctx context.Context, key string) (RateLimitInfo, error)
}

// idleTTL is how long an untouched bucket is kept before it is pruned.
const idleTTL = 10 * time.Minute

// MemoryLimiter implements a token bucket per key, refilled at limit tokens per minute.
type MemoryLimiter struct {
	limit     int
	burst     int
	store     map[string]*bucket
	mu        sync.Mutex
	now       func() time.Time
	lastPrune time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewMemoryLimiter builds RAM limiter.
func NewMemoryLimiter(limit, burst int) *MemoryLimiter {
	if limit <= 0 {
		limit = 60
	}
	if burst < 0 {
		burst = 0
	}
	return &MemoryLimiter{
		limit: limit,
		burst: burst,
		store: make(map[string]*bucket),
		now:   time.Now,
	}
}

// Allow implements limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (RateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.pruneLocked(now)
	capacity := float64(m.limit + m.burst)
	reset := now.Add(time.Minute)

	b, ok := m.store[key]
	if !ok {
		b = &bucket{tokens: capacity, last: now}
		m.store[key] = b
	} else {
		elapsed := now.Sub(b.last).Minutes()
		b.tokens = min(capacity, b.tokens+elapsed*float64(m.limit))
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return RateLimitInfo{Allowed: true, Limit: m.limit, Remaining: int(b.tokens), Reset: reset}, nil
	}
	return RateLimitInfo{Allowed: false, Limit: m.limit, Remaining: 0, Reset: reset}, nil
}

func (m *MemoryLimiter) pruneLocked(now time.Time) {
	if now.Sub(m.lastPrune) < idleTTL {
		return
	}
	for key, b := range m.store {
		if now.Sub(b.last) > idleTTL {
			delete(m.store, key)
		}
	}
	m.lastPrune = now
}

// RedisLimiter counts requests per fixed one-minute window, shared across replicas.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	prefix string
}

// NewRedisLimiter builds redis limiter.
func NewRedisLimiter(client *redis.Client, limit int, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, prefix: prefix}
}

// Allow implements limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (RateLimitInfo, error) {
	redisKey := r.prefix + ":" + key
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, time.Minute)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitInfo{}, err
	}
	reset := time.Now().Add(time.Minute)
	if d := ttl.Val(); d > 0 {
		reset = time.Now().Add(d)
	}
	count := int(incr.Val())
	if count <= r.limit {
		return RateLimitInfo{Allowed: true, Limit: r.limit, Remaining: r.limit - count, Reset: reset}, nil
	}
	return RateLimitInfo{Allowed: false, Limit: r.limit, Remaining: 0, Reset: reset}, nil
}
