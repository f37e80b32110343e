// Package memorylimiter is an in-memory sliding-window rate limiter, the
// single-node fallback when Redis is not configured.
package memorylimiter

import (
	"fmt"
	"sync"
	"time"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// DefaultLimits covers the service's buckets: identity exchange is the
// abuse-prone endpoint, entitlement reads are cheap.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		"auth_exchange": {Limit: 20, Window: time.Minute},
		"default":       {Limit: 120, Window: time.Minute},
	}
}

type bucketState struct {
	// timestamps holds request times in Unix ms, newest last.
	timestamps []int64
}

// Limiter is an in-memory sliding-window rate limiter.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	buckets map[string]*bucketState
}

// New constructs a limiter with the provided per-bucket limits. A "default"
// entry covers unnamed buckets.
func New(limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = map[string]Limit{}
	}
	return &Limiter{
		limits:  limits,
		buckets: make(map[string]*bucketState),
	}
}

func (l *Limiter) get(bucket string) Limit {
	if v, ok := l.limits[bucket]; ok {
		return v
	}
	if v, ok := l.limits["default"]; ok {
		return v
	}
	return Limit{Limit: 100, Window: time.Minute}
}

// AllowNamed implements ginutil.RateLimiter. It uses a sliding window over
// the configured duration, pruning expired entries on each call and removing
// empty buckets to avoid unbounded memory growth.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}

	lim := l.get(bucket)
	nowMs := time.Now().UnixMilli()
	windowStart := nowMs - lim.Window.Milliseconds()
	limitKey := fmt.Sprintf("%s:%s", key, bucket)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[limitKey]
	if !ok {
		b = &bucketState{}
		l.buckets[limitKey] = b
	}

	ts := b.timestamps
	pruneIdx := 0
	for pruneIdx < len(ts) && ts[pruneIdx] < windowStart {
		pruneIdx++
	}
	if pruneIdx > 0 {
		ts = ts[pruneIdx:]
	}

	if len(ts) >= lim.Limit {
		// Deny without recording this attempt.
		b.timestamps = ts
		if len(ts) == 0 {
			delete(l.buckets, limitKey)
		}
		return false, nil
	}

	ts = append(ts, nowMs)
	b.timestamps = ts
	return true, nil
}
