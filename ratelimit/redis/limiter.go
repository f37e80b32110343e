// Package redislimiter is a Redis-backed sliding-window rate limiter for
// multi-node deployments.
package redislimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter counts requests in Redis ZSETs keyed per caller and bucket.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limits map[string]Limit
}

func New(rdb *redis.Client, limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = map[string]Limit{}
	}
	return &Limiter{rdb: rdb, prefix: "entkit:rl:", limits: limits}
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

// AllowNamed implements ginutil.RateLimiter.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	ctx := context.Background()
	lim := l.get(bucket)
	now := time.Now().UnixMilli()
	start := now - lim.Window.Milliseconds()
	limitKey := l.prefix + key + ":" + bucket
	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, limitKey, redis.Z{Score: float64(now), Member: now})
	pipe.ZRemRangeByScore(ctx, limitKey, "0", fmt.Sprintf("%d", start))
	countCmd := pipe.ZCard(ctx, limitKey)
	pipe.Expire(ctx, limitKey, lim.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	count, err := countCmd.Result()
	if err != nil {
		return false, err
	}
	if count > int64(lim.Limit) {
		l.rdb.ZRem(ctx, limitKey, now)
		return false, nil
	}
	return true, nil
}
