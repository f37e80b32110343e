package ginutil

import "github.com/gin-gonic/gin"

// Rate-limit bucket names used by the handlers.
const (
	RLAuthExchange       = "auth_exchange"
	RLEntitlementRead    = "entitlement_read"
	RLEntitlementIssue   = "entitlement_issue"
	RLEntitlementRefresh = "entitlement_refresh"
)

// RateLimiter is the port the handlers rate-limit through. Implementations
// live in ratelimit/memory and ratelimit/redis.
type RateLimiter interface {
	// AllowNamed reports whether key may proceed in the named bucket.
	AllowNamed(bucket, key string) (bool, error)
}

// AllowNamed applies the limiter keyed by client IP. A nil limiter or a
// limiter error fails open: rate limiting is protection, not a gate the
// service depends on.
func AllowNamed(c *gin.Context, rl RateLimiter, bucket string) bool {
	if rl == nil {
		return true
	}
	ok, err := rl.AllowNamed(bucket, c.ClientIP())
	if err != nil {
		return true
	}
	return ok
}
