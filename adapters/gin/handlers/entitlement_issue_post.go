package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/ginutil"
	core "github.com/open-rails/entkit/core"
)

// HandleEntitlementIssuePOST seeds the 30-day trial for first-time callers.
// Idempotent: an existing record is returned unchanged, never re-seeded.
func HandleEntitlementIssuePOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLEntitlementIssue) {
			ginutil.TooMany(c)
			return
		}
		p, ok := ginutil.Principal(c)
		if !ok {
			ginutil.Unauthorized(c, "missing principal")
			return
		}
		res, err := svc.IssueEntitlement(c.Request.Context(), p.ID)
		if err != nil {
			ginutil.Err(c, err)
			return
		}
		writeEntitlement(c, res)
	}
}
