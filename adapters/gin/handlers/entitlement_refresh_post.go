package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/ginutil"
	core "github.com/open-rails/entkit/core"
)

// HandleEntitlementRefreshPOST re-persists the record unchanged and returns
// the recomputed view. Reserved as the hook point for a billing-provider
// webhook; it never alters trial timestamps or the lifetime flag.
func HandleEntitlementRefreshPOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLEntitlementRefresh) {
			ginutil.TooMany(c)
			return
		}
		p, ok := ginutil.Principal(c)
		if !ok {
			ginutil.Unauthorized(c, "missing principal")
			return
		}
		res, err := svc.RefreshEntitlement(c.Request.Context(), p.ID)
		if err != nil {
			ginutil.Err(c, err)
			return
		}
		writeEntitlement(c, res)
	}
}
