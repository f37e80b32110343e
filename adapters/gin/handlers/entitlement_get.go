package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/ginutil"
	core "github.com/open-rails/entkit/core"
)

// HandleEntitlementGET returns the caller's current entitlement view.
func HandleEntitlementGET(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLEntitlementRead) {
			ginutil.TooMany(c)
			return
		}
		p, ok := ginutil.Principal(c)
		if !ok {
			ginutil.Unauthorized(c, "missing principal")
			return
		}
		res, err := svc.Entitlement(c.Request.Context(), p.ID)
		if err != nil {
			ginutil.Err(c, err)
			return
		}
		writeEntitlement(c, res)
	}
}
