package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/ginutil"
	core "github.com/open-rails/entkit/core"
)

// HandleAuthGooglePOST exchanges a Google id_token for a session token, the
// upserted user, and an entitlement token.
func HandleAuthGooglePOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type googleAuthReq struct {
		IDToken string `json:"id_token"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLAuthExchange) {
			ginutil.TooMany(c)
			return
		}
		var req googleAuthReq
		if err := c.ShouldBindJSON(&req); err != nil {
			ginutil.BadRequest(c, "invalid_request", "invalid request body")
			return
		}
		if strings.TrimSpace(req.IDToken) == "" {
			ginutil.BadRequest(c, "missing_id_token", "id_token is required")
			return
		}
		res, err := svc.ExchangeIdentity(c.Request.Context(), req.IDToken)
		if err != nil {
			ginutil.Err(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
