package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/ginutil"
	core "github.com/open-rails/entkit/core"
)

// HandleAuthGoogleCodePOST accepts an OAuth authorization code from native
// clients that cannot present an id_token directly. The exchanged id_token
// goes through the same verification path as HandleAuthGooglePOST.
func HandleAuthGoogleCodePOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type googleCodeReq struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLAuthExchange) {
			ginutil.TooMany(c)
			return
		}
		var req googleCodeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			ginutil.BadRequest(c, "invalid_request", "invalid request body")
			return
		}
		res, err := svc.ExchangeCode(c.Request.Context(), strings.TrimSpace(req.Code), strings.TrimSpace(req.RedirectURI))
		if err != nil {
			ginutil.Err(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
