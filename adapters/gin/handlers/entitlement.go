package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	core "github.com/open-rails/entkit/core"
	"github.com/open-rails/entkit/entitlements"
)

// EntitlementTokenHeader mirrors the entitlement_token body field so clients
// can read the token without parsing the body.
const EntitlementTokenHeader = "x-entitlement-token"

type entitlementResp struct {
	entitlements.View
	EntitlementToken string `json:"entitlement_token"`
}

func writeEntitlement(c *gin.Context, res *core.EntitlementResult) {
	c.Header(EntitlementTokenHeader, res.Token)
	c.JSON(http.StatusOK, entitlementResp{View: res.View, EntitlementToken: res.Token})
}
