// Package ginutil holds shared response helpers for the gin adapters.
package ginutil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/core"
)

// errBody is the JSON error envelope: {code, message}.
type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func BadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errBody{Code: code, Message: message})
}

func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errBody{Code: "unauthorized", Message: message})
}

func ServerErr(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, errBody{Code: code, Message: message})
}

func TooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errBody{Code: "rate_limited", Message: "too many requests"})
}

// Err translates a core error into the JSON envelope. Internal errors get a
// generic message so details never leak to callers.
func Err(c *gin.Context, err error) {
	if e, ok := core.AsError(err); ok {
		c.AbortWithStatusJSON(core.HTTPStatus(e.Kind), errBody{Code: e.Code, Message: e.Message()})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, errBody{Code: "internal", Message: "internal error"})
}
