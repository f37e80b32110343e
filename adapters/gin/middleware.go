// Package authgin adapts entkit's core service to gin.
package authgin

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/ginutil"
	"github.com/open-rails/entkit/session"
)

// AuthRequired gates a route group on a valid session token. It extracts the
// bearer token, verifies it, and attaches the resolved principal for
// downstream handlers. Any verification failure is a 401 carrying the
// underlying reason.
func AuthRequired(verifier *session.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			ginutil.Unauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		p, err := verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, session.ErrNoSecret) {
				ginutil.Unauthorized(c, "JWT not configured")
				return
			}
			ginutil.Unauthorized(c, "invalid token: "+err.Error())
			return
		}
		ginutil.SetPrincipal(c, p)
		c.Next()
	}
}
