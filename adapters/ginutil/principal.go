package ginutil

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/session"
)

const principalKey = "auth.principal"

// SetPrincipal attaches the authenticated caller for downstream handlers.
func SetPrincipal(c *gin.Context, p session.Principal) {
	c.Set(principalKey, p)
}

// Principal returns the caller set by the auth middleware.
func Principal(c *gin.Context) (session.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return session.Principal{}, false
	}
	p, ok := v.(session.Principal)
	return p, ok
}
