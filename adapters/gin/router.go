package authgin

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/entkit/adapters/gin/handlers"
	"github.com/open-rails/entkit/adapters/ginutil"
	authhttp "github.com/open-rails/entkit/adapters/http"
	core "github.com/open-rails/entkit/core"
	"github.com/open-rails/entkit/session"
)

// Routes mounts the service under /v1 plus the well-known key set endpoint.
// The entitlement group is gated by AuthRequired; the identity exchange and
// JWKS endpoints are public.
func Routes(r *gin.Engine, svc *core.Service, verifier *session.Verifier, rl ginutil.RateLimiter) {
	r.GET("/.well-known/jwks.json", gin.WrapH(authhttp.JWKSHandler(svc)))

	v1 := r.Group("/v1")
	v1.GET("/health", handlers.HandleHealthGET())

	auth := v1.Group("/auth")
	auth.POST("/google", handlers.HandleAuthGooglePOST(svc, rl))
	auth.POST("/google/code", handlers.HandleAuthGoogleCodePOST(svc, rl))

	ent := v1.Group("/entitlement")
	ent.Use(AuthRequired(verifier))
	ent.GET("", handlers.HandleEntitlementGET(svc, rl))
	ent.POST("/issue", handlers.HandleEntitlementIssuePOST(svc, rl))
	ent.POST("/refresh", handlers.HandleEntitlementRefreshPOST(svc, rl))
}
