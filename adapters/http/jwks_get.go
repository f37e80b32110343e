package authhttp

import (
	"net/http"

	core "github.com/open-rails/entkit/core"
	jwtkit "github.com/open-rails/entkit/jwt"
)

// JWKSHandler serves the published entitlement key set. Provisions the
// signing key on first request if it has not been used yet.
func JWKSHandler(svc *core.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks, err := svc.JWKS()
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":"server_misconfigured","message":"JWKS unavailable"}`))
			return
		}
		jwtkit.ServeJWKS(w, r, ks)
	})
}
