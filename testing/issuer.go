// Package testing provides a mock identity provider for testing applications
// that exchange identity assertions with entkit. It runs an HTTP server that
// serves JWKS and signs assertions that validate against that key set, so
// integration tests never need a real provider.
//
// Example usage:
//
//	idp := testing.NewIdentityProvider("client-123")
//	defer idp.Close()
//
//	verifier := oidckit.NewAssertionVerifier(
//		idp.Issuer(), []string{idp.Audience()}, oidckit.StaticKeySet{Set: idp.KeySet()})
//	assertion := idp.CreateAssertion("google-sub-1", "test@example.com", nil)
package testing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	jwtkit "github.com/open-rails/entkit/jwt"
)

// IdentityProvider is a complete mock assertion issuer. It serves JWKS at
// /.well-known/jwks.json and signs assertions with the matching private key.
type IdentityProvider struct {
	server   *httptest.Server
	signer   *jwtkit.RSASigner
	audience string
}

// NewIdentityProvider creates a mock provider issuing assertions for the
// given audience. Call Close when done.
func NewIdentityProvider(audience string) *IdentityProvider {
	signer, err := jwtkit.NewRSASigner(2048, "idp-key-1")
	if err != nil {
		panic("failed to create RSA signer: " + err.Error())
	}

	idp := &IdentityProvider{signer: signer, audience: audience}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", idp.handleJWKS)
	idp.server = httptest.NewServer(mux)
	return idp
}

// Issuer returns the provider's issuer value (its base URL).
func (ip *IdentityProvider) Issuer() string { return ip.server.URL }

// JWKSURL returns the served key set endpoint.
func (ip *IdentityProvider) JWKSURL() string { return ip.server.URL + "/.well-known/jwks.json" }

// Audience returns the audience this provider issues for.
func (ip *IdentityProvider) Audience() string { return ip.audience }

// Close shuts down the test server.
func (ip *IdentityProvider) Close() {
	if ip.server != nil {
		ip.server.Close()
	}
}

// KeySet returns the provider's public keys as a jwk.Set, for wiring into a
// verifier without going over the network.
func (ip *IdentityProvider) KeySet() jwk.Set {
	key, err := jwk.FromRaw(ip.signer.PublicKey())
	if err != nil {
		panic("failed to build jwk: " + err.Error())
	}
	_ = key.Set(jwk.KeyIDKey, ip.signer.KID())
	_ = key.Set(jwk.AlgorithmKey, ip.signer.Algorithm())
	set := jwk.NewSet()
	_ = set.AddKey(key)
	return set
}

func (ip *IdentityProvider) handleJWKS(w http.ResponseWriter, r *http.Request) {
	k := jwtkit.RSAPublicToJWK(ip.signer.PublicKey(), ip.signer.KID(), ip.signer.Algorithm())
	jwtkit.ServeJWKS(w, r, jwtkit.JWKS{Keys: []jwtkit.JWK{k}})
}

// CreateAssertion signs an identity assertion for the given subject. Extra
// claims are merged over the standard set (iss, aud, sub, email, iat, exp),
// so tests can override any of them, e.g. a wrong audience or a past expiry.
func (ip *IdentityProvider) CreateAssertion(subject, email string, extra map[string]any) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": ip.Issuer(),
		"aud": ip.audience,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	for k, v := range extra {
		claims[k] = v
	}
	token, err := ip.signer.Sign(context.Background(), claims)
	if err != nil {
		panic("failed to sign assertion: " + err.Error())
	}
	return token
}
