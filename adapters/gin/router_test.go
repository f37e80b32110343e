package authgin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	authgin "github.com/open-rails/entkit/adapters/gin"
	core "github.com/open-rails/entkit/core"
	"github.com/open-rails/entkit/entitlements"
	jwtkit "github.com/open-rails/entkit/jwt"
	oidckit "github.com/open-rails/entkit/oidc"
	"github.com/open-rails/entkit/session"
	memorystore "github.com/open-rails/entkit/storage/memory"
	enttesting "github.com/open-rails/entkit/testing"
)

const (
	testSecret = "test-secret"
	testIssuer = "identity-entitlements-api"
)

func newRouter(t *testing.T, idp *enttesting.IdentityProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := core.NewService(core.ServiceConfig{
		Verifier:  oidckit.NewAssertionVerifier(idp.Issuer(), []string{idp.Audience()}, oidckit.StaticKeySet{Set: idp.KeySet()}),
		Users:     memorystore.NewUserStore(),
		Ents:      entitlements.NewService(memorystore.NewEntitlementStore()),
		Sessions:  session.NewIssuer(testSecret, testIssuer),
		EntTokens: entitlements.NewTokenIssuer(jwtkit.NewKeyProvider(jwtkit.KeyConfig{}), testIssuer),
	})

	r := gin.New()
	authgin.Routes(r, svc, session.NewVerifier(testSecret, testIssuer), nil)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityExchangeAndEntitlementFlow(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()
	r := newRouter(t, idp)

	// Exchange an identity assertion for a session token.
	w := postJSON(t, r, "/v1/auth/google", map[string]string{
		"id_token": idp.CreateAssertion("g-sub-1", "u@example.com", nil),
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("exchange status = %d body=%s", w.Code, w.Body.String())
	}
	var exchange struct {
		Token            string `json:"token"`
		EntitlementToken string `json:"entitlement_token"`
		User             struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &exchange); err != nil {
		t.Fatal(err)
	}
	if exchange.Token == "" || exchange.EntitlementToken == "" || exchange.User.ID == "" {
		t.Fatalf("incomplete exchange response: %s", w.Body.String())
	}

	auth := map[string]string{"Authorization": "Bearer " + exchange.Token}

	// Seed the trial.
	w = postJSON(t, r, "/v1/entitlement/issue", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("issue status = %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("x-entitlement-token") == "" {
		t.Fatal("missing x-entitlement-token header")
	}
	var issued entitlements.View
	if err := json.Unmarshal(w.Body.Bytes(), &issued); err != nil {
		t.Fatal(err)
	}
	if issued.Tier != entitlements.TierTrial || issued.TrialStartedAt <= 0 {
		t.Fatalf("issued view = %+v", issued)
	}

	// Read it back with the session token.
	req := httptest.NewRequest(http.MethodGet, "/v1/entitlement", nil)
	req.Header.Set("Authorization", "Bearer "+exchange.Token)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("read status = %d body=%s", w2.Code, w2.Body.String())
	}
	var read entitlements.View
	if err := json.Unmarshal(w2.Body.Bytes(), &read); err != nil {
		t.Fatal(err)
	}
	if read.TrialStartedAt != issued.TrialStartedAt {
		t.Fatalf("read view diverged: %+v vs %+v", read, issued)
	}
}

func TestEntitlementEndpointsRequireBearer(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()
	r := newRouter(t, idp)

	req := httptest.NewRequest(http.MethodGet, "/v1/entitlement", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/entitlement", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// An entitlement token must never be accepted as a session token.
func TestEntitlementTokenRejectedAsSessionToken(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()
	r := newRouter(t, idp)

	w := postJSON(t, r, "/v1/auth/google", map[string]string{
		"id_token": idp.CreateAssertion("g-sub-1", "u@example.com", nil),
	}, nil)
	var exchange struct {
		EntitlementToken string `json:"entitlement_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &exchange); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/entitlement", nil)
	req.Header.Set("Authorization", "Bearer "+exchange.EntitlementToken)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w2.Code)
	}
}

func TestAuthGoogle_MissingIDToken(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()
	r := newRouter(t, idp)

	w := postJSON(t, r, "/v1/auth/google", map[string]string{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestJWKSEndpoint_ServesExactlyOneKey(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()
	r := newRouter(t, idp)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var ks jwtkit.JWKS
	if err := json.Unmarshal(w.Body.Bytes(), &ks); err != nil {
		t.Fatal(err)
	}
	if len(ks.Keys) != 1 {
		t.Fatalf("keys = %d, want 1", len(ks.Keys))
	}
	k := ks.Keys[0]
	if k.Kty != "RSA" || k.Use != "sig" || k.Alg != "RS256" || k.Kid == "" || k.N == "" || k.E == "" {
		t.Fatalf("jwk = %+v", k)
	}
}

func TestHealthEndpoint(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()
	r := newRouter(t, idp)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
