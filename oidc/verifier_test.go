package oidckit_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	oidckit "github.com/open-rails/entkit/oidc"
	enttesting "github.com/open-rails/entkit/testing"
)

func newVerifier(idp *enttesting.IdentityProvider, audiences ...string) *oidckit.AssertionVerifier {
	return oidckit.NewAssertionVerifier(idp.Issuer(), audiences, oidckit.StaticKeySet{Set: idp.KeySet()})
}

func TestVerify_ValidAssertion(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := newVerifier(idp, "client-123")
	raw := idp.CreateAssertion("google-sub-1", "user@example.com", map[string]any{
		"name":    "Test User",
		"picture": "https://example.com/p.png",
	})
	id, err := v.Verify(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	if id.Subject != "google-sub-1" {
		t.Fatalf("subject = %q", id.Subject)
	}
	if id.Email != "user@example.com" || id.Name != "Test User" || id.Picture != "https://example.com/p.png" {
		t.Fatalf("identity = %+v", id)
	}
	if id.Claims["iss"] != idp.Issuer() {
		t.Fatalf("claims iss = %v", id.Claims["iss"])
	}
}

// A signature- and issuer-valid token must still be rejected when its
// audience is not allow-listed.
func TestVerify_RejectsDisallowedAudience(t *testing.T) {
	idp := enttesting.NewIdentityProvider("other-client")
	defer idp.Close()

	v := newVerifier(idp, "client-123")
	raw := idp.CreateAssertion("google-sub-1", "", nil)
	if _, err := v.Verify(context.Background(), raw); err == nil {
		t.Fatal("expected audience rejection")
	}
}

func TestVerify_EmptyAllowlistIsConfigError(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := newVerifier(idp)
	_, err := v.Verify(context.Background(), idp.CreateAssertion("sub", "", nil))
	if !errors.Is(err, oidckit.ErrNoAudienceAllowlist) {
		t.Fatalf("err = %v, want ErrNoAudienceAllowlist", err)
	}
}

func TestVerify_EmptyTokenIsClientError(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := newVerifier(idp, "client-123")
	if _, err := v.Verify(context.Background(), "   "); !errors.Is(err, oidckit.ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

func TestVerify_RejectsMalformedToken(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := newVerifier(idp, "client-123")
	if _, err := v.Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatal("expected malformed token rejection")
	}
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := oidckit.NewAssertionVerifier("https://unrelated.example", []string{"client-123"},
		oidckit.StaticKeySet{Set: idp.KeySet()})
	if _, err := v.Verify(context.Background(), idp.CreateAssertion("sub", "", nil)); err == nil {
		t.Fatal("expected issuer rejection")
	}
}

func TestVerify_RejectsExpiredAssertion(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := newVerifier(idp, "client-123")
	raw := idp.CreateAssertion("sub", "", map[string]any{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := v.Verify(context.Background(), raw); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func TestVerify_RejectsMissingSubject(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	v := newVerifier(idp, "client-123")
	raw := idp.CreateAssertion("", "", nil)
	_, err := v.Verify(context.Background(), raw)
	if err == nil {
		t.Fatal("expected missing sub rejection")
	}
	if !strings.Contains(err.Error(), "sub") {
		t.Fatalf("error should name the failed check, got %v", err)
	}
}

// The remote key set path: verification works end to end against the
// provider's served JWKS, not just a static fixture.
func TestVerify_WithCachedRemoteKeySet(t *testing.T) {
	idp := enttesting.NewIdentityProvider("client-123")
	defer idp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	keys, err := oidckit.NewCachedRemoteKeySet(ctx, idp.JWKSURL())
	if err != nil {
		t.Fatal(err)
	}
	v := oidckit.NewAssertionVerifier(idp.Issuer(), []string{"client-123"}, keys)
	id, err := v.Verify(ctx, idp.CreateAssertion("google-sub-2", "u2@example.com", nil))
	if err != nil {
		t.Fatal(err)
	}
	if id.Subject != "google-sub-2" {
		t.Fatalf("subject = %q", id.Subject)
	}
}
