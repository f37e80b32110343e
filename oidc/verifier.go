// Package oidckit verifies externally issued identity assertions (OIDC ID
// tokens) against a remote key set, and exchanges authorization codes for
// them when a client cannot present an ID token directly.
package oidckit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// GoogleIssuer is the default expected assertion issuer.
const GoogleIssuer = "https://accounts.google.com"

var (
	// ErrMissingToken is returned for an empty or absent assertion string.
	ErrMissingToken = errors.New("oidc: id_token is required")
	// ErrNoAudienceAllowlist indicates the audience allow-list is not
	// configured. This is a deployment problem, not a caller problem.
	ErrNoAudienceAllowlist = errors.New("oidc: audience allow-list not configured")
)

// AssertionVerifier validates identity assertions against a fixed issuer, a
// configured audience allow-list, and the provider's public key set.
type AssertionVerifier struct {
	issuer    string
	audiences []string
	keys      KeySetSource
}

func NewAssertionVerifier(issuer string, audiences []string, keys KeySetSource) *AssertionVerifier {
	return &AssertionVerifier{issuer: issuer, audiences: audiences, keys: keys}
}

// Verify checks signature, issuer, audience, and subject of a raw assertion
// and returns the verified identity. Library-level validation is followed by
// explicit issuer/audience/subject re-checks; each failure names the check
// that failed.
func (v *AssertionVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return Identity{}, ErrMissingToken
	}
	if len(v.audiences) == 0 {
		return Identity{}, ErrNoAudienceAllowlist
	}
	set, err := v.keys.Keys(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch identity provider keys: %w", err)
	}
	token, err := jwt.ParseString(
		raw,
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithContext(ctx),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid id_token: %w", err)
	}

	// Defense in depth beyond library validation.
	if token.Issuer() != v.issuer {
		return Identity{}, errors.New("invalid issuer")
	}
	if !v.audienceAllowed(token.Audience()) {
		return Identity{}, errors.New("invalid audience")
	}
	if token.Subject() == "" {
		return Identity{}, errors.New("missing sub")
	}

	id := Identity{Subject: token.Subject(), Claims: map[string]any{}}
	id.Claims["iss"] = token.Issuer()
	id.Claims["sub"] = token.Subject()
	if aud := token.Audience(); len(aud) > 0 {
		id.Claims["aud"] = aud[0]
	}
	for k, val := range token.PrivateClaims() {
		id.Claims[k] = val
	}
	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			id.Email = s
		}
	}
	if name, ok := token.Get("name"); ok {
		if s, ok := name.(string); ok {
			id.Name = s
		}
	}
	if pic, ok := token.Get("picture"); ok {
		if s, ok := pic.(string); ok {
			id.Picture = s
		}
	}
	return id, nil
}

func (v *AssertionVerifier) audienceAllowed(auds []string) bool {
	for _, aud := range auds {
		for _, allowed := range v.audiences {
			if aud == allowed {
				return true
			}
		}
	}
	return false
}
