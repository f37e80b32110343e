package entitlements

import (
	"context"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	jwtkit "github.com/open-rails/entkit/jwt"
)

// TokenTTL is the entitlement token lifetime.
const TokenTTL = 24 * time.Hour

// TokenIssuer mints RS256 entitlement tokens and publishes the verification
// key set. Third parties verify tokens offline against JWKS().
type TokenIssuer struct {
	keys   *jwtkit.KeyProvider
	issuer string
	now    func() time.Time
}

// TokenIssuerOpt configures a TokenIssuer.
type TokenIssuerOpt func(*TokenIssuer)

// WithTokenClock overrides the time source, for tests.
func WithTokenClock(now func() time.Time) TokenIssuerOpt {
	return func(ti *TokenIssuer) { ti.now = now }
}

func NewTokenIssuer(keys *jwtkit.KeyProvider, issuer string, opts ...TokenIssuerOpt) *TokenIssuer {
	ti := &TokenIssuer{keys: keys, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(ti)
	}
	return ti
}

// Issue signs an entitlement token for the user's current view. The key is
// provisioned on demand; a provisioning failure is a server-configuration
// problem, not a caller error.
func (ti *TokenIssuer) Issue(ctx context.Context, userID string, v View) (string, error) {
	signer, err := ti.keys.Signer()
	if err != nil {
		return "", fmt.Errorf("signing key unavailable: %w", err)
	}
	now := ti.now()
	claims := jwt.MapClaims{
		"sub":                userID,
		"iss":                ti.issuer,
		"iat":                now.Unix(),
		"exp":                now.Add(TokenTTL).Unix(),
		"tier":               string(v.Tier),
		"lifetime":           v.Lifetime,
		"premium_active":     v.PremiumActive,
		"trial_started_at":   v.TrialStartedAt,
		"trial_expires_at":   v.TrialExpiresAt,
		"premium_expires_at": nil,
		"caps":               CapsForView(v),
	}
	if v.PremiumExpiresAt != nil {
		claims["premium_expires_at"] = *v.PremiumExpiresAt
	}
	return signer.Sign(ctx, claims)
}

// JWKS returns the published key set for external verification.
func (ti *TokenIssuer) JWKS() (jwtkit.JWKS, error) {
	ks, err := ti.keys.JWKS()
	if err != nil {
		return jwtkit.JWKS{}, fmt.Errorf("signing key unavailable: %w", err)
	}
	return ks, nil
}
