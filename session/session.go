// Package session issues and verifies the HS256 session tokens that gate
// entitlement-management requests. Session tokens are short-lived proofs of
// authenticated identity and share nothing with the RS256 entitlement tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the session token lifetime.
const TokenTTL = 60 * time.Minute

// DefaultScope is granted to every session minted by an identity exchange.
var DefaultScope = []string{"entitlement:read", "entitlement:write"}

// ErrNoSecret indicates the symmetric secret is not configured. It is a
// server-configuration failure, never a caller problem.
var ErrNoSecret = errors.New("session: secret not configured")

// Principal is the resolved caller attached to authenticated requests.
type Principal struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Scope []string `json:"scope"`
}

// Issuer mints session tokens with a configured symmetric secret.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// IssuerOpt configures an Issuer.
type IssuerOpt func(*Issuer)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) IssuerOpt {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret, issuer string, opts ...IssuerOpt) *Issuer {
	i := &Issuer{secret: []byte(secret), issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a session token for the user. Email is included only when
// known.
func (i *Issuer) Issue(_ context.Context, userID, email string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}
	now := i.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"iss":   i.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL).Unix(),
		"scope": DefaultScope,
	}
	if email != "" {
		claims["email"] = email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verifier checks session tokens and resolves the caller principal.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify validates signature, issuer, and expiry, and requires a subject.
// Any failure means the caller is unauthorized; the reason is carried in the
// returned error.
func (v *Verifier) Verify(_ context.Context, raw string) (Principal, error) {
	if len(v.secret) == 0 {
		return Principal{}, ErrNoSecret
	}
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("unexpected claims shape")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, errors.New("missing sub")
	}
	p := Principal{ID: sub, Scope: []string{}}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if raw, ok := claims["scope"].([]any); ok {
		for _, s := range raw {
			if str, ok := s.(string); ok {
				p.Scope = append(p.Scope, str)
			}
		}
	}
	return p, nil
}
