// Package core orchestrates the identity-exchange and entitlement flows and
// owns the error taxonomy surfaced at the HTTP boundary.
package core

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/entkit/entitlements"
	"github.com/open-rails/entkit/identity"
	jwtkit "github.com/open-rails/entkit/jwt"
	oidckit "github.com/open-rails/entkit/oidc"
	"github.com/open-rails/entkit/session"
)

// UserStore is the port for persisting verified identities.
type UserStore interface {
	UpsertFromAssertion(ctx context.Context, id oidckit.Identity) (*identity.User, error)
}

// AssertionVerifier validates externally issued identity assertions.
type AssertionVerifier interface {
	Verify(ctx context.Context, raw string) (oidckit.Identity, error)
}

// CodeExchanger trades an authorization code for a raw identity assertion.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
}

// Service wires verification, persistence, and token issuance together.
type Service struct {
	log       *logrus.Logger
	verifier  AssertionVerifier
	exchanger CodeExchanger // nil when no OAuth client is configured
	users     UserStore
	ents      *entitlements.Service
	sessions  *session.Issuer
	entTokens *entitlements.TokenIssuer
}

type ServiceConfig struct {
	Log       *logrus.Logger
	Verifier  AssertionVerifier
	Exchanger CodeExchanger
	Users     UserStore
	Ents      *entitlements.Service
	Sessions  *session.Issuer
	EntTokens *entitlements.TokenIssuer
}

func NewService(cfg ServiceConfig) *Service {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		log:       log,
		verifier:  cfg.Verifier,
		exchanger: cfg.Exchanger,
		users:     cfg.Users,
		ents:      cfg.Ents,
		sessions:  cfg.Sessions,
		entTokens: cfg.EntTokens,
	}
}

// ExchangeResult is the identity-exchange endpoint payload.
type ExchangeResult struct {
	Token            string         `json:"token"`
	User             *identity.User `json:"user"`
	EntitlementToken string         `json:"entitlement_token"`
}

// ExchangeIdentity verifies an identity assertion, upserts the user, and
// mints the session and entitlement tokens. Nothing is persisted when
// verification fails.
func (s *Service) ExchangeIdentity(ctx context.Context, rawAssertion string) (*ExchangeResult, error) {
	id, err := s.verifier.Verify(ctx, rawAssertion)
	if err != nil {
		if errors.Is(err, oidckit.ErrNoAudienceAllowlist) {
			return nil, ServerConfig("audience allow-list not configured", err)
		}
		s.log.WithError(err).Info("identity assertion rejected")
		return nil, ClientInput("invalid_id_token", "invalid id_token", err)
	}

	user, err := s.users.UpsertFromAssertion(ctx, id)
	if err != nil {
		return nil, Internal(err)
	}

	token, err := s.sessions.Issue(ctx, user.ID.String(), user.Email)
	if err != nil {
		if errors.Is(err, session.ErrNoSecret) {
			return nil, ServerConfig("session secret not configured", err)
		}
		return nil, Internal(err)
	}

	view, err := s.ents.GetForUser(ctx, user.ID.String())
	if err != nil {
		return nil, Internal(err)
	}
	entToken, err := s.entTokens.Issue(ctx, user.ID.String(), view)
	if err != nil {
		return nil, ServerConfig("entitlement signing key unavailable", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"sub":     user.Sub,
		"tier":    view.Tier,
	}).Info("identity exchanged")

	return &ExchangeResult{Token: token, User: user, EntitlementToken: entToken}, nil
}

// ExchangeCode performs an authorization-code exchange and then the normal
// assertion verification path.
func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*ExchangeResult, error) {
	if s.exchanger == nil {
		return nil, ServerConfig("oauth client not configured", nil)
	}
	if code == "" {
		return nil, ClientInput("missing_code", "code is required", nil)
	}
	rawAssertion, err := s.exchanger.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, ClientInput("code_exchange_failed", "code exchange failed", err)
	}
	return s.ExchangeIdentity(ctx, rawAssertion)
}

// EntitlementResult pairs a view with a freshly minted entitlement token.
type EntitlementResult struct {
	View  entitlements.View
	Token string
}

// Entitlement returns the caller's current view plus a fresh token.
func (s *Service) Entitlement(ctx context.Context, userID string) (*EntitlementResult, error) {
	view, err := s.ents.GetForUser(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return s.withToken(ctx, userID, view)
}

// IssueEntitlement seeds the 30-day trial when missing; idempotent.
func (s *Service) IssueEntitlement(ctx context.Context, userID string) (*EntitlementResult, error) {
	view, err := s.ents.IssueIfMissing(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return s.withToken(ctx, userID, view)
}

// RefreshEntitlement re-persists the record unchanged and recomputes the
// view.
func (s *Service) RefreshEntitlement(ctx context.Context, userID string) (*EntitlementResult, error) {
	view, err := s.ents.Refresh(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return s.withToken(ctx, userID, view)
}

// JWKS exposes the published entitlement key set.
func (s *Service) JWKS() (jwtkit.JWKS, error) {
	ks, err := s.entTokens.JWKS()
	if err != nil {
		return jwtkit.JWKS{}, ServerConfig("entitlement signing key unavailable", err)
	}
	return ks, nil
}

func (s *Service) withToken(ctx context.Context, userID string, view entitlements.View) (*EntitlementResult, error) {
	token, err := s.entTokens.Issue(ctx, userID, view)
	if err != nil {
		return nil, ServerConfig("entitlement signing key unavailable", err)
	}
	return &EntitlementResult{View: view, Token: token}, nil
}
