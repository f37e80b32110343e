package oidckit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// RelyingParty holds discovery-backed OIDC configuration for the identity
// provider, for clients that present an authorization code instead of an ID
// token.
type RelyingParty struct {
	issuer      string
	clientID    string
	jwksURL     string
	oauthConfig *oauth2.Config
}

type discoveryDoc struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// NewRelyingParty discovers OIDC metadata for the issuer and constructs a
// relying party able to exchange authorization codes.
func NewRelyingParty(ctx context.Context, issuer, clientID, clientSecret, redirectURI string) (*RelyingParty, error) {
	trimmed := strings.TrimRight(issuer, "/")
	if trimmed == "" {
		return nil, errors.New("oidc: issuer is empty")
	}
	doc, err := discoverOIDC(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	effectiveIssuer := doc.Issuer
	if effectiveIssuer == "" {
		effectiveIssuer = issuer
	}
	return &RelyingParty{
		issuer:   effectiveIssuer,
		clientID: clientID,
		jwksURL:  doc.JWKSURI,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  doc.AuthorizationEndpoint,
				TokenURL: doc.TokenEndpoint,
			},
		},
	}, nil
}

// Issuer returns the issuer URL associated with the relying party.
func (rp *RelyingParty) Issuer() string { return rp.issuer }

// ClientID returns the OAuth client_id for the relying party.
func (rp *RelyingParty) ClientID() string { return rp.clientID }

// JWKSURL returns the provider's key set endpoint from discovery.
func (rp *RelyingParty) JWKSURL() string { return rp.jwksURL }

// ExchangeCode trades an authorization code for the provider's raw ID token.
// The result still goes through AssertionVerifier like a directly supplied
// assertion; exchange grants no trust by itself.
func (rp *RelyingParty) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	cfg := rp.oauthConfig
	if redirectURI != "" && redirectURI != cfg.RedirectURL {
		clone := *cfg
		clone.RedirectURL = redirectURI
		cfg = &clone
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange failed: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("no id_token in token response")
	}
	return rawIDToken, nil
}

func discoverOIDC(ctx context.Context, issuer string) (*discoveryDoc, error) {
	discoveryURL := issuer + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("oidc: discovery failed: %s", resp.Status)
	}
	var doc discoveryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	discovered := strings.TrimRight(doc.Issuer, "/")
	if discovered != "" && discovered != issuer {
		return nil, fmt.Errorf("oidc: issuer mismatch: %s", doc.Issuer)
	}
	if doc.TokenEndpoint == "" || doc.JWKSURI == "" {
		return nil, errors.New("oidc: discovery missing endpoints")
	}
	return &doc, nil
}
