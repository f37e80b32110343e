package oidckit

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// GoogleJWKSURL is the default identity-provider key set endpoint.
const GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// KeySetSource provides the identity provider's current public keys. It is a
// capability rather than a concrete client so tests can substitute a static
// fixture.
type KeySetSource interface {
	Keys(ctx context.Context) (jwk.Set, error)
}

// CachedRemoteKeySet fetches a remote JWKS once and serves it from cache,
// refreshing in the background. jwk.Cache deduplicates concurrent first
// fetches, so N simultaneous verifications issue a single network call.
type CachedRemoteKeySet struct {
	url   string
	cache *jwk.Cache
}

// NewCachedRemoteKeySet registers url with a background-refreshing cache.
// ctx bounds the cache's refresh goroutine lifetime.
func NewCachedRemoteKeySet(ctx context.Context, url string) (*CachedRemoteKeySet, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, err
	}
	return &CachedRemoteKeySet{url: url, cache: cache}, nil
}

func (s *CachedRemoteKeySet) Keys(ctx context.Context) (jwk.Set, error) {
	return s.cache.Get(ctx, s.url)
}

// StaticKeySet serves a fixed key set. Used in tests and for pinned keys.
type StaticKeySet struct {
	Set jwk.Set
}

func (s StaticKeySet) Keys(_ context.Context) (jwk.Set, error) {
	return s.Set, nil
}
