// Package memorystore holds in-memory implementations of entkit's
// persistence ports, for tests and for booting without Postgres.
package memorystore

import (
	"context"
	"sync"
	"time"

	"github.com/open-rails/entkit/entitlements"
)

// EntitlementStore is an in-memory entitlements.Store.
type EntitlementStore struct {
	mu   sync.Mutex
	data map[string]entitlements.Record
}

func NewEntitlementStore() *EntitlementStore {
	return &EntitlementStore{data: make(map[string]entitlements.Record)}
}

func (s *EntitlementStore) Get(_ context.Context, userID string) (*entitlements.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[userID]
	if !ok {
		return nil, entitlements.ErrNotFound
	}
	cp := rec
	return &cp, nil
}

func (s *EntitlementStore) Create(_ context.Context, rec *entitlements.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// First writer wins, like the Postgres primary key: a concurrent second
	// create must never re-seed an existing trial.
	if _, ok := s.data[rec.UserID]; ok {
		return nil
	}
	s.data[rec.UserID] = *rec
	return nil
}

func (s *EntitlementStore) UpdatePremiumActive(_ context.Context, userID string, premiumActive bool) (*entitlements.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[userID]
	if !ok {
		return nil, entitlements.ErrNotFound
	}
	rec.PremiumActive = premiumActive
	rec.UpdatedAt = time.Now()
	s.data[userID] = rec
	cp := rec
	return &cp, nil
}

// SetPremium mutates premium fields directly, standing in for the billing
// provider in tests and local development.
func (s *EntitlementStore) SetPremium(_ context.Context, userID string, active bool, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[userID]
	if !ok {
		return entitlements.ErrNotFound
	}
	rec.PremiumActive = active
	rec.PremiumExpiresAt = expiresAt
	rec.UpdatedAt = time.Now()
	s.data[userID] = rec
	return nil
}

// SetLifetime flips the permanent unlock flag. Once set it is never cleared.
func (s *EntitlementStore) SetLifetime(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[userID]
	if !ok {
		return entitlements.ErrNotFound
	}
	rec.Lifetime = true
	rec.UpdatedAt = time.Now()
	s.data[userID] = rec
	return nil
}
