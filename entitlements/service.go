package entitlements

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no record exists for a user.
var ErrNotFound = errors.New("entitlements: record not found")

// Store is the persistence port for entitlement records. Implementations
// must be atomic at single-record granularity; no cross-record transactions
// are required.
type Store interface {
	// Get returns the record for a user, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Record, error)
	// Create inserts a new record. The record must not already exist.
	Create(ctx context.Context, rec *Record) error
	// UpdatePremiumActive re-persists the premiumActive flag for a user.
	UpdatePremiumActive(ctx context.Context, userID string, premiumActive bool) (*Record, error)
}

// Service derives entitlement views and manages trial issuance.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOpt configures a Service.
type ServiceOpt func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOpt {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...ServiceOpt) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetForUser returns the current view for a user. A missing record is not an
// error; it derives to the empty trial view.
func (s *Service) GetForUser(ctx context.Context, userID string) (View, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return View{}, err
	}
	return Derive(rec, s.now()), nil
}

// IssueIfMissing seeds a 30-day trial for a user with no record. It is
// idempotent: an existing record is returned unchanged, never re-seeded or
// extended.
func (s *Service) IssueIfMissing(ctx context.Context, userID string) (View, error) {
	existing, err := s.store.Get(ctx, userID)
	if err == nil {
		return Derive(existing, s.now()), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return View{}, err
	}
	now := s.now()
	rec := &Record{
		UserID:         userID,
		TrialStartedAt: now,
		TrialExpiresAt: now.Add(TrialDuration),
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return View{}, err
	}
	return Derive(rec, now), nil
}

// Refresh re-persists the record's current premiumActive value unchanged and
// returns the recomputed view. It is a deliberate no-op transition reserved
// for a future billing-provider webhook; trial timestamps and the lifetime
// flag are never touched.
func (s *Service) Refresh(ctx context.Context, userID string) (View, error) {
	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Derive(nil, s.now()), nil
	}
	if err != nil {
		return View{}, err
	}
	updated, err := s.store.UpdatePremiumActive(ctx, userID, rec.PremiumActive)
	if err != nil {
		return View{}, err
	}
	return Derive(updated, s.now()), nil
}
