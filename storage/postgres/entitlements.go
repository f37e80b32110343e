// Package pgstore implements entkit's persistence ports over Postgres.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/open-rails/entkit/entitlements"
)

// EntitlementStore persists entitlement records, one row per user. All
// operations are single-row and atomic.
type EntitlementStore struct {
	pg *pgxpool.Pool
}

func NewEntitlementStore(pg *pgxpool.Pool) *EntitlementStore {
	return &EntitlementStore{pg: pg}
}

func (s *EntitlementStore) Get(ctx context.Context, userID string) (*entitlements.Record, error) {
	var rec entitlements.Record
	err := s.pg.QueryRow(ctx, `
		SELECT user_id, lifetime, premium_active, trial_started_at, trial_expires_at, premium_expires_at, updated_at
		FROM entitlements WHERE user_id=$1 LIMIT 1`, userID,
	).Scan(&rec.UserID, &rec.Lifetime, &rec.PremiumActive, &rec.TrialStartedAt, &rec.TrialExpiresAt, &rec.PremiumExpiresAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entitlements.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entitlement: %w", err)
	}
	return &rec, nil
}

func (s *EntitlementStore) Create(ctx context.Context, rec *entitlements.Record) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO entitlements (user_id, lifetime, premium_active, trial_started_at, trial_expires_at, premium_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.UserID, rec.Lifetime, rec.PremiumActive, rec.TrialStartedAt, rec.TrialExpiresAt, rec.PremiumExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create entitlement: %w", err)
	}
	return nil
}

func (s *EntitlementStore) UpdatePremiumActive(ctx context.Context, userID string, premiumActive bool) (*entitlements.Record, error) {
	var rec entitlements.Record
	err := s.pg.QueryRow(ctx, `
		UPDATE entitlements SET premium_active=$2, updated_at=NOW()
		WHERE user_id=$1
		RETURNING user_id, lifetime, premium_active, trial_started_at, trial_expires_at, premium_expires_at, updated_at`,
		userID, premiumActive,
	).Scan(&rec.UserID, &rec.Lifetime, &rec.PremiumActive, &rec.TrialStartedAt, &rec.TrialExpiresAt, &rec.PremiumExpiresAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entitlements.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update entitlement: %w", err)
	}
	return &rec, nil
}
