// Package identity persists users resolved from verified identity
// assertions.
package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	oidckit "github.com/open-rails/entkit/oidc"
)

// User is a stored identity, keyed internally by id and externally by the
// assertion subject.
type User struct {
	ID      uuid.UUID `json:"id"`
	Sub     string    `json:"sub"`
	Email   string    `json:"email"`
	Name    *string   `json:"name,omitempty"`
	Picture *string   `json:"picture,omitempty"`
}

// Store provides user lookups/mutations over Postgres.
type Store struct {
	pg *pgxpool.Pool
}

func NewStore(pg *pgxpool.Pool) *Store {
	return &Store{pg: pg}
}

// UpsertFromAssertion creates or updates the user for a verified assertion.
// Create synthesizes a placeholder email when the payload has none; update
// prefers the payload email and passes name/picture through unconditionally
// (last-writer-wins, including clearing them when absent).
func (s *Store) UpsertFromAssertion(ctx context.Context, id oidckit.Identity) (*User, error) {
	createEmail := id.Email
	if createEmail == "" {
		createEmail = id.Subject + "@unknown.local"
	}
	var updateEmail *string
	if id.Email != "" {
		updateEmail = &id.Email
	}
	var name, picture *string
	if id.Name != "" {
		name = &id.Name
	}
	if id.Picture != "" {
		picture = &id.Picture
	}

	var u User
	err := s.pg.QueryRow(ctx, `
		INSERT INTO users (id, sub, email, name, picture)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sub) DO UPDATE SET
			email = COALESCE($6, users.email),
			name = $4,
			picture = $5,
			updated_at = NOW()
		RETURNING id, sub, email, name, picture`,
		uuid.New(), id.Subject, createEmail, name, picture, updateEmail,
	).Scan(&u.ID, &u.Sub, &u.Email, &u.Name, &u.Picture)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

// GetByID returns the stored user or nil when absent.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.pg.QueryRow(ctx,
		`SELECT id, sub, email, name, picture FROM users WHERE id=$1 LIMIT 1`, id,
	).Scan(&u.ID, &u.Sub, &u.Email, &u.Name, &u.Picture)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
