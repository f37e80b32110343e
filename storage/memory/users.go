package memorystore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/open-rails/entkit/identity"
	oidckit "github.com/open-rails/entkit/oidc"
)

// UserStore is an in-memory user store with the same upsert semantics as the
// Postgres implementation.
type UserStore struct {
	mu    sync.Mutex
	bySub map[string]identity.User
}

func NewUserStore() *UserStore {
	return &UserStore{bySub: make(map[string]identity.User)}
}

func (s *UserStore) UpsertFromAssertion(_ context.Context, id oidckit.Identity) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name, picture *string
	if id.Name != "" {
		name = &id.Name
	}
	if id.Picture != "" {
		picture = &id.Picture
	}

	u, ok := s.bySub[id.Subject]
	if !ok {
		email := id.Email
		if email == "" {
			email = id.Subject + "@unknown.local"
		}
		u = identity.User{ID: uuid.New(), Sub: id.Subject, Email: email}
	} else if id.Email != "" {
		u.Email = id.Email
	}
	// Last-writer-wins, including clearing absent values.
	u.Name = name
	u.Picture = picture
	s.bySub[id.Subject] = u
	cp := u
	return &cp, nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.bySub {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}
