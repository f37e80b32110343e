package memorystore

import (
	"context"
	"testing"

	oidckit "github.com/open-rails/entkit/oidc"
)

func TestUserUpsert_PlaceholderEmailOnCreate(t *testing.T) {
	s := NewUserStore()
	u, err := s.UpsertFromAssertion(context.Background(), oidckit.Identity{Subject: "sub-1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "sub-1@unknown.local" {
		t.Fatalf("email = %q", u.Email)
	}
}

func TestUserUpsert_PrefersPayloadEmailOnUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	if _, err := s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1"}); err != nil {
		t.Fatal(err)
	}
	u, err := s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1", Email: "real@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "real@example.com" {
		t.Fatalf("email = %q", u.Email)
	}

	// Absent email does not clobber the stored one.
	u, err = s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "real@example.com" {
		t.Fatalf("email = %q after absent-email upsert", u.Email)
	}
}

func TestUserUpsert_NamePictureLastWriterWins(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	u, err := s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1", Name: "Ada", Picture: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name == nil || *u.Name != "Ada" {
		t.Fatalf("name = %v", u.Name)
	}

	// A later assertion without name/picture clears them: overwrite, not
	// merge.
	u, err = s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != nil || u.Picture != nil {
		t.Fatalf("expected cleared name/picture, got %v/%v", u.Name, u.Picture)
	}
}

func TestUserUpsert_StableIDAcrossUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	u1, err := s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1"})
	if err != nil {
		t.Fatal(err)
	}
	u2, err := s.UpsertFromAssertion(ctx, oidckit.Identity{Subject: "sub-1", Email: "x@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("user id changed across upserts: %s vs %s", u1.ID, u2.ID)
	}
}
