package profile

import (
	"context"
	"testing"
	"time"

	"compliancehub.org/internal/remote"
	"compliancehub.org/internal/session"
)

var principal = remote.Principal{ID: "p-1", Email: "emp@ncf.example"}

func TestResolveCreatesEmployeeProfileLazily(t *testing.T) {
	store := remote.NewInMemory()
	r := NewResolver(store,
		WithClock(func() time.Time { return time.UnixMilli(1756500000000) }),
		WithIDFunc(func() string { return "prof-1" }),
	)

	p, err := r.Resolve(context.Background(), principal)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.ID != "prof-1" || p.Email != principal.Email || p.PrincipalID != principal.ID {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Role != session.RoleEmployee {
		t.Fatalf("new profile role = %s, want employee", p.Role)
	}
	if p.CreatedAt != 1756500000000 {
		t.Fatalf("createdAt = %d", p.CreatedAt)
	}
	if store.Count("users") != 1 {
		t.Fatalf("store has %d users, want 1", store.Count("users"))
	}
}

func TestResolvePrefersExistingProfile(t *testing.T) {
	store := remote.NewInMemory()
	r := NewResolver(store, WithIDFunc(func() string {
		t.Fatal("resolver created a profile despite an existing one")
		return ""
	}))

	existing := Profile{
		ID:          "prof-1",
		Email:       principal.Email,
		PrincipalID: principal.ID,
		Role:        session.RoleAdmin, // promoted after creation
		CreatedAt:   1,
	}
	if err := store.Transact(context.Background(), []remote.WriteOp{{
		Entity: "users", ID: existing.ID, Attrs: existing.attrs(),
	}}); err != nil {
		t.Fatal(err)
	}

	p, err := r.Resolve(context.Background(), principal)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.ID != "prof-1" || p.Role != session.RoleAdmin {
		t.Fatalf("existing profile not honoured: %+v", p)
	}
	if store.Count("users") != 1 {
		t.Fatalf("store has %d users, want 1", store.Count("users"))
	}
}

func TestDuplicateProfilesCollapseDeterministically(t *testing.T) {
	store := remote.NewInMemory()
	// Two clients raced and both created a profile; insertion order puts
	// the larger id first.
	for _, dup := range []Profile{
		{ID: "prof-b", Email: principal.Email, PrincipalID: principal.ID, Role: session.RoleRSM, CreatedAt: 2},
		{ID: "prof-a", Email: principal.Email, PrincipalID: principal.ID, Role: session.RoleEmployee, CreatedAt: 3},
	} {
		if err := store.Transact(context.Background(), []remote.WriteOp{{
			Entity: "users", ID: dup.ID, Attrs: dup.attrs(),
		}}); err != nil {
			t.Fatal(err)
		}
	}

	r := NewResolver(store)
	for i := 0; i < 3; i++ {
		p, err := r.Resolve(context.Background(), principal)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if p.ID != "prof-a" {
			t.Fatalf("resolve %d picked %s, want prof-a", i, p.ID)
		}
	}
}

func TestUpdateRole(t *testing.T) {
	store := remote.NewInMemory()
	r := NewResolver(store, WithIDFunc(func() string { return "prof-1" }))

	if _, err := r.Resolve(context.Background(), principal); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateRole(context.Background(), "prof-1", session.RoleRSM); err != nil {
		t.Fatalf("update role: %v", err)
	}

	p, err := r.Resolve(context.Background(), principal)
	if err != nil {
		t.Fatal(err)
	}
	if p.Role != session.RoleRSM {
		t.Fatalf("role = %s after update, want rsm", p.Role)
	}
	// Other attributes survive the partial update.
	if p.Email != principal.Email || p.PrincipalID != principal.ID {
		t.Fatalf("partial update clobbered profile: %+v", p)
	}
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	r := NewResolver(remote.NewInMemory())
	if err := r.UpdateRole(context.Background(), "prof-1", session.Role("owner")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
