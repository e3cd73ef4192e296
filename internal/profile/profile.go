// Package profile maps authenticated principals to persisted role profiles.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"compliancehub.org/internal/audit"
	"compliancehub.org/internal/ids"
	"compliancehub.org/internal/remote"
	"compliancehub.org/internal/session"
)

const usersEntity = "users"

// Profile is a viewer's role assignment. At most one per principal email;
// the role defaults to employee and is changed only by admins afterwards.
type Profile struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	PrincipalID string       `json:"principalId"`
	Role        session.Role `json:"role"`
	CreatedAt   int64        `json:"createdAt"`
}

// Resolver looks profiles up in the remote store and creates them lazily.
type Resolver struct {
	store remote.Store
	now   func() time.Time
	newID func() string
}

// Option configures the resolver.
type Option func(*Resolver)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithIDFunc overrides profile id generation.
func WithIDFunc(newID func() string) Option {
	return func(r *Resolver) { r.newID = newID }
}

// NewResolver creates a resolver over the remote store.
func NewResolver(store remote.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store: store,
		now:   time.Now,
		newID: ids.Report,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the profile for the principal, creating one with the
// default employee role on first sight. The resolver writes the role only at
// creation; an admin may change it independently afterwards.
//
// Two clients seeing the same new principal concurrently can both create a
// profile. The shared table is not locked, so the race is tolerated at read
// time instead: the profile with the smallest identifier wins,
// deterministically, for every caller.
func (r *Resolver) Resolve(ctx context.Context, principal remote.Principal) (Profile, error) {
	rows, err := r.store.Query(ctx, remote.Query{
		Entity: usersEntity,
		Where:  map[string]string{"email": principal.Email},
	})
	if err != nil {
		return Profile{}, err
	}

	if len(rows) > 0 {
		p, err := pick(rows)
		if err != nil {
			return Profile{}, err
		}
		if len(rows) > 1 {
			_ = audit.LogEvent(ctx, "profile.race", map[string]any{
				"email":      principal.Email,
				"duplicates": len(rows),
				"picked":     p.ID,
			})
		}
		return p, nil
	}

	p := Profile{
		ID:          r.newID(),
		Email:       principal.Email,
		PrincipalID: principal.ID,
		Role:        session.RoleEmployee,
		CreatedAt:   r.now().UnixMilli(),
	}
	if err := r.store.Transact(ctx, []remote.WriteOp{{
		Entity: usersEntity,
		ID:     p.ID,
		Attrs:  p.attrs(),
	}}); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateRole sets a profile's role. Admin-only; access control lives with
// the caller holding the admin session.
func (r *Resolver) UpdateRole(ctx context.Context, profileID string, role session.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return r.store.Transact(ctx, []remote.WriteOp{{
		Entity: usersEntity,
		ID:     profileID,
		Attrs:  map[string]any{"role": string(role)},
	}})
}

// pick collapses duplicate rows deterministically: smallest id wins.
func pick(rows []map[string]any) (Profile, error) {
	best := Profile{}
	for _, row := range rows {
		p, err := fromAttrs(row)
		if err != nil {
			return Profile{}, err
		}
		if best.ID == "" || p.ID < best.ID {
			best = p
		}
	}
	return best, nil
}

func (p Profile) attrs() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"email":       p.Email,
		"principalId": p.PrincipalID,
		"role":        string(p.Role),
		"createdAt":   p.CreatedAt,
	}
}

func fromAttrs(attrs map[string]any) (Profile, error) {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, err
	}
	if p.ID == "" || p.Email == "" {
		return Profile{}, fmt.Errorf("malformed profile row: %v", attrs)
	}
	return p, nil
}
