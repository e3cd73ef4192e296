// Package remote is the boundary to the shared, eventually-consistent data
// service. The core consumes it through query/transact/auth primitives and
// never assumes more than upsert-by-id semantics (last writer wins).
package remote

import (
	"context"
	"errors"
)

var (
	// ErrNetwork means the remote store was unreachable. Callers convert it
	// into an offline fallback, never a user-facing failure.
	ErrNetwork = errors.New("remote store unreachable")
	// ErrRejected means the remote store refused the request.
	ErrRejected = errors.New("remote store rejected request")
	// ErrAuth means the session is missing, invalid, or expired.
	ErrAuth = errors.New("authentication failed")
)

// WriteOp upserts (or deletes) one entity object by id. Replaying the same
// op is idempotent because the id is fixed before the first attempt.
type WriteOp struct {
	Entity string         `json:"entity"`
	ID     string         `json:"id"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Delete bool           `json:"delete,omitempty"`
}

// Query selects all objects of an entity, optionally narrowed by attribute
// equality.
type Query struct {
	Entity string            `json:"entity"`
	Where  map[string]string `json:"where,omitempty"`
}

// Store defines the remote data primitives the core depends on.
type Store interface {
	Query(ctx context.Context, q Query) ([]map[string]any, error)
	Transact(ctx context.Context, ops []WriteOp) error
}

// Principal is an authenticated identity as reported by the remote store.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
