package remote

import (
	"context"
	"fmt"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used by tests
// and the smoke binary in place of the network service.
type InMemory struct {
	mu       sync.RWMutex
	entities map[string]map[string]map[string]any // entity -> id -> attrs
	order    map[string][]string                  // entity -> insertion order
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		entities: make(map[string]map[string]map[string]any),
		order:    make(map[string][]string),
	}
}

func (s *InMemory) Query(ctx context.Context, q Query) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []map[string]any
	for _, id := range s.order[q.Entity] {
		attrs, ok := s.entities[q.Entity][id]
		if !ok {
			continue
		}
		if !matches(attrs, q.Where) {
			continue
		}
		copied := make(map[string]any, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
		out = append(out, copied)
	}
	return out, nil
}

func (s *InMemory) Transact(ctx context.Context, ops []WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		if op.Entity == "" || op.ID == "" {
			return fmt.Errorf("%w: write op needs entity and id", ErrRejected)
		}
		if op.Delete {
			delete(s.entities[op.Entity], op.ID)
			continue
		}
		objs := s.entities[op.Entity]
		if objs == nil {
			objs = make(map[string]map[string]any)
			s.entities[op.Entity] = objs
		}
		existing, seen := objs[op.ID]
		if !seen {
			existing = make(map[string]any, len(op.Attrs))
			objs[op.ID] = existing
			s.order[op.Entity] = append(s.order[op.Entity], op.ID)
		}
		// Upsert merge, matching the remote service's update semantics.
		for k, v := range op.Attrs {
			existing[k] = v
		}
	}
	return nil
}

// Count returns how many objects of an entity exist.
func (s *InMemory) Count(entity string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities[entity])
}

func matches(attrs map[string]any, where map[string]string) bool {
	for k, want := range where {
		got, ok := attrs[k]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}
