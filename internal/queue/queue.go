// Package queue is the durable local store for writes that could not reach
// the remote service. It survives process restarts and never touches the
// network itself.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"compliancehub.org/internal/ids"
	"compliancehub.org/internal/obs"
	"compliancehub.org/internal/remote"
)

// ErrPersistence means the durable local write failed. Callers must surface
// this instead of claiming the operation was saved offline.
var ErrPersistence = errors.New("local queue persistence failed")

// Operation is one durable, not-yet-confirmed remote write. Its id is
// independent of the report id carried inside the write payload.
type Operation struct {
	ID         string           `json:"id"`
	EnqueuedAt int64            `json:"enqueuedAt"`
	Writes     []remote.WriteOp `json:"writes"`
}

// NewOperation wraps fully-formed writes into a queue record.
func NewOperation(writes []remote.WriteOp) Operation {
	return Operation{
		ID:         ids.New(),
		EnqueuedAt: time.Now().UnixMilli(),
		Writes:     writes,
	}
}

// Store persists pending operations in enqueue order in a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	ops  []Operation
}

// Open loads (or initialises) the queue at path.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	obs.QueueDepth.Set(float64(len(s.ops)))
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.ops); err != nil {
		return fmt.Errorf("%w: corrupt queue file: %v", ErrPersistence, err)
	}
	return nil
}

// Enqueue appends the operation and persists it durably before returning.
func (s *Store) Enqueue(op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
	if err := s.persist(); err != nil {
		s.ops = s.ops[:len(s.ops)-1]
		return err
	}
	obs.QueueDepth.Set(float64(len(s.ops)))
	return nil
}

// PeekAll returns the pending operations in enqueue order without removing
// them.
func (s *Store) PeekAll() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// Len reports the number of pending operations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}

// Clear atomically empties the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
	if err := s.persist(); err != nil {
		return err
	}
	obs.QueueDepth.Set(0)
	return nil
}

// Drop removes the given operations. The sync engine drops exactly the
// snapshot it drained, so operations enqueued mid-drain are never lost.
func (s *Store) Drop(opIDs []string) error {
	if len(opIDs) == 0 {
		return nil
	}
	dropped := make(map[string]struct{}, len(opIDs))
	for _, id := range opIDs {
		dropped[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.ops[:0]
	for _, op := range s.ops {
		if _, ok := dropped[op.ID]; !ok {
			kept = append(kept, op)
		}
	}
	s.ops = kept
	if err := s.persist(); err != nil {
		return err
	}
	obs.QueueDepth.Set(float64(len(s.ops)))
	return nil
}

// persist writes the queue file atomically (temp file plus rename).
// Callers hold s.mu.
func (s *Store) persist() error {
	data, err := json.Marshal(s.ops)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
