package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Selection persists the last-selected store so a session survives restarts
// without asking for the location again.
type Selection struct {
	path string
}

// NewSelection binds the selection to a file path.
func NewSelection(path string) *Selection {
	return &Selection{path: path}
}

// Load reads the persisted store choice. The second return value is false
// when no choice has been saved yet.
func (s *Selection) Load() (Store, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Store{}, false, nil
	}
	if err != nil {
		return Store{}, false, fmt.Errorf("load store selection: %w", err)
	}
	var st Store
	if err := json.Unmarshal(data, &st); err != nil {
		return Store{}, false, fmt.Errorf("load store selection: %w", err)
	}
	return st, true, nil
}

// Save writes the store choice durably (temp file plus rename).
func (s *Selection) Save(st Store) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("save store selection: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save store selection: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save store selection: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save store selection: %w", err)
	}
	return nil
}

// Clear removes the persisted choice, e.g. on logout or store change.
func (s *Selection) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear store selection: %w", err)
	}
	return nil
}
