// Package fsstore is the filesystem collaborator: scoped byte and text
// access under paths that have already been resolved and sandbox-checked.
package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store reads and writes files under absolute, pre-resolved paths.
type Store struct{}

// New creates a Store.
func New() *Store {
	return &Store{}
}

// ReadBytes reads an entire file.
func (s *Store) ReadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// WriteBytes writes a file, creating parent directories as needed.
// Creating an existing directory is not an error.
func (s *Store) WriteBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
