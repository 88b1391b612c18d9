package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrFileIO wraps any note create/read/write/delete failure.
var ErrFileIO = errors.New("file i/o failure")

// Store reads and writes notes under one output directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the output directory if needed and returns a store
// over it.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("vault directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create vault directory: %v", ErrFileIO, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the output directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Exists reports whether a note file is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && !info.IsDir()
}

// Read returns a note's content.
func (s *Store) Read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrFileIO, name, err)
	}
	return string(data), nil
}

// Write creates or replaces a note.
func (s *Store) Write(name, content string) error {
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrFileIO, name, err)
	}
	return nil
}

// Delete removes a note.
func (s *Store) Delete(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrFileIO, name, err)
	}
	return nil
}

// List returns the names of all files in the vault, directories excluded.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list vault: %v", ErrFileIO, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Purge deletes every file in the vault unconditionally and returns the
// number deleted. Individual delete failures are logged and skipped; they
// do not stop the purge.
func (s *Store) Purge() (int, error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, name := range names {
		if err := s.Delete(name); err != nil {
			s.logger.Warn("failed to purge note", zap.String("name", name), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
