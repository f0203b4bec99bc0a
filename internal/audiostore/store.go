// Package audiostore persists synthesized MP3 files on local disk.
package audiostore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no audio exists for an ID.
var ErrNotFound = errors.New("audio not found")

// Store writes and reads MP3 files under a single directory, keyed by
// document ID. IDs are sanitized so callers cannot escape the
// directory.
type Store struct {
	dir string
}

func New(dir string) *Store {
	if dir == "" {
		dir = "audio"
	}
	return &Store{dir: dir}
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data to {dir}/{id}.mp3, overwriting any existing file,
// and returns the path written.
func (s *Store) Save(id string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	path := s.path(id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

// Open returns an open file for the stored audio. The caller closes it.
func (s *Store) Open(id string) (*os.File, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open audio: %w", err)
	}
	return f, nil
}

// Delete removes the stored audio for an ID.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, sanitizeID(id)+".mp3")
}

func sanitizeID(id string) string {
	id = filepath.Base(id)
	id = strings.ReplaceAll(id, "..", "_")
	if id == "" || id == "." {
		id = "unnamed"
	}
	return id
}
