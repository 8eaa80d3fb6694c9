package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadState classifies the outcome of FileStore.Load.
type LoadState string

const (
	LoadAbsent  LoadState = "absent"
	LoadCorrupt LoadState = "corrupt"
	LoadLoaded  LoadState = "loaded"
)

// FileStore persists a Bundle as a single JSON document. The file is always
// read and written whole.
type FileStore struct {
	path string
}

// NewFileStore creates a store rooted at path. The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the bundle from disk. Absence and corruption are reported
// through LoadState rather than an error; both mean "unauthenticated".
func (s *FileStore) Load() (*Bundle, LoadState) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, LoadAbsent
		}
		return nil, LoadCorrupt
	}

	b, err := DecodeBundle(data)
	if err != nil {
		return nil, LoadCorrupt
	}
	return b, LoadLoaded
}

// Exists reports whether a session file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save overwrites the session file with b using a temp file and rename, so a
// concurrent reader never sees a partial document.
func (s *FileStore) Save(b *Bundle) error {
	if b == nil {
		return fmt.Errorf("cannot save nil session bundle")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session bundle: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp session file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp session file: %w", err)
	}
	return nil
}

// SaveStorageState decodes a raw storage-state dump from the browser and saves it.
func (s *FileStore) SaveStorageState(raw []byte) error {
	b, err := DecodeBundle(raw)
	if err != nil {
		return err
	}
	return s.Save(b)
}
