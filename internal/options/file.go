package options

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileOption represents an option stored on disk as JSON.
// The name is kept alongside the value so the directory stays inspectable.
type fileOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileStore is a file-based option store that keeps each option in its own JSON
// file within the base directory. Options survive process restarts.
// All methods are safe for concurrent use.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a new FileStore rooted at basePath, creating the directory
// with 0755 permissions if needed. Returns an error if the directory cannot be created.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}

	return &FileStore{basePath: basePath}, nil
}

// path derives a safe filename from an option key by hashing it, so keys such as
// "../../../etc/passwd" cannot escape the base directory.
func (s *FileStore) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.basePath, hex.EncodeToString(hash[:])+".json")
}

// Get reads the option file for key. Returns ErrOptionNotFound if it doesn't exist.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrOptionNotFound
	}
	if err != nil {
		return "", err
	}

	var opt fileOption
	if err := json.Unmarshal(data, &opt); err != nil {
		return "", fmt.Errorf("decode option %s: %w", key, err)
	}

	return opt.Value, nil
}

// Set writes the option file for key with 0644 permissions.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	data, err := json.Marshal(fileOption{Name: key, Value: value})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeAtomic(s.path(key), data)
}

// Add creates the option file only if it doesn't exist yet.
func (s *FileStore) Add(_ context.Context, key, value string) (bool, error) {
	data, err := json.Marshal(fileOption{Name: key, Value: value})
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the option file. A missing file is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op for FileStore as there are no open resources to clean up.
func (s *FileStore) Close() error {
	return nil
}

// writeAtomic writes through a temp file and renames it into place, so readers
// never observe a partially written option.
func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.basePath, ".option-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
