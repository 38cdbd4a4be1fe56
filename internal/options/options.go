// Package options provides a pluggable option store with multiple backend
// implementations: in-memory, file-based, Redis and SQLite. It is a plain
// key/value pass-through; validation belongs to the callers.
package options

import (
	"context"
	"errors"
	"strings"

	"shrtfly-integration/internal/config"
)

// ErrOptionNotFound is returned when an option key does not exist.
var ErrOptionNotFound = errors.New("option not found")

// Store defines the interface for option store implementations.
// All methods are expected to be safe for concurrent use, and every write
// touches a single key atomically.
type Store interface {
	// Get retrieves an option value. Returns ErrOptionNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores an option value, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Add stores an option value only if the key doesn't exist yet.
	// It reports whether the value was written.
	Add(ctx context.Context, key, value string) (bool, error)

	// Delete removes an option. Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store implementation.
	Close() error
}

// NewStore creates a new Store instance based on the specified type.
// Supported types: "memory", "file", "redis", "sqlite". Defaults to "memory" for unknown types.
func NewStore(storeType string, cfg *config.Config) (Store, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.FileStoragePath)
	case "redis":
		return NewRedisStore(cfg)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return NewMemoryStore(), nil
	}
}

// GetDefault returns the stored value for key, or defaultValue when the key is absent.
func GetDefault(ctx context.Context, s Store, key, defaultValue string) (string, error) {
	value, err := s.Get(ctx, key)
	if errors.Is(err, ErrOptionNotFound) {
		return defaultValue, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// ParseBool interprets a stored checkbox value. Checkboxes are saved as "1" or "",
// and the activation defaults use "0".
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// FormatBool renders a checkbox value the way it is persisted.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return ""
}
