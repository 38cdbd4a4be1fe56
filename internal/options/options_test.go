package options

import (
	"testing"

	"shrtfly-integration/internal/config"
)

func TestNewStore(t *testing.T) {
	cfg := config.Defaults()
	cfg.FileStoragePath = t.TempDir()

	tests := []struct {
		storeType string
		check     func(Store) bool
	}{
		{"memory", func(s Store) bool { _, ok := s.(*MemoryStore); return ok }},
		{"file", func(s Store) bool { _, ok := s.(*FileStore); return ok }},
		{"unknown", func(s Store) bool { _, ok := s.(*MemoryStore); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.storeType, func(t *testing.T) {
			store, err := NewStore(tt.storeType, cfg)
			if err != nil {
				t.Fatalf("NewStore(%s) error = %v", tt.storeType, err)
			}
			defer store.Close()

			if !tt.check(store) {
				t.Errorf("NewStore(%s) returned %T", tt.storeType, store)
			}
		})
	}
}
