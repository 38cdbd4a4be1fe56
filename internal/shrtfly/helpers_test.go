package shrtfly

import (
	"context"
	"errors"

	"shrtfly-integration/internal/options"
)

var errStoreDown = errors.New("store unavailable")

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errStoreDown }
func (failingStore) Set(context.Context, string, string) error { return errStoreDown }
func (failingStore) Add(context.Context, string, string) (bool, error) { return false, errStoreDown }
func (failingStore) Delete(context.Context, string) error { return errStoreDown }
func (failingStore) Close() error { return nil }

var _ options.Store = failingStore{}

// enabledConfig returns a Configuration with the integration switched on.
func enabledConfig() Configuration {
	cfg := DefaultConfiguration()
	cfg.Enabled = true
	return cfg
}
