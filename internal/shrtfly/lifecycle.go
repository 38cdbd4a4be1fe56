package shrtfly

import (
	"context"
	"fmt"

	"shrtfly-integration/internal/options"
)

// Principal carries the capabilities of whoever triggers an admin action.
type Principal struct {
	CanManageOptions   bool
	CanActivatePlugins bool
}

var (
	// Administrator holds every capability.
	Administrator = Principal{CanManageOptions: true, CanActivatePlugins: true}
	// Anonymous holds none.
	Anonymous = Principal{}
)

// CleanupHook is the scheduled job cleared on deactivation and uninstall.
const CleanupHook = "shrtfly_cleanup_transients"

// ScheduledHookKey is the option key under which a scheduled hook is recorded.
func ScheduledHookKey(hook string) string {
	return "cron:" + hook
}

// activationDefaults are seeded on activation; existing values are kept.
var activationDefaults = []struct {
	key   string
	value string
}{
	{OptionEnabled, "0"},
	{OptionEnabledAMP, "0"},
	{OptionDomainMode, string(DomainExclude)},
	{OptionAdsType, string(AdsMainstream)},
}

// Activate seeds the default options. It is idempotent and a silent no-op
// for principals that cannot activate plugins.
func Activate(ctx context.Context, store options.Store, p Principal) error {
	if !p.CanActivatePlugins {
		return nil
	}

	for _, d := range activationDefaults {
		if _, err := store.Add(ctx, d.key, d.value); err != nil {
			return fmt.Errorf("seed option %s: %w", d.key, err)
		}
	}
	return nil
}

// Deactivate clears the scheduled cleanup job and leaves the options in place.
func Deactivate(ctx context.Context, store options.Store, p Principal) error {
	if !p.CanActivatePlugins {
		return nil
	}
	return clearScheduledHook(ctx, store, CleanupHook)
}

// Uninstall permanently deletes every option and the scheduled cleanup job.
func Uninstall(ctx context.Context, store options.Store, p Principal) error {
	if !p.CanActivatePlugins {
		return nil
	}

	for _, key := range AllOptionKeys {
		if err := store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete option %s: %w", key, err)
		}
	}
	return clearScheduledHook(ctx, store, CleanupHook)
}

func clearScheduledHook(ctx context.Context, store options.Store, hook string) error {
	if err := store.Delete(ctx, ScheduledHookKey(hook)); err != nil {
		return fmt.Errorf("clear scheduled hook %s: %w", hook, err)
	}
	return nil
}
