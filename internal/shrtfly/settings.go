// Package shrtfly holds the ShrtFly full-page script integration: the option
// model, domain list validation, settings save, lifecycle hooks and the
// script and AMP payloads handed to the host page renderer.
package shrtfly

import (
	"context"
	"fmt"
	"strings"

	"shrtfly-integration/internal/options"
)

// OptionPrefix is shared by every persisted option key.
const OptionPrefix = "wp_shrtfly_integration_option"

// Option keys.
const (
	OptionEnabled      = OptionPrefix + "_enabled"
	OptionEnabledStats = OptionPrefix + "_enabled_stats" // legacy, only removed on uninstall
	OptionEnabledAMP   = OptionPrefix + "_enabled_amp"
	OptionAPIToken     = OptionPrefix + "_api_token"
	OptionDomainMode   = OptionPrefix + "_include_exclude_domains_choose"
	OptionDomainList   = OptionPrefix + "_include_exclude_domains_value"
	OptionAdsType      = OptionPrefix + "_ads_type"
)

// AllOptionKeys lists every key the integration may have written.
var AllOptionKeys = []string{
	OptionEnabled,
	OptionEnabledStats,
	OptionEnabledAMP,
	OptionAPIToken,
	OptionDomainMode,
	OptionDomainList,
	OptionAdsType,
}

// UnsetAPIToken is passed to the ShrtFly script when no token is configured.
const UnsetAPIToken = "-1"

// AdsType selects the advert category served by ShrtFly.
type AdsType string

const (
	AdsMainstream AdsType = "mainstream"
	AdsAdult      AdsType = "adult"
)

// Code is the numeric advert type the ShrtFly script expects.
func (a AdsType) Code() int {
	if a == AdsAdult {
		return 2
	}
	return 1
}

// DomainMode selects whether the domain list is an allow list or a deny list.
// Values other than include and exclude are kept as stored and behave like
// an empty exclude list.
type DomainMode string

const (
	DomainInclude DomainMode = "include"
	DomainExclude DomainMode = "exclude"
)

// Configuration is a read-only snapshot of the integration options.
type Configuration struct {
	Enabled    bool
	EnabledAMP bool
	APIToken   string
	AdsType    AdsType
	DomainMode DomainMode
	DomainList []string
}

// DefaultConfiguration is what an empty option store yields.
func DefaultConfiguration() Configuration {
	return Configuration{
		APIToken:   UnsetAPIToken,
		AdsType:    AdsMainstream,
		DomainMode: DomainExclude,
		DomainList: []string{},
	}
}

// LoadConfiguration reads a Configuration snapshot from the store. Missing keys
// take their default; any other store failure is returned.
func LoadConfiguration(ctx context.Context, store options.Store) (Configuration, error) {
	cfg := DefaultConfiguration()

	get := func(key, def string) (string, error) {
		v, err := options.GetDefault(ctx, store, key, def)
		if err != nil {
			return "", fmt.Errorf("read option %s: %w", key, err)
		}
		return v, nil
	}

	enabled, err := get(OptionEnabled, "")
	if err != nil {
		return cfg, err
	}
	enabledAMP, err := get(OptionEnabledAMP, "")
	if err != nil {
		return cfg, err
	}
	token, err := get(OptionAPIToken, "")
	if err != nil {
		return cfg, err
	}
	mode, err := get(OptionDomainMode, string(DomainExclude))
	if err != nil {
		return cfg, err
	}
	list, err := get(OptionDomainList, "")
	if err != nil {
		return cfg, err
	}
	adsType, err := get(OptionAdsType, string(AdsMainstream))
	if err != nil {
		return cfg, err
	}

	cfg.Enabled = options.ParseBool(enabled)
	cfg.EnabledAMP = options.ParseBool(enabledAMP)
	if token = strings.TrimSpace(token); token != "" {
		cfg.APIToken = token
	}
	cfg.DomainMode = DomainMode(mode)
	cfg.DomainList = ParseDomainList(list)
	cfg.AdsType = AdsType(adsType)

	return cfg, nil
}
