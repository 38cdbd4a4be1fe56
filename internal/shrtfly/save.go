package shrtfly

import (
	"context"
	"fmt"

	"shrtfly-integration/internal/options"
)

// SettingsInput is the raw settings form submission. Unchecked checkboxes
// arrive as false.
type SettingsInput struct {
	Enabled    bool
	EnabledAMP bool
	APIToken   string
	AdsType    string
	DomainMode string
	DomainList string
}

// NoticeType is the severity of an admin notice.
type NoticeType string

const (
	NoticeError   NoticeType = "error"
	NoticeSuccess NoticeType = "success"
)

// Notice is a message shown at the top of the settings page after a save.
type Notice struct {
	Setting string     `json:"setting"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Type    NoticeType `json:"type"`
}

// SaveResult reports the outcome of a settings save.
type SaveResult struct {
	// Saved is false when the principal was not allowed to save.
	Saved bool
	// Stored maps every written key to its persisted value.
	Stored  map[string]string
	Notices []Notice
	// InvalidDomains lists domain entries dropped from the saved list.
	InvalidDomains []string
}

// SaveSettings sanitizes a form submission and persists it. Invalid domain
// entries are dropped and reported in a single notice; the rest is saved
// anyway. Principals without the manage-options capability get a silent no-op.
func SaveSettings(ctx context.Context, store options.Store, p Principal, in SettingsInput) (SaveResult, error) {
	result := SaveResult{Stored: map[string]string{}}
	if !p.CanManageOptions {
		return result, nil
	}

	domains, verr := SanitizeDomainList(in.DomainList)

	values := []struct {
		key   string
		value string
	}{
		{OptionEnabled, options.FormatBool(in.Enabled)},
		{OptionAPIToken, SanitizeText(in.APIToken)},
		{OptionEnabledAMP, options.FormatBool(in.EnabledAMP)},
		{OptionDomainMode, SanitizeText(in.DomainMode)},
		{OptionAdsType, SanitizeText(in.AdsType)},
		{OptionDomainList, domains},
	}

	for _, v := range values {
		if err := store.Set(ctx, v.key, v.value); err != nil {
			return result, fmt.Errorf("save option %s: %w", v.key, err)
		}
		result.Stored[v.key] = v.value
	}
	result.Saved = true

	if verr != nil {
		result.InvalidDomains = verr.Invalid
		result.Notices = append(result.Notices, Notice{
			Setting: verr.Setting,
			Code:    "invalid_domains",
			Message: verr.Error(),
			Type:    NoticeError,
		})
	} else {
		result.Notices = append(result.Notices, Notice{
			Setting: "general",
			Code:    "settings_updated",
			Message: "Settings saved.",
			Type:    NoticeSuccess,
		})
	}

	return result, nil
}
