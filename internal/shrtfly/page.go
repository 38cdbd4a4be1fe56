package shrtfly

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"

	"shrtfly-integration/internal/options"
)

//go:embed templates/settings.html
var templateFS embed.FS

var settingsTemplate = template.Must(template.ParseFS(templateFS, "templates/settings.html"))

// Placeholders shown instead of the demo domain list when it cannot be read.
const (
	DemoDomainsMissing    = "Domain list file not found or not readable."
	DemoDomainsUnreadable = "Unable to read domain list file."
)

// SettingsPage is the view model of the admin settings form. Field values are
// the raw stored options, not the effective Configuration.
type SettingsPage struct {
	Active          bool
	Notices         []Notice
	Enabled         bool
	EnabledAMP      bool
	AdsType         string
	APIToken        string
	TokenConfigured bool
	DomainMode      string
	DomainList      string
	DemoDomains     string
	// Action is the form's POST target.
	Action string
}

// LoadDemoDomains returns the content of the static demo domain list. A missing
// or unreadable file yields a placeholder message instead of an error.
func LoadDemoDomains(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return DemoDomainsMissing
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return DemoDomainsMissing
		}
		return DemoDomainsUnreadable
	}
	return SanitizeTextarea(string(data))
}

// NewSettingsPage reads the stored options into a SettingsPage.
func NewSettingsPage(ctx context.Context, store options.Store, demoDomainsPath string, notices []Notice) (SettingsPage, error) {
	raw := make(map[string]string, len(AllOptionKeys))
	defaults := map[string]string{
		OptionDomainMode: string(DomainExclude),
		OptionAdsType:    string(AdsMainstream),
	}
	for _, key := range AllOptionKeys {
		v, err := options.GetDefault(ctx, store, key, defaults[key])
		if err != nil {
			return SettingsPage{}, fmt.Errorf("read option %s: %w", key, err)
		}
		raw[key] = v
	}

	return SettingsPage{
		Active:          options.ParseBool(raw[OptionEnabled]),
		Notices:         notices,
		Enabled:         options.ParseBool(raw[OptionEnabled]),
		EnabledAMP:      options.ParseBool(raw[OptionEnabledAMP]),
		AdsType:         raw[OptionAdsType],
		APIToken:        raw[OptionAPIToken],
		TokenConfigured: raw[OptionAPIToken] != "",
		DomainMode:      raw[OptionDomainMode],
		DomainList:      raw[OptionDomainList],
		DemoDomains:     LoadDemoDomains(demoDomainsPath),
		Action:          "/admin/settings",
	}, nil
}

// Render writes the settings form as HTML. All values are escaped by html/template.
func (p SettingsPage) Render(w io.Writer) error {
	return settingsTemplate.Execute(w, p)
}
