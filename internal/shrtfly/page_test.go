package shrtfly

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shrtfly-integration/internal/options"
)

func TestLoadDemoDomains(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domains")
	require.NoError(t, os.WriteFile(path, []byte("bit.ly\n<b>tinyurl.com</b>\n"), 0644))

	assert.Equal(t, "bit.ly\ntinyurl.com", LoadDemoDomains(path))
	assert.Equal(t, DemoDomainsMissing, LoadDemoDomains(filepath.Join(dir, "missing")))
	assert.Equal(t, DemoDomainsMissing, LoadDemoDomains(dir), "a directory is not a list")
}

func TestNewSettingsPage_EmptyStore(t *testing.T) {
	page, err := NewSettingsPage(context.Background(), options.NewMemoryStore(), "/nonexistent/domains", nil)
	require.NoError(t, err)

	assert.False(t, page.Active)
	assert.False(t, page.TokenConfigured)
	assert.Equal(t, "exclude", page.DomainMode)
	assert.Equal(t, "mainstream", page.AdsType)
	assert.Equal(t, "", page.APIToken, "the form shows the raw token, not the sentinel")
	assert.Equal(t, DemoDomainsMissing, page.DemoDomains)
}

func TestNewSettingsPage_StoreFailure(t *testing.T) {
	_, err := NewSettingsPage(context.Background(), failingStore{}, "", nil)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSettingsPage_Render(t *testing.T) {
	ctx := context.Background()
	store := options.NewMemoryStore()
	_ = store.Set(ctx, OptionEnabled, "1")
	_ = store.Set(ctx, OptionAPIToken, `"><script>x</script>`)
	_ = store.Set(ctx, OptionDomainMode, "include")
	_ = store.Set(ctx, OptionDomainList, "a.com,b.com")

	notices := []Notice{{Setting: OptionDomainList, Code: "invalid_domains", Message: "Invalid domain names found: bad!", Type: NoticeError}}
	page, err := NewSettingsPage(ctx, store, "", notices)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	html := buf.String()

	for _, section := range []string{"General Settings", "API Configuration", "Domain Management"} {
		assert.Contains(t, html, section)
	}
	assert.Contains(t, html, "ShrtFly Integration is currently active")
	assert.Contains(t, html, "Configured")
	assert.Contains(t, html, "Invalid domain names found: bad!")
	assert.Contains(t, html, "a.com,b.com")
	assert.Contains(t, html, `value="include" checked="checked"`)
	assert.NotContains(t, html, "<script>x</script>", "stored values must be escaped")
}
