package shrtfly

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shrtfly-integration/internal/options"
)

func newTestService(t *testing.T, ampPluginActive bool) (*Service, *options.MemoryStore, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := options.NewMemoryStore()
	svc := NewService(store, logger, ServiceOptions{AMPPluginActive: ampPluginActive})
	return svc, store, &buf
}

func TestService_RenderDisabled(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	res := svc.Render(context.Background(), RenderContext{})
	assert.False(t, res.Emit)
	assert.Nil(t, res.Script)
	assert.Empty(t, res.HTML)
}

func TestService_RenderEnabled(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	ctx := context.Background()
	_ = store.Set(ctx, OptionEnabled, "1")
	_ = store.Set(ctx, OptionAPIToken, "tok")

	res := svc.Render(ctx, RenderContext{})
	require.True(t, res.Emit)
	require.NotNil(t, res.Script)
	assert.Equal(t, ScriptURL, res.Script.Src)
	assert.Contains(t, res.InlineScript, `var app_api_token = "tok";`)
	assert.Contains(t, res.HTML, res.InlineScript)

	admin := svc.Render(ctx, RenderContext{IsAdmin: true})
	assert.False(t, admin.Emit)
}

func TestService_RenderWithBrokenStoreIsDisabled(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(failingStore{}, slog.New(slog.NewJSONHandler(&buf, nil)), ServiceOptions{})

	res := svc.Render(context.Background(), RenderContext{})
	assert.False(t, res.Emit)
	assert.Contains(t, buf.String(), "failed to load configuration")
}

func TestService_RenderAMP(t *testing.T) {
	ctx := context.Background()

	svc, store, _ := newTestService(t, true)
	_ = store.Set(ctx, OptionEnabled, "1")
	_ = store.Set(ctx, OptionEnabledAMP, "1")

	block, ok, err := svc.RenderAMP(ctx, RenderContext{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, block, "data-vars-shrtfly")

	inactive, istore, _ := newTestService(t, false)
	_ = istore.Set(ctx, OptionEnabled, "1")
	_ = istore.Set(ctx, OptionEnabledAMP, "1")

	_, ok, err = inactive.RenderAMP(ctx, RenderContext{})
	require.NoError(t, err)
	assert.False(t, ok, "no AMP output without the AMP plugin")
}

func TestService_SaveLogsInvalidDomains(t *testing.T) {
	svc, _, logs := newTestService(t, false)

	result, err := svc.Save(context.Background(), Administrator, SettingsInput{DomainList: "ok.com, nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nope"}, result.InvalidDomains)
	assert.Contains(t, logs.String(), "invalid domains dropped from settings")
	assert.Contains(t, logs.String(), "settings saved")
}

func TestService_LifecycleUnauthorized(t *testing.T) {
	svc, store, logs := newTestService(t, false)

	require.NoError(t, svc.Activate(context.Background(), Anonymous))
	assert.Empty(t, store.Keys())
	assert.Contains(t, logs.String(), "lifecycle hook ignored")

	require.NoError(t, svc.Activate(context.Background(), Administrator))
	assert.Len(t, store.Keys(), 4)
}
