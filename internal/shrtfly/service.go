package shrtfly

import (
	"context"
	"log/slog"

	"shrtfly-integration/internal/options"
)

// Service binds the integration to an option store. Each call loads a fresh
// Configuration snapshot, so a Service is safe for concurrent renders.
type Service struct {
	store           options.Store
	logger          *slog.Logger
	ampPluginActive bool
	demoDomainsPath string
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	AMPPluginActive bool
	DemoDomainsPath string
}

func NewService(store options.Store, logger *slog.Logger, opts ServiceOptions) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:           store,
		logger:          logger,
		ampPluginActive: opts.AMPPluginActive,
		demoDomainsPath: opts.DemoDomainsPath,
	}
}

// Store returns the underlying option store.
func (s *Service) Store() options.Store {
	return s.store
}

// Configuration loads the current options. A store failure is logged and
// yields the defaults, which render as disabled.
func (s *Service) Configuration(ctx context.Context) Configuration {
	cfg, err := LoadConfiguration(ctx, s.store)
	if err != nil {
		s.logger.Warn("failed to load configuration, rendering as disabled", slog.String("error", err.Error()))
		return DefaultConfiguration()
	}
	return cfg
}

// RenderResult is what the public render hook hands back to the host.
type RenderResult struct {
	Emit         bool            `json:"emit"`
	Script       *ScriptResource `json:"script,omitempty"`
	InlineScript string          `json:"inline_script,omitempty"`
	HTML         string          `json:"html,omitempty"`
}

// Render evaluates the public render hook once for a page.
func (s *Service) Render(ctx context.Context, rc RenderContext) RenderResult {
	cfg := s.Configuration(ctx)
	if !ShouldEmit(cfg, rc) {
		return RenderResult{}
	}

	res := ExternalScript()
	return RenderResult{
		Emit:         true,
		Script:       &res,
		InlineScript: BuildInlineScript(cfg),
		HTML:         RenderScriptTags(cfg),
	}
}

// RenderAMP evaluates the AMP render hook once for a page. It reports false
// when nothing should be emitted.
func (s *Service) RenderAMP(ctx context.Context, rc RenderContext) (string, bool, error) {
	rc.IsAMP = true
	cfg := s.Configuration(ctx)
	if !ShouldEmitAMP(cfg, rc, s.ampPluginActive) {
		return "", false, nil
	}

	block, err := RenderAMPBlock(cfg)
	if err != nil {
		return "", false, err
	}
	return block, true, nil
}

// Save persists a settings form submission.
func (s *Service) Save(ctx context.Context, p Principal, in SettingsInput) (SaveResult, error) {
	result, err := SaveSettings(ctx, s.store, p, in)
	if err != nil {
		s.logger.Error("failed to save settings", slog.String("error", err.Error()))
		return result, err
	}
	if !result.Saved {
		s.logger.Warn("settings save ignored for unauthorized principal")
		return result, nil
	}
	if len(result.InvalidDomains) > 0 {
		s.logger.Warn("invalid domains dropped from settings",
			slog.Int("count", len(result.InvalidDomains)),
			slog.Any("domains", result.InvalidDomains))
	}
	s.logger.Info("settings saved", slog.String("domain_mode", result.Stored[OptionDomainMode]))
	return result, nil
}

// SettingsPage builds the admin form view with the given notices.
func (s *Service) SettingsPage(ctx context.Context, notices []Notice) (SettingsPage, error) {
	return NewSettingsPage(ctx, s.store, s.demoDomainsPath, notices)
}

// Activate runs the activation hook.
func (s *Service) Activate(ctx context.Context, p Principal) error {
	return s.lifecycle(ctx, "activate", p, Activate)
}

// Deactivate runs the deactivation hook.
func (s *Service) Deactivate(ctx context.Context, p Principal) error {
	return s.lifecycle(ctx, "deactivate", p, Deactivate)
}

// Uninstall runs the uninstall hook.
func (s *Service) Uninstall(ctx context.Context, p Principal) error {
	return s.lifecycle(ctx, "uninstall", p, Uninstall)
}

func (s *Service) lifecycle(ctx context.Context, name string, p Principal, fn func(context.Context, options.Store, Principal) error) error {
	if !p.CanActivatePlugins {
		s.logger.Warn("lifecycle hook ignored for unauthorized principal", slog.String("hook", name))
		return nil
	}
	if err := fn(ctx, s.store, p); err != nil {
		s.logger.Error("lifecycle hook failed", slog.String("hook", name), slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("lifecycle hook completed", slog.String("hook", name))
	return nil
}
