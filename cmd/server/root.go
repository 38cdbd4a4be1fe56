package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shrtfly-integration/internal/api"
	"shrtfly-integration/internal/config"
	"shrtfly-integration/internal/options"
	"shrtfly-integration/internal/ratelimit"
	"shrtfly-integration/internal/shrtfly"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shrtfly",
		Short: "ShrtFly integration service",
		Long: `Serves the ShrtFly full-page script hooks and admin settings for a site.

Configuration comes from the environment, optionally overlaid on a YAML or
TOML file named by CONFIG_FILE.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newLifecycleCommand("activate", "Seed the default options", (*shrtfly.Service).Activate),
		newLifecycleCommand("deactivate", "Clear the scheduled cleanup hook", (*shrtfly.Service).Deactivate),
		newLifecycleCommand("uninstall", "Delete every stored option", (*shrtfly.Service).Uninstall),
		newRenderCommand(),
	)

	return rootCmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newLifecycleCommand(name, short string, hook func(*shrtfly.Service, context.Context, shrtfly.Principal) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(os.Stderr)
			if err != nil {
				return err
			}
			defer app.close()

			return hook(app.svc, ctxOrBackground(cmd), shrtfly.Administrator)
		},
	}
}

func newRenderCommand() *cobra.Command {
	var admin, amp bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print what the page hooks would inject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(os.Stderr)
			if err != nil {
				return err
			}
			defer app.close()

			return render(ctxOrBackground(cmd), cmd.OutOrStdout(), app.svc, shrtfly.RenderContext{IsAdmin: admin, IsAMP: amp})
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "render as an admin dashboard page")
	cmd.Flags().BoolVar(&amp, "amp", false, "render the AMP block instead of the script tags")
	return cmd
}

// render writes the script tags, or the AMP block with --amp. Nothing is
// written when the hook would not emit.
func render(ctx context.Context, w io.Writer, svc *shrtfly.Service, rc shrtfly.RenderContext) error {
	if rc.IsAMP {
		block, ok, err := svc.RenderAMP(ctx, rc)
		if err != nil || !ok {
			return err
		}
		_, err = io.WriteString(w, block)
		return err
	}

	result := svc.Render(ctx, rc)
	if !result.Emit {
		return nil
	}
	_, err := io.WriteString(w, result.HTML)
	return err
}

// app is the wiring shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  options.Store
	svc    *shrtfly.Service
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(logOut, cfg.LogLevel)
	slog.SetDefault(logger)

	store, err := options.NewStore(cfg.OptionStore, cfg)
	if err != nil {
		logger.Error("failed to initialize option store", slog.String("error", err.Error()))
		return nil, err
	}

	svc := shrtfly.NewService(store, logger, shrtfly.ServiceOptions{
		AMPPluginActive: cfg.AMPPluginActive,
		DemoDomainsPath: cfg.DemoDomainsPath,
	})
	return &app{cfg: cfg, logger: logger, store: store, svc: svc}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close option store", slog.String("error", err.Error()))
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ctxOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runServe(ctx context.Context) error {
	app, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	defer app.close()

	cfg, logger := app.cfg, app.logger
	logger.Info("loading configuration",
		slog.String("port", cfg.Port),
		slog.String("option_store", cfg.OptionStore),
		slog.Bool("amp_plugin_active", cfg.AMPPluginActive),
		slog.Int("rate_limit", cfg.RateLimitPerSecond),
	)

	rateLimiter := ratelimit.NewRateLimiter(cfg.RateLimitPerSecond)
	defer rateLimiter.Stop()

	handler := api.NewHandler(app.svc, cfg, logger)
	router := api.NewRouter(handler, rateLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server exited successfully")
	return nil
}
