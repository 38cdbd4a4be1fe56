package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shrtfly-integration/internal/config"
	"shrtfly-integration/internal/options"
	"shrtfly-integration/internal/shrtfly"
)

const maxBodySize = 1 << 20 // 1MB

// adminCookie is the cookie name accepted in place of a bearer token.
const adminCookie = "admin_token"

type Handler struct {
	svc     *shrtfly.Service
	cfg     *config.Config
	logger  *slog.Logger
	metrics *Metrics
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

func NewHandler(svc *shrtfly.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(),
	}
}

// Metrics returns the handler's metric set.
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// principal maps the request credentials to capabilities. Only the configured
// admin token grants anything; an empty token grants nothing.
func (h *Handler) principal(r *http.Request) shrtfly.Principal {
	if h.cfg.AdminToken == "" {
		return shrtfly.Anonymous
	}

	token := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	} else if c, err := r.Cookie(adminCookie); err == nil {
		token = c.Value
	}

	if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.AdminToken)) == 1 {
		return shrtfly.Administrator
	}
	return shrtfly.Anonymous
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	overallStatus := "healthy"

	store := h.svc.Store()
	testKey := "health:check"
	if err := store.Set(r.Context(), testKey, "ok"); err != nil {
		checks["option_store"] = "unhealthy: " + err.Error()
		overallStatus = "degraded"
	} else {
		checks["option_store"] = "healthy"
		if err := store.Delete(r.Context(), testKey); err != nil {
			h.logger.Warn("failed to delete health check key", slog.String("error", err.Error()))
		}
	}

	response := HealthResponse{
		Status:  overallStatus,
		Time:    time.Now().Format(time.RFC3339),
		Version: shrtfly.ScriptVersion,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	h.sendJSON(w, statusCode, response)
}

// Render is the public page hook. The host passes admin=1 when rendering its
// own dashboard, where nothing is ever emitted.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	rc := shrtfly.RenderContext{IsAdmin: options.ParseBool(r.URL.Query().Get("admin"))}

	result := h.svc.Render(r.Context(), rc)
	h.metrics.observeRender("render", result.Emit)

	h.sendJSON(w, http.StatusOK, result)
}

// RenderAMP is the AMP footer hook. It answers 204 when nothing is emitted.
func (h *Handler) RenderAMP(w http.ResponseWriter, r *http.Request) {
	block, ok, err := h.svc.RenderAMP(r.Context(), shrtfly.RenderContext{IsAMP: true})
	if err != nil {
		h.logger.Error("failed to render amp block", slog.String("error", err.Error()))
		h.sendError(w, http.StatusInternalServerError, "failed to render amp block")
		return
	}
	h.metrics.observeRender("amp", ok)

	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(block))
}

// SettingsPage shows the admin form.
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	if !h.principal(r).CanManageOptions {
		h.sendForbidden(w)
		return
	}
	h.renderSettings(w, r, http.StatusOK, nil)
}

// SaveSettings handles the admin form submission and re-renders the form
// with the resulting notices.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	if !p.CanManageOptions {
		h.metrics.observeSave("unauthorized", 0)
		http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	result, err := h.svc.Save(r.Context(), p, settingsInputFromForm(r))
	if err != nil {
		h.metrics.observeSave("error", 0)
		h.sendError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	outcome := "saved"
	if len(result.InvalidDomains) > 0 {
		outcome = "invalid_domains"
	}
	h.metrics.observeSave(outcome, len(result.InvalidDomains))

	h.renderSettings(w, r, http.StatusOK, result.Notices)
}

func settingsInputFromForm(r *http.Request) shrtfly.SettingsInput {
	f := r.PostForm
	return shrtfly.SettingsInput{
		Enabled:    options.ParseBool(f.Get(shrtfly.OptionEnabled)),
		EnabledAMP: options.ParseBool(f.Get(shrtfly.OptionEnabledAMP)),
		APIToken:   f.Get(shrtfly.OptionAPIToken),
		AdsType:    f.Get(shrtfly.OptionAdsType),
		DomainMode: f.Get(shrtfly.OptionDomainMode),
		DomainList: f.Get(shrtfly.OptionDomainList),
	}
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, status int, notices []shrtfly.Notice) {
	page, err := h.svc.SettingsPage(r.Context(), notices)
	if err != nil {
		h.logger.Error("failed to load settings page", slog.String("error", err.Error()))
		h.sendError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(w); err != nil {
		h.logger.Error("failed to render settings page", slog.String("error", err.Error()))
	}
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.runLifecycle(w, r, h.svc.Activate)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.runLifecycle(w, r, h.svc.Deactivate)
}

func (h *Handler) Uninstall(w http.ResponseWriter, r *http.Request) {
	h.runLifecycle(w, r, h.svc.Uninstall)
}

// runLifecycle answers 204 whether or not the caller was allowed to run the
// hook; only a store failure is reported.
func (h *Handler) runLifecycle(w http.ResponseWriter, r *http.Request, fn func(context.Context, shrtfly.Principal) error) {
	if err := fn(r.Context(), h.principal(r)); err != nil {
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("<p>Sorry, you are not allowed to access this page.</p>\n"))
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic in JSON encoding", slog.Any("panic", r))
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
