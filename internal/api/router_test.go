package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shrtfly-integration/internal/ratelimit"
	"shrtfly-integration/internal/shrtfly"
)

func newTestServer(t *testing.T, limit int) (*httptest.Server, *Handler) {
	t.Helper()

	handler, _ := newTestHandler(t, true)
	limiter := ratelimit.NewRateLimiter(limit)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(NewRouter(handler, limiter))
	t.Cleanup(srv.Close)
	return srv, handler
}

func do(t *testing.T, method, url, body string, admin bool) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	resp := do(t, "POST", srv.URL+"/admin/activate", "", true)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("activate: expected 204, got %d", resp.StatusCode)
	}

	form := "wp_shrtfly_integration_option_enabled=1" +
		"&wp_shrtfly_integration_option_enabled_amp=1" +
		"&wp_shrtfly_integration_option_api_token=abc" +
		"&wp_shrtfly_integration_option_include_exclude_domains_choose=include" +
		"&wp_shrtfly_integration_option_include_exclude_domains_value=a.com"
	resp = do(t, "POST", srv.URL+"/admin/settings", form, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, "GET", srv.URL+"/hooks/render", "", false)
	var result shrtfly.RenderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !result.Emit || !strings.Contains(result.InlineScript, `var app_domains = ["a.com"];`) {
		t.Errorf("Unexpected render result %+v", result)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header on hook response")
	}

	resp = do(t, "GET", srv.URL+"/hooks/amp", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("amp: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("amp: Content-Type = %q", ct)
	}
}

func TestRouter_UnauthorizedSaveRedirects(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	resp := do(t, "POST", srv.URL+"/admin/settings", "wp_shrtfly_integration_option_enabled=1", false)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/settings" {
		t.Errorf("Location = %q, want /admin/settings", loc)
	}
}

func TestRouter_AdminMutationsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		if resp := do(t, "POST", srv.URL+"/admin/deactivate", "", true); resp.StatusCode != http.StatusNoContent {
			t.Fatalf("Request %d: expected 204, got %d", i+1, resp.StatusCode)
		}
	}
	if resp := do(t, "POST", srv.URL+"/admin/deactivate", "", true); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", resp.StatusCode)
	}

	// Reads are not limited.
	if resp := do(t, "GET", srv.URL+"/hooks/render", "", false); resp.StatusCode != http.StatusOK {
		t.Errorf("render: expected 200, got %d", resp.StatusCode)
	}
}

func TestRouter_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	do(t, "GET", srv.URL+"/hooks/render", "", false)
	do(t, "GET", srv.URL+"/hooks/amp", "", false)

	resp := do(t, "GET", srv.URL+"/metrics", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		t.Fatalf("read body error = %v", err)
	}
	for _, want := range []string{
		`shrtfly_renders_total{emitted="false",hook="render"} 1`,
		`shrtfly_renders_total{emitted="false",hook="amp"} 1`,
		`shrtfly_http_requests_total{code="200"}`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Metrics output missing %q", want)
		}
	}
}
