package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"etf-dashboard/internal/fixtures"
	"etf-dashboard/internal/middleware"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/pipeline"
	"etf-dashboard/internal/server"
	"etf-dashboard/internal/services"
	"etf-dashboard/internal/source"
)

func newTestServer(t *testing.T, withWorkbook bool) (*server.Server, *services.Dashboard, *observability.Metrics) {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := source.NewLoader(source.Options{DataDir: dir, MaxUploadBytes: 1 << 20}, logger)
	if withWorkbook {
		fixtures.WriteWorkbook(t, dir, loader.FileName(time.Now()), fixtures.SummaryRows(), fixtures.RAWRows())
	}

	metrics := observability.NewMetrics()
	dashboard := services.NewDashboard(loader, pipeline.DefaultOptions(), metrics, logger)
	templateHandlers := &server.TemplateHandlers{Dashboard: dashboardPage(dashboard)}
	return server.NewServer(dashboard, metrics, 1<<20, logger, templateHandlers), dashboard, metrics
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/summary", http.StatusOK, "application/json"},
		{"/api/etfs", http.StatusOK, "application/json"},
		{"/api/rank?key=inflow", http.StatusOK, "application/json"},
		{"/api/views", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/sse/dashboard", http.StatusOK, "text/event-stream"},
		{"/metrics", http.StatusOK, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_FileMissing(t *testing.T) {
	srv, _, _ := newTestServer(t, false)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/etfs", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// the page itself still renders so the user can upload
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("page status = %d, want %d", w.Code, http.StatusOK)
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/summary", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"GET", "/upload", http.StatusMethodNotAllowed},
		{"GET", "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	_, dashboard, _ := newTestServer(t, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	dashboardPage(dashboard)(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, pageTitle) {
		t.Error("dashboard should contain title")
	}

	expected := []string{
		`data-init="@get('/sse/dashboard')"`,
		`data-bind:themes`,
		`allThemes`,
		`data-attr:max="$total"`,
		`name="file"`,
		dashboard.Today().Format("2006-01-02"),
	}
	for _, id := range chartOrder {
		expected = append(expected, `id="chart-`+id+`"`)
	}

	for _, component := range expected {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}

func TestMiddlewareChain_CountsRequests(t *testing.T) {
	srv, _, metrics := newTestServer(t, true)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
	)(srv)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "cdn.jsdelivr.net") {
		t.Errorf("csp should allow the chart libraries, got %q", csp)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), `etf_dashboard_http_requests_total{method="GET",status="200"}`) {
		t.Error("metrics should count the health request")
	}
}
