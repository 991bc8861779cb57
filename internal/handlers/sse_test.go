package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"etf-dashboard/internal/models"
	"etf-dashboard/internal/services"
)

func sseRequest(signals string) *http.Request {
	target := "/sse/dashboard"
	if signals != "" {
		target += "?datastar=" + url.QueryEscape(signals)
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(t, true), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(""))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"datastar-patch-elements",
		"datastar-patch-signals",
		`id="notices"`,
		`id="theme-options"`,
		`id="summary-table"`,
		`id="etf-table"`,
		`id="return-rank-table"`,
		`id="inflow-rank-table"`,
		"Global X Lithium",
		"1234.50%",
		"return-scatter",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleDashboard_Signals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(t, true), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"themes":["Battery"],"returnLo":1,"returnHi":2,"charts":{}}`))

	body := w.Body.String()
	if !strings.Contains(body, "1 of 1 ETFs") {
		t.Error("etf table should only list the selected theme")
	}
	if !strings.Contains(body, `"returnHi":2`) {
		t.Error("clamped window should be patched back into the signals")
	}
}

func TestSSEHandlers_HandleDashboard_ThemeSelection(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(t, true), testLogger())

	tests := []struct {
		name    string
		signals string
		caption string
	}{
		{"first load", `{"themes":[],"allThemes":true,"charts":{}}`, "4 of 4 ETFs"},
		{"not sent", `{"charts":{}}`, "4 of 4 ETFs"},
		{"cleared", `{"themes":[],"allThemes":false,"charts":{}}`, "0 of 0 ETFs"},
		{"cleared without flag", `{"themes":[],"charts":{}}`, "0 of 0 ETFs"},
		{"two themes", `{"themes":["AI","Battery"],"charts":{}}`, "2 of 2 ETFs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.HandleDashboard(w, sseRequest(tt.signals))

			body := w.Body.String()
			if !strings.Contains(body, tt.caption) {
				t.Errorf("etf table caption should read %q", tt.caption)
			}
			if !strings.Contains(body, `"allThemes":false`) {
				t.Error("patched signals should switch the page to explicit selection")
			}
		})
	}
}

func TestSSEHandlers_HandleDashboard_FileMissing(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(t, false), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(""))

	body := w.Body.String()
	if !strings.Contains(body, "was not found. Upload the workbook to continue.") {
		t.Error("missing workbook should produce an upload notice")
	}
	if strings.Contains(body, `id="etf-table"`) {
		t.Error("nothing but the notice should be patched while inert")
	}
	if !strings.Contains(body, `"ready":false`) {
		t.Error("inert dashboard should clear the ready signal")
	}
}

func TestSSEHandlers_HandleDashboard_InvalidSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(t, true), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"returnLo":5,"returnHi":1}`))

	body := w.Body.String()
	if !strings.Contains(body, "notice-error") {
		t.Error("validation failures should be shown in the notices area")
	}
	if !strings.Contains(body, "return rank window is inverted") {
		t.Error("notice should carry the validation message")
	}
}

func TestRenderFragment_EscapesCells(t *testing.T) {
	html, err := renderFragment("etfTable", etfTableData{
		Rows:  []models.ETFRecord{{Ticker: "<b>X</b>", Name: "A & B"}},
		Total: 1,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<b>X</b>") {
		t.Error("cell values must be escaped")
	}
	if !strings.Contains(html, "A &amp; B") {
		t.Error("expected escaped ampersand")
	}
}

func TestEtfTable_Truncates(t *testing.T) {
	rows := make([]models.ETFRecord, maxTableRows+5)
	data := etfTable(&services.Result{Filtered: rows})

	if len(data.Rows) != maxTableRows {
		t.Errorf("rows = %d, want %d", len(data.Rows), maxTableRows)
	}
	if !data.Truncated || data.Total != maxTableRows+5 {
		t.Errorf("unexpected table data: truncated=%v total=%d", data.Truncated, data.Total)
	}
}

func TestInflowRankTable_Warning(t *testing.T) {
	data := inflowRankTable(&services.Result{
		Warnings: []models.Warning{{Code: models.WarnAUMNetInflowMissing, Message: "no inflow"}},
	})
	if data.Warning != "no inflow" {
		t.Errorf("warning = %q, want %q", data.Warning, "no inflow")
	}
}
