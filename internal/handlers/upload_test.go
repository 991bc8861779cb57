package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"etf-dashboard/internal/fixtures"
)

type uploadPart struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, parts ...uploadPart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile("file", p.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestUploadHandlers(t *testing.T) *UploadHandlers {
	t.Helper()
	dashboard := createTestDashboard(t, false)
	return NewUploadHandlers(dashboard, NewSSEHandlers(dashboard, testLogger()), 1<<20, testLogger())
}

func TestUploadHandlers_JSON(t *testing.T) {
	handlers := newTestUploadHandlers(t)
	workbook := fixtures.Workbook(t, fixtures.SummaryRows(), fixtures.RAWRows())

	w := httptest.NewRecorder()
	handlers.HandleUpload(w, multipartRequest(t, uploadPart{"today.xlsx", workbook}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	data := decodeEnvelope(t, w.Body)["data"].(map[string]any)
	if name := data["uploaded"]; name != "today.xlsx" {
		t.Errorf("uploaded = %v, want today.xlsx", name)
	}
}

func TestUploadHandlers_Datastar(t *testing.T) {
	handlers := newTestUploadHandlers(t)
	workbook := fixtures.Workbook(t, fixtures.SummaryRows(), fixtures.RAWRows())

	req := multipartRequest(t, uploadPart{"today.xlsx", workbook})
	req.Header.Set("Datastar-Request", "true")
	w := httptest.NewRecorder()
	handlers.HandleUpload(w, req)

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Fatalf("content-type = %q, want an event stream", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "today.xlsx") {
		t.Error("refreshed dashboard should name the uploaded source")
	}
	if !strings.Contains(body, `id="etf-table"`) {
		t.Error("refreshed dashboard should patch the ETF table")
	}
}

func TestUploadHandlers_Rejects(t *testing.T) {
	workbook := fixtures.Workbook(t, fixtures.SummaryRows(), fixtures.RAWRows())

	tests := []struct {
		name   string
		parts  []uploadPart
		status int
	}{
		{"no file", nil, http.StatusUnsupportedMediaType},
		{"two files", []uploadPart{{"a.xlsx", workbook}, {"b.xlsx", workbook}}, http.StatusUnsupportedMediaType},
		{"not xlsx", []uploadPart{{"a.csv", []byte("a,b")}}, http.StatusUnsupportedMediaType},
		{"corrupt", []uploadPart{{"a.xlsx", []byte("not a zip")}}, http.StatusUnsupportedMediaType},
		{"missing sheet", []uploadPart{{"a.xlsx", fixtures.Workbook(t, nil, fixtures.RAWRows())}}, http.StatusBadRequest},
		{"too large", []uploadPart{{"a.xlsx", make([]byte, 3<<20)}}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := newTestUploadHandlers(t)
			w := httptest.NewRecorder()
			handlers.HandleUpload(w, multipartRequest(t, tt.parts...))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
		})
	}
}
