package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{BadRequest("bad"), http.StatusBadRequest},
		{FileMissing("Thematic ETF_20250106.xlsx"), http.StatusNotFound},
		{PayloadTooLarge("big"), http.StatusRequestEntityTooLarge},
		{UnsupportedFile("csv"), http.StatusUnsupportedMediaType},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{ServiceUnavailable("later"), http.StatusServiceUnavailable},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
		})
	}
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	inner := ValidationWrap(fmt.Errorf("cell B2"), "bad layout").WithDetails("theme column missing")
	wrapped := fmt.Errorf("render: %w", inner)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Equal(t, "theme column missing", appErr.Details)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w := httptest.NewRecorder()
	WriteError(w, logger, FileMissing("Thematic ETF_20250106.xlsx"), "req-1")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp struct {
		Success bool            `json:"success"`
		Error   json.RawMessage `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Contains(t, string(resp.Error), `"code":"FILE_MISSING"`)
	assert.Contains(t, string(resp.Error), `"request_id":"req-1"`)

	w = httptest.NewRecorder()
	WriteError(w, logger, fmt.Errorf("unclassified"), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
