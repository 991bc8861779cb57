package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	apperrors "etf-dashboard/internal/errors"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/services"
)

// multipart overhead allowed on top of the workbook size limit
const formOverhead = 1 << 20

type UploadHandlers struct {
	dashboard *services.Dashboard
	sse       *SSEHandlers
	maxBytes  int64
	logger    *slog.Logger
}

func NewUploadHandlers(dashboard *services.Dashboard, sse *SSEHandlers, maxBytes int64, logger *slog.Logger) *UploadHandlers {
	return &UploadHandlers{
		dashboard: dashboard,
		sse:       sse,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// HandleUpload accepts a single .xlsx workbook in the "file" form field. A
// datastar request gets the refreshed dashboard streamed back, anything else
// a JSON acknowledgement.
func (h *UploadHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	fromDatastar := r.Header.Get("Datastar-Request") == "true"

	fail := func(err error) {
		if fromDatastar {
			h.sse.patchError(datastar.NewSSE(w, r), err)
			return
		}
		apperrors.WriteError(w, h.logger, err, requestID)
	}

	limit := h.maxBytes + formOverhead
	if r.ContentLength > limit {
		fail(apperrors.PayloadTooLarge("workbook is too large"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(apperrors.PayloadTooLarge("workbook is too large"))
			return
		}
		fail(apperrors.BadRequestWrap(err, "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		fail(apperrors.UnsupportedFile("upload a single .xlsx workbook"))
		return
	}

	header := files[0]
	f, err := header.Open()
	if err != nil {
		fail(apperrors.BadRequestWrap(err, "could not read uploaded file"))
		return
	}
	defer f.Close()

	if err := h.dashboard.Upload(r.Context(), header.Filename, f); err != nil {
		fail(err)
		return
	}

	if !fromDatastar {
		apperrors.WriteSuccess(w, map[string]any{
			"uploaded": h.dashboard.UploadName(),
			"bytes":    header.Size,
		})
		return
	}

	sse := datastar.NewSSE(w, r)
	h.sse.stream(sse, r, services.Query{Date: r.FormValue("date")})
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
