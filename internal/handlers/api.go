package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"etf-dashboard/internal/charts"
	apperrors "etf-dashboard/internal/errors"
	"etf-dashboard/internal/models"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/pipeline"
	"etf-dashboard/internal/services"
)

var noStore = map[string]string{
	"Cache-Control": "no-store",
}

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// render runs the pipeline for the request's query parameters.
func (h *APIHandlers) render(w http.ResponseWriter, r *http.Request) (*services.Result, bool) {
	q, err := parseQuery(r)
	if err != nil {
		apperrors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return nil, false
	}
	return h.renderQuery(w, r, q)
}

// renderQuery runs the pipeline for q and writes the error response itself
// when there is nothing to return.
func (h *APIHandlers) renderQuery(w http.ResponseWriter, r *http.Request, q services.Query) (*services.Result, bool) {
	requestID := observability.GetRequestID(r.Context())

	result, err := h.dashboard.Render(r.Context(), q)
	if err != nil {
		apperrors.WriteError(w, h.logger, err, requestID)
		return nil, false
	}

	if result.Inert {
		name := h.dashboard.FileName(q.DateOr(h.dashboard.Today()))
		apperrors.WriteError(w, h.logger, apperrors.FileMissing(name), requestID)
		return nil, false
	}
	return result, true
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := h.render(w, r)
	if !ok {
		return
	}

	apperrors.WriteSuccessWithHeaders(w, map[string]any{
		"source":         result.Source,
		"records":        result.Summary,
		"country_shares": result.CountryShares,
		"warnings":       result.Warnings,
	}, noStore)
}

func (h *APIHandlers) HandleETFs(w http.ResponseWriter, r *http.Request) {
	result, ok := h.render(w, r)
	if !ok {
		return
	}

	apperrors.WriteSuccessWithHeaders(w, map[string]any{
		"source":   result.Source,
		"themes":   result.Themes,
		"selected": result.Selected,
		"total":    result.Total,
		"records":  result.Filtered,
	}, noStore)
}

// HandleRank serves one rank window over every ETF: key=return|inflow, lo, hi.
func (h *APIHandlers) HandleRank(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	params := r.URL.Query()

	key := models.RankKey(params.Get("key"))
	if key == "" {
		key = models.RankByReturn
	}
	if key != models.RankByReturn && key != models.RankByInflow {
		apperrors.WriteError(w, h.logger, apperrors.BadRequest("key must be return or inflow"), requestID)
		return
	}

	var win models.Window
	for _, p := range []struct {
		name string
		dst  *int
	}{{"lo", &win.Lo}, {"hi", &win.Hi}} {
		raw := params.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apperrors.WriteError(w, h.logger, apperrors.BadRequest("invalid "+p.name), requestID)
			return
		}
		*p.dst = n
	}

	q := services.Query{Date: params.Get("date")}
	if key == models.RankByInflow {
		q.InflowLo, q.InflowHi = win.Lo, win.Hi
	} else {
		q.ReturnLo, q.ReturnHi = win.Lo, win.Hi
	}

	result, ok := h.renderQuery(w, r, q)
	if !ok {
		return
	}

	records, window, viewID := result.ReturnRank, result.ReturnWindow, pipeline.ViewReturnRank
	if key == models.RankByInflow {
		records, window, viewID = result.InflowRank, result.InflowWindow, pipeline.ViewInflowRank
	}
	view, _ := result.View(viewID)

	apperrors.WriteSuccessWithHeaders(w, map[string]any{
		"key":     key,
		"window":  window,
		"total":   result.Total,
		"records": records,
		"view":    view,
	}, noStore)
}

func (h *APIHandlers) HandleViews(w http.ResponseWriter, r *http.Request) {
	result, ok := h.render(w, r)
	if !ok {
		return
	}

	specs := make(map[string]any, len(result.Views))
	for _, v := range result.Views {
		specs[v.ID] = charts.VegaLite(v)
	}

	apperrors.WriteSuccessWithHeaders(w, map[string]any{
		"views":    result.Views,
		"specs":    specs,
		"warnings": result.Warnings,
	}, noStore)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	apperrors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, h.dashboard.Stats())
}
