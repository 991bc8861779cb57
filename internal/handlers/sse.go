package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"etf-dashboard/internal/charts"
	apperrors "etf-dashboard/internal/errors"
	"etf-dashboard/internal/models"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/services"
)

const maxTableRows = 200

var fragmentFuncs = template.FuncMap{
	"amount":   formatFixed,
	"optional": formatOptional,
	"rank":     func(lo, i int) int { return lo + i },
	"selected": func(theme string, selected []string) bool { return slices.Contains(selected, theme) },
}

var fragments = template.Must(template.New("fragments").Funcs(fragmentFuncs).Parse(`
{{define "notices"}}<div id="notices">
{{if .Error}}<div class="notice notice-error">{{.Error}}</div>{{end}}
{{if .Notice}}<div class="notice notice-info">{{.Notice}}</div>{{end}}
{{range .Warnings}}<div class="notice notice-warn" data-code="{{.Code}}">{{.Message}}</div>{{end}}
{{if .Source}}<div class="source">Source: <strong>{{.Source}}</strong></div>{{end}}
</div>{{end}}

{{define "themeOptions"}}<select id="theme-options" multiple data-bind:themes>
{{range .Themes}}<option value="{{.}}"{{if selected . $.Selected}} selected{{end}}>{{.}}</option>
{{end}}</select>{{end}}

{{define "summaryTable"}}<div id="summary-table">
<table class="modern-table">
<thead><tr><th>Theme</th><th>Country</th><th>AUM</th><th>Market Share</th><th>Net Inflow</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Theme}}</td>
<td>{{.Country}}</td>
<td>{{amount .AUM}}</td>
<td>{{optional .MarketShare}}</td>
<td>{{optional .NetInflow}}</td>
</tr>{{end}}
</tbody>
</table>
</div>{{end}}

{{define "etfTable"}}<div id="etf-table">
<p class="table-caption">{{len .Rows}} of {{.Total}} ETFs{{if .Truncated}}, first {{.MaxRows}} shown{{end}}</p>
<table class="modern-table">
<thead><tr><th>Ticker</th><th>ETF Name</th><th>Theme</th><th>AUM</th><th>1Y Return</th><th>AUM Net Inflow</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Ticker}}</td>
<td>{{.Name}}</td>
<td><span class="category-badge">{{.Theme}}</span></td>
<td>{{amount .AUM}}</td>
<td><strong>{{.OneYearReturnLabel}}</strong></td>
<td>{{optional .AUMNetInflow}}</td>
</tr>{{end}}
</tbody>
</table>
</div>{{end}}

{{define "rankTable"}}<div id="{{.ID}}">
{{if .Warning}}<div class="notice notice-warn">{{.Warning}}</div>{{else}}
<table class="modern-table">
<thead><tr><th>Rank</th><th>Ticker</th><th>ETF Name</th><th>Theme</th><th>{{.Label}}</th></tr></thead>
<tbody>
{{range $i, $e := .Rows}}<tr>
<td>{{rank $.Lo $i}}</td>
<td>{{$e.Ticker}}</td>
<td>{{$e.Name}}</td>
<td>{{$e.Theme}}</td>
<td>{{if $.ByInflow}}{{optional $e.AUMNetInflow}}{{else}}{{$e.OneYearReturnLabel}}{{end}}</td>
</tr>{{end}}
</tbody>
</table>{{end}}
</div>{{end}}
`))

type noticeData struct {
	Error    string
	Notice   string
	Warnings []models.Warning
	Source   string
}

type etfTableData struct {
	Rows      []models.ETFRecord
	Total     int
	Truncated bool
	MaxRows   int
}

type rankTableData struct {
	ID       string
	Label    string
	Lo       int
	ByInflow bool
	Rows     []models.ETFRecord
	Warning  string
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFixed(*v)
}

func renderFragment(name string, data any) (string, error) {
	var buf strings.Builder
	err := fragments.ExecuteTemplate(&buf, name, data)
	return buf.String(), err
}

// HandleDashboard runs one pipeline pass for the page's current signals and
// patches every table, notice and chart spec.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var q services.Query
	if err := datastar.ReadSignals(r, &q); err != nil {
		sse := datastar.NewSSE(w, r)
		h.patchError(sse, apperrors.BadRequestWrap(err, "invalid dashboard signals"))
		return
	}

	sse := datastar.NewSSE(w, r)
	h.stream(sse, r, q)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// stream renders q and writes the patches to sse. Errors are reported in the
// notices area rather than failing the stream.
func (h *SSEHandlers) stream(sse *datastar.ServerSentEventGenerator, r *http.Request, q services.Query) {
	logger := observability.LoggerFrom(r.Context(), h.logger)

	result, err := h.dashboard.Render(r.Context(), q)
	if err != nil {
		h.patchError(sse, err)
		return
	}

	html, err := renderFragment("notices", noticeData{
		Notice:   result.Notice,
		Warnings: result.Warnings,
		Source:   result.Source,
	})
	if err != nil {
		logger.Error("render notices", "error", err)
		return
	}
	sse.PatchElements(html)

	if result.Inert {
		h.patchSignals(sse, logger, map[string]any{
			"charts": map[string]any{},
			"total":  0,
			"ready":  false,
		})
		return
	}

	for _, frag := range []struct {
		name string
		data any
	}{
		{"themeOptions", result},
		{"summaryTable", map[string]any{"Rows": result.Summary}},
		{"etfTable", etfTable(result)},
		{"rankTable", rankTableData{
			ID:    "return-rank-table",
			Label: "1Y Return",
			Lo:    result.ReturnWindow.Lo,
			Rows:  result.ReturnRank,
		}},
		{"rankTable", inflowRankTable(result)},
	} {
		html, err := renderFragment(frag.name, frag.data)
		if err != nil {
			logger.Error("render fragment", "fragment", frag.name, "error", err)
			return
		}
		sse.PatchElements(html)
	}

	specs := make(map[string]any, len(result.Views))
	for _, v := range result.Views {
		specs[v.ID] = charts.VegaLite(v)
	}

	h.patchSignals(sse, logger, map[string]any{
		"charts":    specs,
		"total":     result.Total,
		"ready":     true,
		"date":      result.Date,
		"themes":    result.Selected,
		"allThemes": false,
		"returnLo":  result.ReturnWindow.Lo,
		"returnHi":  result.ReturnWindow.Hi,
		"inflowLo":  result.InflowWindow.Lo,
		"inflowHi":  result.InflowWindow.Hi,
	})
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, logger *slog.Logger, signals map[string]any) {
	data, err := json.Marshal(signals)
	if err != nil {
		logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(data)
}

func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, err error) {
	msg := "An unexpected error occurred"
	if appErr, ok := apperrors.As(err); ok {
		msg = appErr.Message
		if appErr.Details != "" {
			msg += ": " + appErr.Details
		}
	}
	h.logger.Warn("dashboard stream failed", "error", err)

	html, rerr := renderFragment("notices", noticeData{Error: msg})
	if rerr != nil {
		h.logger.Error("render notices", "error", rerr)
		return
	}
	sse.PatchElements(html)
}

func etfTable(result *services.Result) etfTableData {
	rows := result.Filtered
	truncated := len(rows) > maxTableRows
	if truncated {
		rows = rows[:maxTableRows]
	}
	return etfTableData{
		Rows:      rows,
		Total:     len(result.Filtered),
		Truncated: truncated,
		MaxRows:   maxTableRows,
	}
}

func inflowRankTable(result *services.Result) rankTableData {
	data := rankTableData{
		ID:       "inflow-rank-table",
		Label:    "AUM Net Inflow",
		Lo:       result.InflowWindow.Lo,
		ByInflow: true,
		Rows:     result.InflowRank,
	}
	for _, w := range result.Warnings {
		if w.Code == models.WarnAUMNetInflowMissing {
			data.Warning = w.Message
		}
	}
	return data
}
