package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "etf-dashboard/internal/errors"
	"etf-dashboard/internal/models"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/pipeline"
	"etf-dashboard/internal/source"
)

// Workbooks is where the dashboard gets its spreadsheet from.
type Workbooks interface {
	Load(ctx context.Context, date time.Time) (*models.RawTables, error)
	Upload(name string, r io.Reader) error
	UploadName() string
	FileName(date time.Time) string
}

// Result is everything one interaction renders. When Inert is set no workbook
// was available and only Notice and Warnings are meaningful.
type Result struct {
	Date          string                 `json:"date"`
	Source        string                 `json:"source"`
	Inert         bool                   `json:"inert"`
	Notice        string                 `json:"notice,omitempty"`
	Warnings      []models.Warning       `json:"warnings"`
	Themes        []string               `json:"themes"`
	Selected      []string               `json:"selected"`
	Total         int                    `json:"total"`
	Summary       []models.SummaryRecord `json:"summary"`
	Filtered      []models.ETFRecord     `json:"filtered"`
	ReturnWindow  models.Window          `json:"return_window"`
	InflowWindow  models.Window          `json:"inflow_window"`
	ReturnRank    []models.ETFRecord     `json:"return_rank"`
	InflowRank    []models.ETFRecord     `json:"inflow_rank"`
	CountryShares []models.CountryShare  `json:"country_shares"`
	Views         []models.ChartView     `json:"views"`
}

// View returns the chart view with id, if the result has one.
func (r *Result) View(id string) (models.ChartView, bool) {
	for _, v := range r.Views {
		if v.ID == id {
			return v, true
		}
	}
	return models.ChartView{}, false
}

type runStats struct {
	Runs          int64     `json:"runs"`
	LastRun       time.Time `json:"last_run"`
	LastSource    string    `json:"last_source"`
	LastRecords   int       `json:"last_records"`
	LastThemes    int       `json:"last_themes"`
	LastDuration  string    `json:"last_duration"`
	FileMissing   int64     `json:"file_missing"`
	CoercedToZero int64     `json:"coerced_to_zero"`
}

// Dashboard runs the whole load, clean, filter and view pipeline for every
// interaction. Nothing but the uploaded workbook and counters outlives a run.
type Dashboard struct {
	workbooks Workbooks
	opts      pipeline.Options
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	stats runStats
}

func NewDashboard(workbooks Workbooks, opts pipeline.Options, metrics *observability.Metrics, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		workbooks: workbooks,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Render runs one pipeline pass for q.
func (d *Dashboard) Render(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := d.now()
	date := q.DateOr(start)
	logger := observability.LoggerFrom(ctx, d.logger)

	ctx, span := observability.StartSpan(ctx, "dashboard.render",
		attribute.String("date", date.Format(dateLayout)),
		attribute.Int("themes.selected", len(q.Themes)),
	)
	result, err := d.render(ctx, q, date, logger)
	observability.EndSpan(span, err)

	elapsed := d.now().Sub(start)
	d.metrics.PipelineDuration.Observe(elapsed.Seconds())
	d.record(result, err, elapsed)
	return result, err
}

func (d *Dashboard) render(ctx context.Context, q Query, date time.Time, logger *slog.Logger) (*Result, error) {
	raw, err := d.workbooks.Load(ctx, date)
	if err != nil {
		var missing *source.MissingFileError
		if errors.As(err, &missing) {
			d.metrics.PipelineRuns.WithLabelValues("file_missing").Inc()
			d.metrics.Warnings.WithLabelValues(models.WarnFileMissing).Inc()
			logger.Warn("workbook missing, waiting for upload", "expected", missing.FileName)
			notice := fmt.Sprintf("%s was not found. Upload the workbook to continue.", missing.FileName)
			return &Result{
				Date:     date.Format(dateLayout),
				Inert:    true,
				Notice:   notice,
				Warnings: []models.Warning{{Code: models.WarnFileMissing, Message: notice}},
			}, nil
		}
		d.metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, classifyLoadError(err)
	}

	ds, err := pipeline.Clean(raw, d.opts)
	if err != nil {
		d.metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, apperrors.ValidationWrap(err, "workbook layout not recognised").WithDetails(err.Error())
	}

	themes := pipeline.Themes(ds.ETFs)
	selected := q.Selection(themes)
	filtered := pipeline.FilterThemes(ds.ETFs, selected)

	total := len(ds.ETFs)
	returnWin := pipeline.ClampWindow(q.ReturnWindow(), total)
	inflowWin := pipeline.ClampWindow(q.InflowWindow(), total)
	returnRank := pipeline.RankWindow(ds.ETFs, models.RankByReturn, returnWin.Lo, returnWin.Hi)
	inflowRank := []models.ETFRecord{}
	if ds.HasAUMNetInflow {
		inflowRank = pipeline.RankWindow(ds.ETFs, models.RankByInflow, inflowWin.Lo, inflowWin.Hi)
	}

	views, err := d.buildViews(ctx, ds, filtered, returnRank, returnWin, inflowRank, inflowWin)
	if err != nil {
		d.metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, apperrors.InternalWrap(err, "failed to build chart views")
	}

	d.metrics.PipelineRuns.WithLabelValues("ok").Inc()
	d.metrics.CoercedToZero.Add(float64(ds.CoercedToZero))
	for _, w := range ds.Warnings {
		d.metrics.Warnings.WithLabelValues(w.Code).Inc()
	}

	logger.Info("dashboard rendered",
		"source", ds.Source,
		"etfs", total,
		"filtered", len(filtered),
		"summary_rows", len(ds.Summary),
		"warnings", len(ds.Warnings),
	)

	return &Result{
		Date:          date.Format(dateLayout),
		Source:        ds.Source,
		Warnings:      ds.Warnings,
		Themes:        themes,
		Selected:      selected,
		Total:         total,
		Summary:       ds.Summary,
		Filtered:      filtered,
		ReturnWindow:  returnWin,
		InflowWindow:  inflowWin,
		ReturnRank:    returnRank,
		InflowRank:    inflowRank,
		CountryShares: pipeline.CountryShares(ds.Summary),
		Views:         views,
	}, nil
}

// buildViews derives every chart concurrently. Each builder reads only the
// immutable slices produced above and writes its own slot.
func (d *Dashboard) buildViews(ctx context.Context, ds *models.Dataset, filtered, returnRank []models.ETFRecord,
	returnWin models.Window, inflowRank []models.ETFRecord, inflowWin models.Window) ([]models.ChartView, error) {

	builders := []func() models.ChartView{
		func() models.ChartView { return pipeline.ThemeAUMView(ds.Summary) },
		func() models.ChartView { return pipeline.ThemeInflowView(ds.Summary, ds.HasNetInflow) },
		func() models.ChartView { return pipeline.CountryShareView(ds.Summary) },
		func() models.ChartView { return pipeline.ReturnScatterView(filtered) },
		func() models.ChartView { return pipeline.ReturnRankView(returnRank, returnWin.Lo) },
		func() models.ChartView { return pipeline.InflowRankView(inflowRank, inflowWin.Lo, ds.HasAUMNetInflow) },
	}

	views := make([]models.ChartView, len(builders))
	g, ctx := errgroup.WithContext(ctx)
	for i, build := range builders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			views[i] = build()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// Upload hands an uploaded workbook to the source.
func (d *Dashboard) Upload(ctx context.Context, name string, r io.Reader) error {
	logger := observability.LoggerFrom(ctx, d.logger)
	if err := d.workbooks.Upload(name, r); err != nil {
		d.metrics.Uploads.WithLabelValues("rejected").Inc()
		logger.Warn("upload rejected", "name", name, "error", err)
		return classifyUploadError(err)
	}
	d.metrics.Uploads.WithLabelValues("ok").Inc()
	return nil
}

func (d *Dashboard) UploadName() string {
	return d.workbooks.UploadName()
}

func (d *Dashboard) FileName(date time.Time) string {
	return d.workbooks.FileName(date)
}

func (d *Dashboard) Today() time.Time {
	return d.now()
}

func (d *Dashboard) record(result *Result, err error, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Runs++
	d.stats.LastRun = d.now()
	d.stats.LastDuration = elapsed.String()
	if err != nil || result == nil {
		return
	}
	if result.Inert {
		d.stats.FileMissing++
		return
	}
	d.stats.LastSource = result.Source
	d.stats.LastRecords = result.Total
	d.stats.LastThemes = len(result.Themes)
	for _, w := range result.Warnings {
		if w.Code == models.WarnCoercedToZero {
			d.stats.CoercedToZero++
		}
	}
}

// Stats is the monitoring snapshot served on /admin/stats.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"runs":            d.stats.Runs,
		"last_run":        d.stats.LastRun,
		"last_source":     d.stats.LastSource,
		"last_records":    d.stats.LastRecords,
		"last_themes":     d.stats.LastThemes,
		"last_duration":   d.stats.LastDuration,
		"file_missing":    d.stats.FileMissing,
		"coerced_to_zero": d.stats.CoercedToZero,
		"upload":          d.workbooks.UploadName(),
	}
}

func classifyLoadError(err error) error {
	switch {
	case errors.Is(err, source.ErrSheetMissing), errors.Is(err, source.ErrNotWorkbook):
		return apperrors.ValidationWrap(err, "workbook is missing a required sheet").WithDetails(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.ServiceUnavailable("request cancelled").WithDetails(err.Error())
	default:
		return apperrors.InternalWrap(err, "failed to read workbook")
	}
}

func classifyUploadError(err error) error {
	switch {
	case errors.Is(err, source.ErrUploadTooBig):
		return apperrors.Wrap(err, apperrors.CodePayloadTooLarge, "workbook is too large")
	case errors.Is(err, source.ErrUploadInvalid), errors.Is(err, source.ErrNotWorkbook):
		return apperrors.Wrap(err, apperrors.CodeUnsupportedFile, "upload a single .xlsx workbook")
	case errors.Is(err, source.ErrSheetMissing):
		return apperrors.ValidationWrap(err, "workbook must contain Summary and RAW sheets").WithDetails(err.Error())
	default:
		return apperrors.InternalWrap(err, "failed to store upload")
	}
}
