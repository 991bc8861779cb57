package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"etf-dashboard/internal/config"
	"etf-dashboard/internal/middleware"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/pipeline"
	"etf-dashboard/internal/server"
	"etf-dashboard/internal/services"
	"etf-dashboard/internal/source"
	"etf-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	pageCache     = "no-cache"
	pageTitle     = "Thematic ETF Dashboard"
)

var chartOrder = []string{
	pipeline.ViewThemeAUM,
	pipeline.ViewThemeInflow,
	pipeline.ViewCountryShare,
	pipeline.ViewReturnScatter,
	pipeline.ViewReturnRank,
	pipeline.ViewInflowRank,
}

// dashboardPage serves the page shell with today's date preselected.
func dashboardPage(dashboard *services.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		props := templates.PageProps{
			Title:   pageTitle,
			Date:    dashboard.Today().Format("2006-01-02"),
			ChartID: chartOrder,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", pageCache)
		if err := templates.Dashboard(props).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"data_dir", cfg.Source.DataDir,
		"file_pattern", cfg.Source.FilePattern,
		"return_mode", cfg.Source.ReturnMode,
		"footer_rows", cfg.Source.FooterRows,
	)

	tracerProvider, err := observability.NewTracerProvider(cfg.Tracing, os.Stdout)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}
	observability.InstallTracing(tracerProvider)
	logger.Info("tracing initialised",
		"exporter", cfg.Tracing.Exporter,
		"sample_ratio", cfg.Tracing.SampleRatio,
	)

	metrics := observability.NewMetrics()
	loader := source.NewLoader(source.Options{
		DataDir:        cfg.Source.DataDir,
		FilePattern:    cfg.Source.FilePattern,
		MaxUploadBytes: cfg.Source.MaxUploadBytes,
		RawCellValue:   cfg.PipelineOptions().ReturnMode == pipeline.ReturnFraction,
	}, logger)

	if dates, err := loader.Available(); err != nil {
		logger.Warn("could not list workbooks", "error", err)
	} else {
		logger.Info("workbooks available", "count", len(dates))
	}

	dashboard := services.NewDashboard(loader, cfg.PipelineOptions(), metrics, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardPage(dashboard),
	}

	srv := server.NewServer(dashboard, metrics, cfg.Source.MaxUploadBytes, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logger(logger),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook("upload", func(ctx context.Context) error {
		if name := loader.UploadName(); name != "" {
			logger.Info("discarding uploaded workbook", "name", name)
		}
		loader.ClearUpload()
		return nil
	})

	gracefulServer.RegisterShutdownHook("tracing", tracerProvider.Shutdown)

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
