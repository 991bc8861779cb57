package server

import (
	"log/slog"
	"net/http"

	"etf-dashboard/internal/handlers"
	"etf-dashboard/internal/observability"
	"etf-dashboard/internal/services"
)

type Server struct {
	dashboard      *services.Dashboard
	metrics        *observability.Metrics
	mux            *http.ServeMux
	logger         *slog.Logger
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	uploadHandlers *handlers.UploadHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, metrics *observability.Metrics, maxUploadBytes int64, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	sse := handlers.NewSSEHandlers(dashboard, logger)
	s := &Server{
		dashboard:      dashboard,
		metrics:        metrics,
		mux:            http.NewServeMux(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers:    sse,
		uploadHandlers: handlers.NewUploadHandlers(dashboard, sse, maxUploadBytes, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/etfs", s.apiHandlers.HandleETFs)
	s.mux.HandleFunc("GET /api/rank", s.apiHandlers.HandleRank)
	s.mux.HandleFunc("GET /api/views", s.apiHandlers.HandleViews)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
	s.mux.HandleFunc("POST /upload", s.uploadHandlers.HandleUpload)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
