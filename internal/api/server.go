// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/sigma/internal/api/job"
	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/metrics"
	"github.com/newthinker/sigma/internal/storage/report"
	"github.com/newthinker/sigma/internal/strategy"
)

// Runner executes a backtest. Satisfied by backtest.Backtester.
type Runner interface {
	Run(ctx context.Context, strat strategy.Strategy, symbol string, start, end time.Time, interval string, cost float64) (*backtest.Report, error)
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	MaxJobs     int
	JobTTL      time.Duration
	DefaultCost float64
	Interval    string
}

// Server represents the HTTP API server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux

	runner  Runner
	reports report.Store
	jobs    *job.Store
	metrics *metrics.Registry

	defaultCost     float64
	defaultInterval string
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, runner Runner, reports report.Store, reg *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 100
	}
	if cfg.Interval == "" {
		cfg.Interval = "1d"
	}

	mux := http.NewServeMux()

	s := &Server{
		logger:          logger,
		mux:             mux,
		runner:          runner,
		reports:         reports,
		jobs:            job.NewStore(cfg.MaxJobs, cfg.JobTTL),
		metrics:         reg,
		defaultCost:     cfg.DefaultCost,
		defaultInterval: cfg.Interval,
	}

	s.setupRoutes()

	var handler http.Handler = mux
	if reg != nil {
		handler = metrics.HTTPMiddleware(reg)(mux)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/strategies", s.handleStrategies)

	s.mux.HandleFunc("POST /api/v1/backtests", s.handleCreateBacktest)
	s.mux.HandleFunc("GET /api/v1/backtests/{id}", s.handleGetJob)

	s.mux.HandleFunc("GET /api/v1/reports", s.handleListReports)
	s.mux.HandleFunc("GET /api/v1/reports/{id}", s.handleGetReport)
	s.mux.HandleFunc("GET /api/v1/reports/{id}/html", s.handleGetReportHTML)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
