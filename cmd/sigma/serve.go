package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigma/internal/api"
	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/collector/binance"
	"github.com/newthinker/sigma/internal/logger"
	"github.com/newthinker/sigma/internal/metrics"
	"github.com/newthinker/sigma/internal/storage/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SIGMA API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info("starting SIGMA server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	provider := binance.New()
	runner := backtest.New(provider, logger.Named(log, "backtest"))
	reports := report.NewMemoryStore(cfg.Server.MaxJobs)

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MaxJobs:     cfg.Server.MaxJobs,
		JobTTL:      time.Duration(cfg.Server.JobTTLHours) * time.Hour,
		DefaultCost: cfg.Backtest.Cost,
		Interval:    cfg.Backtest.Interval,
	}, runner, reports, reg, logger.Named(log, "api"))

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down SIGMA server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
