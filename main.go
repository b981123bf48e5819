package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"engagement-pipeline/config"
	"engagement-pipeline/runner"
	"engagement-pipeline/server"
	"engagement-pipeline/utils"
)

func main() {
	mode := flag.String("mode", "run", "extract | transform | run | serve")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Engagement Analytics Pipeline starting ===")
	logger.Info("Config — tenant: %s | applications: %v | window: %dd | page size: %d | concurrency: %d",
		cfg.TenantID, cfg.ApplicationIDs, cfg.DaysBack, cfg.PageSize, cfg.MaxConcurrency)

	r, err := runner.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize pipeline: %v", err)
		logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		os.Exit(1)
	}
	defer r.Close()

	ctx := context.Background()

	switch *mode {
	case "extract":
		r.Extract(ctx)
	case "transform":
		if failed := countFailures(r); failed > 0 {
			os.Exit(1)
		}
	case "run":
		if failed := r.RunOnce(ctx); failed > 0 {
			os.Exit(1)
		}
	case "serve":
		serve(ctx, cfg, logger, r)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func countFailures(r *runner.Runner) int {
	failed := 0
	for _, res := range r.Transform() {
		if res.Err != nil {
			failed++
		}
	}
	return failed
}

// serve runs the scheduler and the monitoring API until SIGINT/SIGTERM.
func serve(ctx context.Context, cfg *config.Config, logger *utils.Logger, r *runner.Runner) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Shutdown signal received, stopping...")
		cancel()
	}()

	store := r.Store()
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.NewRouter(store, store, cfg.TenantID, logger),
	}
	go func() {
		logger.Info("Monitoring API listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server: %v", err)
		}
	}()

	if err := r.StartScheduler(ctx); err != nil {
		logger.Error("Scheduler failed to start: %v", err)
	}

	if err := httpServer.Shutdown(context.Background()); err != nil {
		logger.Error("HTTP shutdown: %v", err)
	}
}
