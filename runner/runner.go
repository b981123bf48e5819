package runner

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"engagement-pipeline/config"
	"engagement-pipeline/extractor"
	"engagement-pipeline/storage"
	"engagement-pipeline/transform"
	"engagement-pipeline/utils"
)

// Runner orchestrates one pipeline run: extraction across all channels and
// applications, then the per-entity transforms. The database handle is
// opened once at construction and closed by Close.
type Runner struct {
	cfg    *config.Config
	logger *utils.Logger
	store  *storage.PostgresStore
}

// New connects to PostgreSQL and returns a ready Runner.
func New(cfg *config.Config, logger *utils.Logger) (*Runner, error) {
	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, logger: logger, store: store}, nil
}

// Store exposes the underlying store for the monitoring server.
func (r *Runner) Store() *storage.PostgresStore {
	return r.store
}

// Close releases the database connection.
func (r *Runner) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Error("[runner] closing store: %v", err)
	}
}

// Extract runs every enabled channel for every configured application.
// Channels run concurrently, each with its own independently paced client
// so one channel's rate budget never throttles another; pages within one
// endpoint stay sequential because the cursor is.
func (r *Runner) Extract(ctx context.Context) {
	runID := uuid.NewString()[:8]
	window := extractor.Window{
		From: time.Now().UTC().AddDate(0, 0, -r.cfg.DaysBack),
		To:   time.Now().UTC(),
	}

	r.logger.Info("[run %s] extraction starting — window %s → %s, %d application(s)",
		runID, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"),
		len(r.cfg.ApplicationIDs))

	pool := utils.NewWorkerPool(r.cfg.MaxConcurrency, 0)
	for _, ch := range extractor.Channels() {
		if r.cfg.ChannelDisabled(ch.Name) {
			r.logger.Info("[run %s] channel %s disabled, skipping", runID, ch.Name)
			continue
		}
		for _, appID := range r.cfg.ApplicationIDs {
			ch, appID := ch, appID
			pool.Submit(func() {
				client := extractor.NewClient(r.cfg, r.logger)
				ex := extractor.New(client, r.store, r.cfg, r.logger, window)
				ex.ExtractChannel(ctx, ch, appID)
			})
		}
	}
	pool.Wait()

	r.logger.Info("[run %s] extraction finished", runID)
}

// Transform runs every entity transform for the configured tenant and
// returns the per-entity results.
func (r *Runner) Transform() []transform.EntityResult {
	engine := transform.NewEngine(r.store, r.store, r.store, r.logger,
		r.cfg.TenantID, r.cfg.PrimaryApplicationID())
	return engine.Run()
}

// RunOnce performs a full extract + transform cycle and returns the number
// of entities whose transform failed.
func (r *Runner) RunOnce(ctx context.Context) int {
	start := time.Now()
	r.Extract(ctx)
	results := r.Transform()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("[runner] run complete in %v — %d entities, %d failed",
		time.Since(start).Round(time.Second), len(results), failed)
	return failed
}

// StartScheduler runs the pipeline on the configured interval until the
// context is cancelled.
func (r *Runner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	interval := time.Duration(r.cfg.RunIntervalMinutes) * time.Minute

	r.logger.Info("[runner] scheduling pipeline runs every %v", interval)
	if _, err := scheduler.Every(interval).Do(func() {
		r.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	r.logger.Info("[runner] scheduler stopped")
	return nil
}
