package transform

import (
	"engagement-pipeline/storage"
	"engagement-pipeline/utils"
)

// Engine converts accumulated raw snapshots into normalized entity rows.
// Each entity type is an independent unit of transaction and failure: an
// error in one entity rolls back that entity only and the next proceeds.
// Every attempt, success or failure, is recorded in sync state.
type Engine struct {
	raw      storage.RawStore
	norm     storage.NormalizedStore
	state    storage.SyncStateStore
	logger   *utils.Logger
	tenantID string
	appID    string
}

// NewEngine creates a transform engine scoped to one tenant. appID is the
// fallback account used when a payload element carries none of its own.
func NewEngine(raw storage.RawStore, norm storage.NormalizedStore, state storage.SyncStateStore,
	logger *utils.Logger, tenantID, appID string) *Engine {
	return &Engine{
		raw:      raw,
		norm:     norm,
		state:    state,
		logger:   logger,
		tenantID: tenantID,
		appID:    appID,
	}
}

// EntityResult is the outcome of one entity's transform.
type EntityResult struct {
	Entity string
	Rows   int
	Err    error
}

// Run executes every entity transform in order. The daily_stats rollup runs
// last so it reads the already-committed toques_daily result. Run never
// returns an error: failures are captured per entity.
func (e *Engine) Run() []EntityResult {
	jobs := []struct {
		name string
		fn   func() (int, error)
	}{
		{"contacts", e.transformContacts},
		{"toques_daily", e.transformTouchDaily},
		{"toques_heatmap", e.transformHeatmap},
		{"campaigns", e.transformCampaigns},
		{"daily_stats", e.transformDailyStats},
	}

	results := make([]EntityResult, 0, len(jobs))
	for _, job := range jobs {
		count, err := job.fn()
		if err != nil {
			e.logger.Error("[transform] %s failed: %v", job.name, err)
			e.record(job.name, 0, "error: "+truncate(err.Error(), 200))
			results = append(results, EntityResult{Entity: job.name, Err: err})
			continue
		}

		e.logger.Info("[transform] %s: %d row(s) upserted", job.name, count)
		e.record(job.name, count, "success")
		results = append(results, EntityResult{Entity: job.name, Rows: count})
	}
	return results
}

func (e *Engine) record(entity string, records int, status string) {
	if err := e.state.Record(e.tenantID, entity, records, status); err != nil {
		e.logger.Error("[transform] %s: recording sync state: %v", entity, err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
