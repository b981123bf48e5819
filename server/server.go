package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"engagement-pipeline/models"
	"engagement-pipeline/storage"
	"engagement-pipeline/utils"
)

// NewRouter builds the monitoring API: read-only views over sync state and
// the daily rollup, so operators can check pipeline health without
// re-running anything. Raw snapshots are deliberately not exposed.
func NewRouter(norm storage.NormalizedStore, state storage.SyncStateStore,
	defaultTenant string, logger *utils.Logger) *mux.Router {

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.HandleFunc("/api/sync-state", syncStateHandler(state, defaultTenant, logger)).Methods("GET")
	router.HandleFunc("/api/daily-stats", dailyStatsHandler(norm, defaultTenant, logger)).Methods("GET")

	return router
}

func syncStateHandler(state storage.SyncStateStore, defaultTenant string, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantParam(r, defaultTenant)
		states, err := state.List(tenant)
		if err != nil {
			logger.Error("[server] listing sync state: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if states == nil {
			states = []*models.SyncState{}
		}
		writeJSON(w, states)
	}
}

func dailyStatsHandler(norm storage.NormalizedStore, defaultTenant string, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantParam(r, defaultTenant)
		stats, err := norm.ListDailyStats(tenant)
		if err != nil {
			logger.Error("[server] listing daily stats: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if stats == nil {
			stats = []*models.DailyStat{}
		}
		writeJSON(w, stats)
	}
}

func tenantParam(r *http.Request, fallback string) string {
	if tenant := r.URL.Query().Get("tenant"); tenant != "" {
		return tenant
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
