package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"engagement-pipeline/models"
	"engagement-pipeline/storage"
	"engagement-pipeline/utils"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	srv := httptest.NewServer(NewRouter(store, store, "visionamos", utils.NewLogger()))
	t.Cleanup(srv.Close)
	return srv, store
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body: got %q, want ok", body)
	}
}

func TestSyncStateEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	store.Record("visionamos", "contacts", 12, "success")
	store.Record("visionamos", "campaigns", 0, "error: upstream down")

	var states []models.SyncState
	if code := getJSON(t, srv.URL+"/api/sync-state", &states); code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}
	if states[0].Entity != "campaigns" || states[0].Status != "error: upstream down" {
		t.Errorf("first state: %+v", states[0])
	}
	if states[1].Entity != "contacts" || states[1].RecordsSynced != 12 {
		t.Errorf("second state: %+v", states[1])
	}
}

func TestDailyStatsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	store.UpsertDailyStats([]*models.DailyStat{{
		TenantID:      "visionamos",
		Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TotalMessages: 250,
	}})

	var stats []models.DailyStat
	if code := getJSON(t, srv.URL+"/api/daily-stats", &stats); code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if len(stats) != 1 || stats[0].TotalMessages != 250 {
		t.Errorf("stats: %+v", stats)
	}
}

func TestTenantQueryParamScopesResult(t *testing.T) {
	srv, store := newTestServer(t)
	store.Record("visionamos", "contacts", 12, "success")

	// Unknown tenant must return an empty array, never null.
	resp, err := http.Get(srv.URL + "/api/sync-state?tenant=nobody")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(body)); got != "[]" {
		t.Errorf("body: got %q, want []", got)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	if code := getJSON(t, srv.URL+"/api/raw-snapshots", nil); code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", code)
	}
}
