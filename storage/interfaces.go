package storage

import "engagement-pipeline/models"

// RawStore is the append-only landing store for API response snapshots.
// Snapshots are never updated or deleted through this interface.
type RawStore interface {
	Append(snap *models.RawSnapshot) error
	// ListByEndpoint returns every snapshot for the tenant whose endpoint
	// contains the given fragment, in load order.
	ListByEndpoint(tenantID, endpointContains string) ([]*models.RawSnapshot, error)
}

// NormalizedStore owns the entity tables produced by transform. Each Upsert
// call is one transaction: on error nothing from that call is visible.
// Conflict resolution is field-specific per entity (see the Postgres
// implementation), not uniformly last-write-wins.
type NormalizedStore interface {
	UpsertContacts(rows []*models.Contact) (int, error)
	UpsertTouchDaily(rows []*models.TouchDaily) (int, error)
	UpsertHeatmap(rows []*models.HeatmapCell) (int, error)
	UpsertCampaigns(rows []*models.Campaign) (int, error)
	UpsertDailyStats(rows []*models.DailyStat) (int, error)

	// AggregateTouchDaily rolls the committed touch metrics up to one row
	// per (tenant, date).
	AggregateTouchDaily(tenantID string) ([]*models.DailyStat, error)
	ListDailyStats(tenantID string) ([]*models.DailyStat, error)
}

// SyncStateStore records the outcome of every transform attempt, success or
// failure, keyed by (tenant, entity). Record is always an upsert.
type SyncStateStore interface {
	Record(tenantID, entity string, records int, status string) error
	List(tenantID string) ([]*models.SyncState, error)
}
