package storage

import (
	"testing"
	"time"

	"engagement-pipeline/models"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestContactMergeKeepsDateBounds(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.UpsertContacts([]*models.Contact{{
		TenantID:     "visionamos",
		ContactID:    "c1",
		ContactName:  "Gise",
		FirstContact: datePtr(2024, 1, 10),
		LastContact:  datePtr(2024, 2, 1),
	}})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Later load: newer name, but a narrower date range. The name follows
	// the load while first/last contact only widen.
	_, err = store.UpsertContacts([]*models.Contact{{
		TenantID:     "visionamos",
		ContactID:    "c1",
		ContactName:  "Gisela",
		FirstContact: datePtr(2024, 1, 20),
		LastContact:  datePtr(2024, 1, 25),
	}})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	contacts := store.ListContacts("visionamos")
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}

	c := contacts[0]
	if c.ContactName != "Gisela" {
		t.Errorf("contact_name: got %q, want Gisela", c.ContactName)
	}
	if c.FirstContact == nil || !c.FirstContact.Equal(*datePtr(2024, 1, 10)) {
		t.Errorf("first_contact: got %v, want 2024-01-10", c.FirstContact)
	}
	if c.LastContact == nil || !c.LastContact.Equal(*datePtr(2024, 2, 1)) {
		t.Errorf("last_contact: got %v, want 2024-02-01", c.LastContact)
	}
}

func TestContactMergeNilDates(t *testing.T) {
	store := NewMemoryStore()

	store.UpsertContacts([]*models.Contact{{TenantID: "t", ContactID: "c1"}})
	store.UpsertContacts([]*models.Contact{{
		TenantID:    "t",
		ContactID:   "c1",
		LastContact: datePtr(2024, 2, 1),
	}})

	c := store.ListContacts("t")[0]
	if c.LastContact == nil || !c.LastContact.Equal(*datePtr(2024, 2, 1)) {
		t.Errorf("last_contact: got %v, want 2024-02-01 (nil yields to a real date)", c.LastContact)
	}
	if c.FirstContact != nil {
		t.Errorf("first_contact: got %v, want nil", c.FirstContact)
	}
}

func TestTouchDailyMergeOverwritesCounters(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	store.UpsertTouchDaily([]*models.TouchDaily{{
		TenantID: "t", Date: day, Canal: "android", ProyectoCuenta: "100274",
		Enviados: 100, Entregados: 80, CTR: 5.0,
	}})
	store.UpsertTouchDaily([]*models.TouchDaily{{
		TenantID: "t", Date: day, Canal: "android", ProyectoCuenta: "100274",
		Enviados: 120, Entregados: 95, CTR: 6.5,
	}})

	touches := store.ListTouchDaily("t")
	if len(touches) != 1 {
		t.Fatalf("got %d rows, want 1", len(touches))
	}
	if touches[0].Enviados != 120 || touches[0].Entregados != 95 || touches[0].CTR != 6.5 {
		t.Errorf("counters not overwritten: %+v", touches[0])
	}
}

func TestTouchDailyDistinctKeys(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	store.UpsertTouchDaily([]*models.TouchDaily{
		{TenantID: "t", Date: day, Canal: "android", ProyectoCuenta: "100274", Enviados: 10},
		{TenantID: "t", Date: day, Canal: "ios", ProyectoCuenta: "100274", Enviados: 20},
		{TenantID: "t", Date: day.AddDate(0, 0, 1), Canal: "android", ProyectoCuenta: "100274", Enviados: 30},
	})

	if got := len(store.ListTouchDaily("t")); got != 3 {
		t.Errorf("got %d rows, want 3 (date, canal and account are all key parts)", got)
	}
}

func TestCampaignMergePreservesChunkCount(t *testing.T) {
	store := NewMemoryStore()

	store.UpsertCampaigns([]*models.Campaign{{
		TenantID: "t", CampanaID: "c1", CampanaNombre: "Launch", TotalEnviados: 100,
	}})

	// Chunk totals are maintained out-of-band and must survive re-syncs.
	store.mu.Lock()
	store.campaigns["t|c1"].TotalChunks = 4
	store.mu.Unlock()

	store.UpsertCampaigns([]*models.Campaign{{
		TenantID: "t", CampanaID: "c1", CampanaNombre: "Launch v2", TotalEnviados: 150,
	}})

	c := store.ListCampaigns("t")[0]
	if c.CampanaNombre != "Launch v2" || c.TotalEnviados != 150 {
		t.Errorf("campaign fields not overwritten: %+v", c)
	}
	if c.TotalChunks != 4 {
		t.Errorf("total_chunks: got %d, want 4 (preserved across upserts)", c.TotalChunks)
	}
}

func TestAggregateTouchDailySumsPerDate(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	store.UpsertTouchDaily([]*models.TouchDaily{
		{TenantID: "t", Date: day, Canal: "android", ProyectoCuenta: "a", Enviados: 10},
		{TenantID: "t", Date: day, Canal: "ios", ProyectoCuenta: "a", Enviados: 5},
		{TenantID: "other", Date: day, Canal: "android", ProyectoCuenta: "a", Enviados: 99},
	})

	stats, err := store.AggregateTouchDaily("t")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d rows, want 1", len(stats))
	}
	if stats[0].TotalMessages != 15 {
		t.Errorf("total_messages: got %d, want 15 (other tenants excluded)", stats[0].TotalMessages)
	}
}

func TestSyncStateRecordUpserts(t *testing.T) {
	store := NewMemoryStore()

	store.Record("t", "contacts", 10, "success")
	store.Record("t", "contacts", 0, "error: boom")
	store.Record("t", "campaigns", 5, "success")

	states, err := store.List("t")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2 (one per entity)", len(states))
	}
	if states[1].Entity != "contacts" || states[1].Status != "error: boom" || states[1].RecordsSynced != 0 {
		t.Errorf("contacts state not overwritten: %+v", states[1])
	}
}

func TestListByEndpointFiltersAndOrders(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	store.Append(&models.RawSnapshot{TenantID: "t", Endpoint: "/v1/chat/contacts", LoadedAt: base.Add(time.Hour)})
	store.Append(&models.RawSnapshot{TenantID: "t", Endpoint: "/v1/chat/contacts", LoadedAt: base})
	store.Append(&models.RawSnapshot{TenantID: "t", Endpoint: "/v1/campaign", LoadedAt: base})
	store.Append(&models.RawSnapshot{TenantID: "other", Endpoint: "/v1/chat/contacts", LoadedAt: base})

	snaps, err := store.ListByEndpoint("t", "/v1/chat/contacts")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if !snaps[0].LoadedAt.Equal(base) {
		t.Error("snapshots not ordered by loaded_at ascending")
	}
}
