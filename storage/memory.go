package storage

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"engagement-pipeline/models"
)

// MemoryStore is an in-process implementation of the storage interfaces
// with the same merge semantics as the Postgres store. It backs the
// transform-engine tests and dry runs without a database.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	snapshots []*models.RawSnapshot
	contacts  map[string]*models.Contact
	campaigns map[string]*models.Campaign
	touches   map[string]*models.TouchDaily
	heatmap   map[string]*models.HeatmapCell
	daily     map[string]*models.DailyStat
	syncState map[string]*models.SyncState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts:  make(map[string]*models.Contact),
		campaigns: make(map[string]*models.Campaign),
		touches:   make(map[string]*models.TouchDaily),
		heatmap:   make(map[string]*models.HeatmapCell),
		daily:     make(map[string]*models.DailyStat),
		syncState: make(map[string]*models.SyncState),
	}
}

func (m *MemoryStore) Append(snap *models.RawSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now().UTC()
	}
	m.nextID++
	stored := *snap
	stored.ID = m.nextID
	snap.ID = m.nextID
	m.snapshots = append(m.snapshots, &stored)
	return nil
}

func (m *MemoryStore) ListByEndpoint(tenantID, endpointContains string) ([]*models.RawSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.RawSnapshot
	for _, snap := range m.snapshots {
		if snap.TenantID == tenantID && strings.Contains(snap.Endpoint, endpointContains) {
			out = append(out, snap)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].LoadedAt.Before(out[j].LoadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SnapshotCount returns the number of landed snapshots.
func (m *MemoryStore) SnapshotCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

func (m *MemoryStore) UpsertContacts(rows []*models.Contact) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range rows {
		key := c.TenantID + "|" + c.ContactID
		existing, ok := m.contacts[key]
		if !ok {
			stored := *c
			stored.TotalMessages = 0
			stored.TotalConversations = 0
			m.contacts[key] = &stored
			continue
		}
		// Name follows the incoming row; contact bounds are monotonic.
		existing.ContactName = c.ContactName
		existing.FirstContact = minDate(existing.FirstContact, c.FirstContact)
		existing.LastContact = maxDate(existing.LastContact, c.LastContact)
	}
	return len(rows), nil
}

func (m *MemoryStore) UpsertTouchDaily(rows []*models.TouchDaily) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range rows {
		key := t.TenantID + "|" + dateKey(t.Date) + "|" + t.Canal + "|" + t.ProyectoCuenta
		existing, ok := m.touches[key]
		if !ok {
			stored := *t
			m.touches[key] = &stored
			continue
		}
		existing.Enviados = t.Enviados
		existing.Entregados = t.Entregados
		existing.Clicks = t.Clicks
		existing.Abiertos = t.Abiertos
		existing.CTR = t.CTR
		existing.TasaEntrega = t.TasaEntrega
		existing.OpenRate = t.OpenRate
	}
	return len(rows), nil
}

func (m *MemoryStore) UpsertHeatmap(rows []*models.HeatmapCell) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range rows {
		key := h.TenantID + "|" + h.Canal + "|" + h.DiaSemana + "|" + strconv.Itoa(h.Hora)
		existing, ok := m.heatmap[key]
		if !ok {
			stored := *h
			m.heatmap[key] = &stored
			continue
		}
		existing.CTR = h.CTR
		existing.DiaOrden = h.DiaOrden
	}
	return len(rows), nil
}

func (m *MemoryStore) UpsertCampaigns(rows []*models.Campaign) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range rows {
		key := c.TenantID + "|" + c.CampanaID
		existing, ok := m.campaigns[key]
		if !ok {
			stored := *c
			stored.TotalChunks = 0
			m.campaigns[key] = &stored
			continue
		}
		chunks := existing.TotalChunks
		*existing = *c
		existing.TotalChunks = chunks
	}
	return len(rows), nil
}

func (m *MemoryStore) UpsertDailyStats(rows []*models.DailyStat) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range rows {
		stored := *d
		m.daily[d.TenantID+"|"+dateKey(d.Date)] = &stored
	}
	return len(rows), nil
}

func (m *MemoryStore) AggregateTouchDaily(tenantID string) ([]*models.DailyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate := make(map[string]*models.DailyStat)
	for _, t := range m.touches {
		if t.TenantID != tenantID {
			continue
		}
		key := dateKey(t.Date)
		stat, ok := byDate[key]
		if !ok {
			stat = &models.DailyStat{TenantID: tenantID, Date: t.Date}
			byDate[key] = stat
		}
		stat.TotalMessages += t.Enviados
	}

	stats := make([]*models.DailyStat, 0, len(byDate))
	for _, stat := range byDate {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.Before(stats[j].Date) })
	return stats, nil
}

func (m *MemoryStore) ListDailyStats(tenantID string) ([]*models.DailyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats []*models.DailyStat
	for _, d := range m.daily {
		if d.TenantID == tenantID {
			row := *d
			stats = append(stats, &row)
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.Before(stats[j].Date) })
	return stats, nil
}

// ListContacts returns the tenant's contacts ordered by contact id.
func (m *MemoryStore) ListContacts(tenantID string) []*models.Contact {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Contact
	for _, c := range m.contacts {
		if c.TenantID == tenantID {
			row := *c
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContactID < out[j].ContactID })
	return out
}

// ListCampaigns returns the tenant's campaigns ordered by campaign id.
func (m *MemoryStore) ListCampaigns(tenantID string) []*models.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Campaign
	for _, c := range m.campaigns {
		if c.TenantID == tenantID {
			row := *c
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampanaID < out[j].CampanaID })
	return out
}

// ListTouchDaily returns the tenant's touch metrics ordered by date/canal.
func (m *MemoryStore) ListTouchDaily(tenantID string) []*models.TouchDaily {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.TouchDaily
	for _, t := range m.touches {
		if t.TenantID == tenantID {
			row := *t
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Canal < out[j].Canal
	})
	return out
}

// ListHeatmap returns the tenant's heatmap cells ordered by weekday/hour.
func (m *MemoryStore) ListHeatmap(tenantID string) []*models.HeatmapCell {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.HeatmapCell
	for _, h := range m.heatmap {
		if h.TenantID == tenantID {
			row := *h
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DiaOrden != out[j].DiaOrden {
			return out[i].DiaOrden < out[j].DiaOrden
		}
		return out[i].Hora < out[j].Hora
	})
	return out
}

func (m *MemoryStore) Record(tenantID, entity string, records int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.syncState[tenantID+"|"+entity] = &models.SyncState{
		TenantID:      tenantID,
		Entity:        entity,
		LastSyncAt:    time.Now().UTC(),
		RecordsSynced: records,
		Status:        status,
	}
	return nil
}

func (m *MemoryStore) List(tenantID string) ([]*models.SyncState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var states []*models.SyncState
	for _, st := range m.syncState {
		if st.TenantID == tenantID {
			row := *st
			states = append(states, &row)
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Entity < states[j].Entity })
	return states, nil
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func minDate(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Before(*a):
		return b
	default:
		return a
	}
}

func maxDate(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
