package models

import (
	"encoding/json"
	"time"
)

// RawSnapshot is one captured API response page, stored verbatim before any
// transformation. Snapshots are append-only: they are never mutated or
// deleted by the pipeline and serve as the audit trail and re-processing
// source. Overlapping snapshots for the same endpoint and window are
// expected after re-runs; the transform stage resolves the overlap.
type RawSnapshot struct {
	ID            int64
	TenantID      string
	ApplicationID string
	Endpoint      string
	DateFrom      *time.Time
	DateTo        *time.Time
	LoadedAt      time.Time
	SourceData    json.RawMessage
}

// Contact is one messaging contact, keyed by (tenant_id, contact_id).
type Contact struct {
	TenantID           string     `json:"tenant_id"`
	ContactID          string     `json:"contact_id"`
	ContactName        string     `json:"contact_name"`
	TotalMessages      int        `json:"total_messages"`
	FirstContact       *time.Time `json:"first_contact"`
	LastContact        *time.Time `json:"last_contact"`
	TotalConversations int        `json:"total_conversations"`
}

// Campaign is one campaign with its lifetime counters and derived rates,
// keyed by (tenant_id, campana_id).
type Campaign struct {
	TenantID          string     `json:"tenant_id"`
	CampanaID         string     `json:"campana_id"`
	CampanaNombre     string     `json:"campana_nombre"`
	Canal             string     `json:"canal"`
	ProyectoCuenta    string     `json:"proyecto_cuenta"`
	TipoCampana       string     `json:"tipo_campana"`
	TotalEnviados     int        `json:"total_enviados"`
	TotalEntregados   int        `json:"total_entregados"`
	TotalClicks       int        `json:"total_clicks"`
	TotalChunks       int        `json:"total_chunks"`
	FechaInicio       *time.Time `json:"fecha_inicio"`
	FechaFin          *time.Time `json:"fecha_fin"`
	TotalAbiertos     int        `json:"total_abiertos"`
	TotalRebotes      int        `json:"total_rebotes"`
	TotalBloqueados   int        `json:"total_bloqueados"`
	TotalSpam         int        `json:"total_spam"`
	TotalDesuscritos  int        `json:"total_desuscritos"`
	TotalConversiones int        `json:"total_conversiones"`
	CTR               float64    `json:"ctr"`
	TasaEntrega       float64    `json:"tasa_entrega"`
	OpenRate          float64    `json:"open_rate"`
	ConversionRate    float64    `json:"conversion_rate"`
}

// TouchDaily is one day of touch metrics for one channel and account,
// keyed by (tenant_id, date, canal, proyecto_cuenta).
type TouchDaily struct {
	TenantID       string    `json:"tenant_id"`
	Date           time.Time `json:"date"`
	Canal          string    `json:"canal"`
	ProyectoCuenta string    `json:"proyecto_cuenta"`
	Enviados       int       `json:"enviados"`
	Entregados     int       `json:"entregados"`
	Abiertos       int       `json:"abiertos"`
	Clicks         int       `json:"clicks"`
	CTR            float64   `json:"ctr"`
	TasaEntrega    float64   `json:"tasa_entrega"`
	OpenRate       float64   `json:"open_rate"`
}

// HeatmapCell is engagement for one weekday/hour slot of one channel,
// keyed by (tenant_id, canal, dia_semana, hora).
type HeatmapCell struct {
	TenantID  string  `json:"tenant_id"`
	Canal     string  `json:"canal"`
	DiaSemana string  `json:"dia_semana"`
	Hora      int     `json:"hora"`
	CTR       float64 `json:"ctr"`
	DiaOrden  int     `json:"dia_orden"`
}

// DailyStat is the per-tenant daily rollup over TouchDaily,
// keyed by (tenant_id, date).
type DailyStat struct {
	TenantID       string    `json:"tenant_id"`
	Date           time.Time `json:"date"`
	TotalMessages  int       `json:"total_messages"`
	UniqueContacts int       `json:"unique_contacts"`
	Conversations  int       `json:"conversations"`
	FallbackCount  int       `json:"fallback_count"`
}

// SyncState records the outcome of the most recent transform attempt for
// one (tenant, entity) pair. Overwritten on every attempt, never deleted.
type SyncState struct {
	TenantID      string    `json:"tenant_id"`
	Entity        string    `json:"entity"`
	LastSyncAt    time.Time `json:"last_sync_at"`
	RecordsSynced int       `json:"records_synced"`
	Status        string    `json:"status"`
}
