package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"engagement-pipeline/models"
)

// PostgresStore implements the raw landing store, the normalized entity
// tables and the sync-state tracker on a single PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS raw_snapshots (
			id             SERIAL PRIMARY KEY,
			tenant_id      VARCHAR(100) NOT NULL,
			application_id VARCHAR(100) NOT NULL DEFAULT '',
			endpoint       TEXT         NOT NULL,
			date_from      DATE,
			date_to        DATE,
			loaded_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			source_data    JSONB        NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_raw_snapshots_tenant_endpoint
			ON raw_snapshots(tenant_id, endpoint);
		CREATE INDEX IF NOT EXISTS idx_raw_snapshots_loaded_at
			ON raw_snapshots(loaded_at);

		CREATE TABLE IF NOT EXISTS contacts (
			tenant_id           VARCHAR(100) NOT NULL,
			contact_id          VARCHAR(100) NOT NULL,
			contact_name        TEXT NOT NULL DEFAULT '',
			total_messages      INT  NOT NULL DEFAULT 0,
			first_contact       DATE,
			last_contact        DATE,
			total_conversations INT  NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, contact_id)
		);

		CREATE TABLE IF NOT EXISTS campaigns (
			tenant_id          VARCHAR(100) NOT NULL,
			campana_id         VARCHAR(100) NOT NULL,
			campana_nombre     TEXT         NOT NULL DEFAULT '',
			canal              VARCHAR(50)  NOT NULL DEFAULT '',
			proyecto_cuenta    VARCHAR(100) NOT NULL DEFAULT '',
			tipo_campana       VARCHAR(50),
			total_enviados     INT NOT NULL DEFAULT 0,
			total_entregados   INT NOT NULL DEFAULT 0,
			total_clicks       INT NOT NULL DEFAULT 0,
			total_chunks       INT NOT NULL DEFAULT 0,
			fecha_inicio       DATE,
			fecha_fin          DATE,
			total_abiertos     INT NOT NULL DEFAULT 0,
			total_rebotes      INT NOT NULL DEFAULT 0,
			total_bloqueados   INT NOT NULL DEFAULT 0,
			total_spam         INT NOT NULL DEFAULT 0,
			total_desuscritos  INT NOT NULL DEFAULT 0,
			total_conversiones INT NOT NULL DEFAULT 0,
			ctr                NUMERIC(6,2) NOT NULL DEFAULT 0,
			tasa_entrega       NUMERIC(6,2) NOT NULL DEFAULT 0,
			open_rate          NUMERIC(6,2) NOT NULL DEFAULT 0,
			conversion_rate    NUMERIC(6,2) NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, campana_id)
		);

		CREATE TABLE IF NOT EXISTS toques_daily (
			tenant_id       VARCHAR(100) NOT NULL,
			date            DATE         NOT NULL,
			canal           VARCHAR(50)  NOT NULL,
			proyecto_cuenta VARCHAR(100) NOT NULL,
			enviados        INT NOT NULL DEFAULT 0,
			entregados      INT NOT NULL DEFAULT 0,
			clicks          INT NOT NULL DEFAULT 0,
			chunks          INT NOT NULL DEFAULT 0,
			usuarios_unicos INT NOT NULL DEFAULT 0,
			abiertos        INT NOT NULL DEFAULT 0,
			rebotes         INT NOT NULL DEFAULT 0,
			bloqueados      INT NOT NULL DEFAULT 0,
			spam            INT NOT NULL DEFAULT 0,
			desuscritos     INT NOT NULL DEFAULT 0,
			conversiones    INT NOT NULL DEFAULT 0,
			ctr             NUMERIC(6,2) NOT NULL DEFAULT 0,
			tasa_entrega    NUMERIC(6,2) NOT NULL DEFAULT 0,
			open_rate       NUMERIC(6,2) NOT NULL DEFAULT 0,
			conversion_rate NUMERIC(6,2) NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, date, canal, proyecto_cuenta)
		);

		CREATE TABLE IF NOT EXISTS toques_heatmap (
			tenant_id    VARCHAR(100) NOT NULL,
			canal        VARCHAR(50)  NOT NULL,
			dia_semana   VARCHAR(20)  NOT NULL,
			hora         SMALLINT     NOT NULL,
			enviados     INT NOT NULL DEFAULT 0,
			clicks       INT NOT NULL DEFAULT 0,
			abiertos     INT NOT NULL DEFAULT 0,
			conversiones INT NOT NULL DEFAULT 0,
			ctr          NUMERIC(6,2) NOT NULL DEFAULT 0,
			dia_orden    SMALLINT     NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, canal, dia_semana, hora)
		);

		CREATE TABLE IF NOT EXISTS daily_stats (
			tenant_id       VARCHAR(100) NOT NULL,
			date            DATE         NOT NULL,
			total_messages  INT NOT NULL DEFAULT 0,
			unique_contacts INT NOT NULL DEFAULT 0,
			conversations   INT NOT NULL DEFAULT 0,
			fallback_count  INT NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, date)
		);

		CREATE TABLE IF NOT EXISTS sync_state (
			tenant_id      VARCHAR(100) NOT NULL,
			entity         VARCHAR(100) NOT NULL,
			last_sync_at   TIMESTAMPTZ  NOT NULL,
			records_synced INT          NOT NULL DEFAULT 0,
			status         TEXT         NOT NULL DEFAULT '',
			PRIMARY KEY (tenant_id, entity)
		);
	`)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Append lands one snapshot. Insert-only: raw data is never overwritten.
func (s *PostgresStore) Append(snap *models.RawSnapshot) error {
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now().UTC()
	}

	err := s.db.QueryRow(`
		INSERT INTO raw_snapshots
			(tenant_id, application_id, endpoint, date_from, date_to, loaded_at, source_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, snap.TenantID, snap.ApplicationID, snap.Endpoint,
		nullTime(snap.DateFrom), nullTime(snap.DateTo), snap.LoadedAt, []byte(snap.SourceData),
	).Scan(&snap.ID)
	if err != nil {
		return fmt.Errorf("postgres: append snapshot: %w", err)
	}
	return nil
}

// ListByEndpoint returns the tenant's snapshots whose endpoint contains the
// given fragment, oldest first.
func (s *PostgresStore) ListByEndpoint(tenantID, endpointContains string) ([]*models.RawSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, tenant_id, application_id, endpoint, date_from, date_to, loaded_at, source_data
		FROM raw_snapshots
		WHERE tenant_id = $1 AND endpoint LIKE '%' || $2 || '%'
		ORDER BY loaded_at, id
	`, tenantID, endpointContains)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*models.RawSnapshot
	for rows.Next() {
		snap := &models.RawSnapshot{}
		var dateFrom, dateTo sql.NullTime
		var payload []byte
		if err := rows.Scan(
			&snap.ID, &snap.TenantID, &snap.ApplicationID, &snap.Endpoint,
			&dateFrom, &dateTo, &snap.LoadedAt, &payload,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot: %w", err)
		}
		snap.DateFrom = timePtr(dateFrom)
		snap.DateTo = timePtr(dateTo)
		snap.SourceData = payload
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// UpsertContacts merges contact rows. Names follow the incoming row;
// first_contact keeps the minimum and last_contact the maximum across old
// and new values. Message/conversation counters are left untouched.
func (s *PostgresStore) UpsertContacts(rows []*models.Contact) (int, error) {
	return s.upsert(len(rows), `
		INSERT INTO contacts
			(tenant_id, contact_id, contact_name, total_messages, first_contact, last_contact, total_conversations)
		VALUES ($1, $2, $3, 0, $4, $5, 0)
		ON CONFLICT (tenant_id, contact_id) DO UPDATE SET
			contact_name  = EXCLUDED.contact_name,
			first_contact = LEAST(contacts.first_contact, EXCLUDED.first_contact),
			last_contact  = GREATEST(contacts.last_contact, EXCLUDED.last_contact)
	`, func(stmt *sql.Stmt, i int) error {
		c := rows[i]
		_, err := stmt.Exec(c.TenantID, c.ContactID, c.ContactName,
			nullTime(c.FirstContact), nullTime(c.LastContact))
		return err
	})
}

// UpsertTouchDaily merges daily touch metrics. Counters and rates are
// overwritten with the incoming values, never incremented.
func (s *PostgresStore) UpsertTouchDaily(rows []*models.TouchDaily) (int, error) {
	return s.upsert(len(rows), `
		INSERT INTO toques_daily
			(tenant_id, date, canal, proyecto_cuenta,
			 enviados, entregados, clicks, chunks, usuarios_unicos,
			 abiertos, rebotes, bloqueados, spam, desuscritos, conversiones,
			 ctr, tasa_entrega, open_rate, conversion_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, 0, 0, 0, 0, 0, $9, $10, $11, 0)
		ON CONFLICT (tenant_id, date, canal, proyecto_cuenta) DO UPDATE SET
			enviados     = EXCLUDED.enviados,
			entregados   = EXCLUDED.entregados,
			clicks       = EXCLUDED.clicks,
			abiertos     = EXCLUDED.abiertos,
			ctr          = EXCLUDED.ctr,
			tasa_entrega = EXCLUDED.tasa_entrega,
			open_rate    = EXCLUDED.open_rate
	`, func(stmt *sql.Stmt, i int) error {
		t := rows[i]
		_, err := stmt.Exec(t.TenantID, t.Date, t.Canal, t.ProyectoCuenta,
			t.Enviados, t.Entregados, t.Clicks, t.Abiertos,
			t.CTR, t.TasaEntrega, t.OpenRate)
		return err
	})
}

// UpsertHeatmap merges heatmap cells, refreshing only the engagement rate
// and the weekday ordering.
func (s *PostgresStore) UpsertHeatmap(rows []*models.HeatmapCell) (int, error) {
	return s.upsert(len(rows), `
		INSERT INTO toques_heatmap
			(tenant_id, canal, dia_semana, hora, enviados, clicks, abiertos, conversiones, ctr, dia_orden)
		VALUES ($1, $2, $3, $4, 0, 0, 0, 0, $5, $6)
		ON CONFLICT (tenant_id, canal, dia_semana, hora) DO UPDATE SET
			ctr       = EXCLUDED.ctr,
			dia_orden = EXCLUDED.dia_orden
	`, func(stmt *sql.Stmt, i int) error {
		h := rows[i]
		_, err := stmt.Exec(h.TenantID, h.Canal, h.DiaSemana, h.Hora, h.CTR, h.DiaOrden)
		return err
	})
}

// UpsertCampaigns merges campaign rows; every mapped field takes the
// incoming value.
func (s *PostgresStore) UpsertCampaigns(rows []*models.Campaign) (int, error) {
	return s.upsert(len(rows), `
		INSERT INTO campaigns
			(tenant_id, campana_id, campana_nombre, canal, proyecto_cuenta, tipo_campana,
			 total_enviados, total_entregados, total_clicks, total_chunks,
			 fecha_inicio, fecha_fin,
			 total_abiertos, total_rebotes, total_bloqueados, total_spam,
			 total_desuscritos, total_conversiones,
			 ctr, tasa_entrega, open_rate, conversion_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (tenant_id, campana_id) DO UPDATE SET
			campana_nombre     = EXCLUDED.campana_nombre,
			canal              = EXCLUDED.canal,
			proyecto_cuenta    = EXCLUDED.proyecto_cuenta,
			tipo_campana       = EXCLUDED.tipo_campana,
			total_enviados     = EXCLUDED.total_enviados,
			total_entregados   = EXCLUDED.total_entregados,
			total_clicks       = EXCLUDED.total_clicks,
			fecha_inicio       = EXCLUDED.fecha_inicio,
			fecha_fin          = EXCLUDED.fecha_fin,
			total_abiertos     = EXCLUDED.total_abiertos,
			total_rebotes      = EXCLUDED.total_rebotes,
			total_bloqueados   = EXCLUDED.total_bloqueados,
			total_spam         = EXCLUDED.total_spam,
			total_desuscritos  = EXCLUDED.total_desuscritos,
			total_conversiones = EXCLUDED.total_conversiones,
			ctr                = EXCLUDED.ctr,
			tasa_entrega       = EXCLUDED.tasa_entrega,
			open_rate          = EXCLUDED.open_rate,
			conversion_rate    = EXCLUDED.conversion_rate
	`, func(stmt *sql.Stmt, i int) error {
		c := rows[i]
		_, err := stmt.Exec(c.TenantID, c.CampanaID, c.CampanaNombre, c.Canal,
			c.ProyectoCuenta, c.TipoCampana,
			c.TotalEnviados, c.TotalEntregados, c.TotalClicks,
			nullTime(c.FechaInicio), nullTime(c.FechaFin),
			c.TotalAbiertos, c.TotalRebotes, c.TotalBloqueados, c.TotalSpam,
			c.TotalDesuscritos, c.TotalConversiones,
			c.CTR, c.TasaEntrega, c.OpenRate, c.ConversionRate)
		return err
	})
}

// UpsertDailyStats merges per-day rollups; values are overwritten.
func (s *PostgresStore) UpsertDailyStats(rows []*models.DailyStat) (int, error) {
	return s.upsert(len(rows), `
		INSERT INTO daily_stats
			(tenant_id, date, total_messages, unique_contacts, conversations, fallback_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, date) DO UPDATE SET
			total_messages  = EXCLUDED.total_messages,
			unique_contacts = EXCLUDED.unique_contacts,
			conversations   = EXCLUDED.conversations,
			fallback_count  = EXCLUDED.fallback_count
	`, func(stmt *sql.Stmt, i int) error {
		d := rows[i]
		_, err := stmt.Exec(d.TenantID, d.Date, d.TotalMessages,
			d.UniqueContacts, d.Conversations, d.FallbackCount)
		return err
	})
}

// upsert runs n statement executions inside a single transaction, so a
// failing entity rolls back in full.
func (s *PostgresStore) upsert(n int, query string, exec func(stmt *sql.Stmt, i int) error) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("postgres: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return 0, fmt.Errorf("postgres: upsert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// AggregateTouchDaily rolls committed touch metrics up to one row per day.
func (s *PostgresStore) AggregateTouchDaily(tenantID string) ([]*models.DailyStat, error) {
	rows, err := s.db.Query(`
		SELECT tenant_id, date, COALESCE(SUM(enviados), 0)
		FROM toques_daily
		WHERE tenant_id = $1
		GROUP BY tenant_id, date
		ORDER BY date
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("postgres: aggregate touch daily: %w", err)
	}
	defer rows.Close()

	var stats []*models.DailyStat
	for rows.Next() {
		d := &models.DailyStat{}
		if err := rows.Scan(&d.TenantID, &d.Date, &d.TotalMessages); err != nil {
			return nil, fmt.Errorf("postgres: scan daily stat: %w", err)
		}
		stats = append(stats, d)
	}
	return stats, rows.Err()
}

func (s *PostgresStore) ListDailyStats(tenantID string) ([]*models.DailyStat, error) {
	rows, err := s.db.Query(`
		SELECT tenant_id, date, total_messages, unique_contacts, conversations, fallback_count
		FROM daily_stats
		WHERE tenant_id = $1
		ORDER BY date
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list daily stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.DailyStat
	for rows.Next() {
		d := &models.DailyStat{}
		if err := rows.Scan(&d.TenantID, &d.Date, &d.TotalMessages,
			&d.UniqueContacts, &d.Conversations, &d.FallbackCount); err != nil {
			return nil, fmt.Errorf("postgres: scan daily stat: %w", err)
		}
		stats = append(stats, d)
	}
	return stats, rows.Err()
}

// Record upserts the sync state for one (tenant, entity) pair.
func (s *PostgresStore) Record(tenantID, entity string, records int, status string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_state (tenant_id, entity, last_sync_at, records_synced, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, entity) DO UPDATE SET
			last_sync_at   = EXCLUDED.last_sync_at,
			records_synced = EXCLUDED.records_synced,
			status         = EXCLUDED.status
	`, tenantID, entity, time.Now().UTC(), records, status)
	if err != nil {
		return fmt.Errorf("postgres: record sync state: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(tenantID string) ([]*models.SyncState, error) {
	rows, err := s.db.Query(`
		SELECT tenant_id, entity, last_sync_at, records_synced, status
		FROM sync_state
		WHERE tenant_id = $1
		ORDER BY entity
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sync state: %w", err)
	}
	defer rows.Close()

	var states []*models.SyncState
	for rows.Next() {
		st := &models.SyncState{}
		if err := rows.Scan(&st.TenantID, &st.Entity, &st.LastSyncAt,
			&st.RecordsSynced, &st.Status); err != nil {
			return nil, fmt.Errorf("postgres: scan sync state: %w", err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
