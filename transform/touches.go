package transform

import (
	"strconv"
	"time"

	"engagement-pipeline/models"
)

type touchCandidate struct {
	row      *models.TouchDaily
	loadedAt time.Time
}

// transformTouchDaily flattens daily-stats snapshots into per-day touch
// metrics, one row per (date, canal, account). Elements missing the channel
// group or stats date are discarded; overlapping loads are resolved by
// snapshot load time descending.
func (e *Engine) transformTouchDaily() (int, error) {
	snaps, err := e.raw.ListByEndpoint(e.tenantID, "/dateStats")
	if err != nil {
		return 0, err
	}

	var candidates []touchCandidate
	for _, snap := range snaps {
		items, ok := models.PayloadItems(snap.SourceData)
		if !ok {
			e.logger.Warn("[toques_daily] snapshot %d: payload has no array, skipping", snap.ID)
			continue
		}

		account := snap.ApplicationID
		if account == "" {
			account = e.appID
		}

		for _, elem := range items {
			canal := stringField(elem, "platformGroup")
			statsDate := dateField(elem, "statsDate")
			if canal == "" || statsDate == nil {
				continue
			}
			candidates = append(candidates, touchCandidate{
				row: &models.TouchDaily{
					TenantID:       snap.TenantID,
					Date:           *statsDate,
					Canal:          canal,
					ProyectoCuenta: account,
					Enviados:       intField(elem, "numDevicesSent"),
					Entregados:     intField(elem, "numDevicesSuccess"),
					Abiertos:       intField(elem, "numDevicesReceived"),
					Clicks:         intField(elem, "numDevicesClicked"),
				},
				loadedAt: snap.LoadedAt,
			})
		}
	}

	winners := dedupeLatest(candidates,
		func(c touchCandidate) string {
			return c.row.TenantID + "|" + c.row.Date.Format("2006-01-02") + "|" + c.row.Canal + "|" + c.row.ProyectoCuenta
		},
		func(a, b touchCandidate) bool { return a.loadedAt.After(b.loadedAt) })

	rows := make([]*models.TouchDaily, len(winners))
	for i, w := range winners {
		t := w.row
		t.CTR = Ratio(t.Clicks, t.Enviados)
		t.TasaEntrega = Ratio(t.Entregados, t.Enviados)
		t.OpenRate = Ratio(t.Abiertos, t.Entregados)
		rows[i] = t
	}
	return e.norm.UpsertTouchDaily(rows)
}

var weekdayOrder = map[string]int{
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
	"sunday":    7,
}

// transformHeatmap expands the latest push heatmap snapshot into one cell
// per weekday/hour. The payload shape is {"data": {"weekday-hour":
// {weekday: {hour: clickRate}}}} where clickRate is a fraction; older
// snapshots are superseded wholesale by the most recently loaded one.
func (e *Engine) transformHeatmap() (int, error) {
	snaps, err := e.raw.ListByEndpoint(e.tenantID, "/pushHeatmap")
	if err != nil {
		return 0, err
	}

	var latest *models.RawSnapshot
	var latestDoc map[string]any
	for _, snap := range snaps {
		doc, ok := models.PayloadObject(snap.SourceData)
		if !ok {
			e.logger.Warn("[toques_heatmap] snapshot %d: payload has no object, skipping", snap.ID)
			continue
		}
		if latest == nil || snap.LoadedAt.After(latest.LoadedAt) {
			latest, latestDoc = snap, doc
		}
	}
	if latest == nil {
		return e.norm.UpsertHeatmap(nil)
	}

	weekdayHour, ok := latestDoc["weekday-hour"].(map[string]any)
	if !ok {
		e.logger.Warn("[toques_heatmap] snapshot %d: missing weekday-hour document", latest.ID)
		return e.norm.UpsertHeatmap(nil)
	}

	var rows []*models.HeatmapCell
	for weekday, hoursVal := range weekdayHour {
		hours, ok := hoursVal.(map[string]any)
		if !ok {
			continue
		}
		for hourKey, rateVal := range hours {
			hour, err := strconv.Atoi(hourKey)
			if err != nil {
				continue
			}
			rate, ok := rateVal.(float64)
			if !ok {
				continue
			}
			rows = append(rows, &models.HeatmapCell{
				TenantID:  latest.TenantID,
				Canal:     "push",
				DiaSemana: weekday,
				Hora:      hour,
				CTR:       round2(rate * 100),
				DiaOrden:  weekdayOrder[weekday],
			})
		}
	}
	return e.norm.UpsertHeatmap(rows)
}
