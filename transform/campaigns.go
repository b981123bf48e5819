package transform

import (
	"time"

	"engagement-pipeline/models"
)

type campaignCandidate struct {
	row      *models.Campaign
	loadedAt time.Time
}

// transformCampaigns flattens campaign snapshots (list and stats endpoints)
// into campaign rows. Source field names vary between endpoints, so each
// target column tries its known aliases in order; elements without any
// campaign id are discarded. Overlapping loads resolve by snapshot load
// time descending.
func (e *Engine) transformCampaigns() (int, error) {
	snaps, err := e.raw.ListByEndpoint(e.tenantID, "/v1/campaign")
	if err != nil {
		return 0, err
	}

	var candidates []campaignCandidate
	for _, snap := range snaps {
		items, ok := models.PayloadItems(snap.SourceData)
		if !ok {
			e.logger.Warn("[campaigns] snapshot %d: payload has no array, skipping", snap.ID)
			continue
		}

		for _, elem := range items {
			campaignID := stringField(elem, "id", "campaignId")
			if campaignID == "" {
				continue
			}

			nombre := stringField(elem, "name", "title")
			if nombre == "" {
				nombre = "Sin nombre"
			}
			canal := stringField(elem, "channel", "type")
			if canal == "" {
				canal = "push"
			}
			account := stringField(elem, "applicationId")
			if account == "" {
				account = snap.ApplicationID
			}
			if account == "" {
				account = e.appID
			}

			candidates = append(candidates, campaignCandidate{
				row: &models.Campaign{
					TenantID:          snap.TenantID,
					CampanaID:         campaignID,
					CampanaNombre:     nombre,
					Canal:             canal,
					ProyectoCuenta:    account,
					TipoCampana:       stringField(elem, "status"),
					TotalEnviados:     intField(elem, "sent"),
					TotalEntregados:   intField(elem, "delivered"),
					TotalClicks:       intField(elem, "clicked"),
					FechaInicio:       dateField(elem, "startDate"),
					FechaFin:          dateField(elem, "endDate"),
					TotalAbiertos:     intField(elem, "opened"),
					TotalRebotes:      intField(elem, "bounced"),
					TotalBloqueados:   intField(elem, "blocked"),
					TotalSpam:         intField(elem, "spam"),
					TotalDesuscritos:  intField(elem, "unsubscribed"),
					TotalConversiones: intField(elem, "converted"),
				},
				loadedAt: snap.LoadedAt,
			})
		}
	}

	winners := dedupeLatest(candidates,
		func(c campaignCandidate) string { return c.row.TenantID + "|" + c.row.CampanaID },
		func(a, b campaignCandidate) bool { return a.loadedAt.After(b.loadedAt) })

	rows := make([]*models.Campaign, len(winners))
	for i, w := range winners {
		c := w.row
		c.CTR = Ratio(c.TotalClicks, c.TotalEnviados)
		c.TasaEntrega = Ratio(c.TotalEntregados, c.TotalEnviados)
		c.OpenRate = Ratio(c.TotalAbiertos, c.TotalEntregados)
		c.ConversionRate = Ratio(c.TotalConversiones, c.TotalClicks)
		rows[i] = c
	}
	return e.norm.UpsertCampaigns(rows)
}
