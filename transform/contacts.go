package transform

import (
	"time"

	"engagement-pipeline/models"
)

type contactCandidate struct {
	row      *models.Contact
	loadedAt time.Time
}

// transformContacts flattens /v1/chat/contacts snapshots into contact rows.
// Elements without a contactId are discarded. Within one natural key the
// freshest candidate wins, ranked by last_contact descending (nulls last)
// and then snapshot load time descending.
func (e *Engine) transformContacts() (int, error) {
	snaps, err := e.raw.ListByEndpoint(e.tenantID, "/v1/chat/contacts")
	if err != nil {
		return 0, err
	}

	var candidates []contactCandidate
	for _, snap := range snaps {
		items, ok := models.PayloadItems(snap.SourceData)
		if !ok {
			e.logger.Warn("[contacts] snapshot %d: payload has no array, skipping", snap.ID)
			continue
		}

		for _, elem := range items {
			contactID := stringField(elem, "contactId")
			if contactID == "" {
				continue
			}
			candidates = append(candidates, contactCandidate{
				row: &models.Contact{
					TenantID:     snap.TenantID,
					ContactID:    contactID,
					ContactName:  stringField(elem, "profileName"),
					FirstContact: dateField(elem, "createdAt"),
					LastContact:  dateField(elem, "updatedAt"),
				},
				loadedAt: snap.LoadedAt,
			})
		}
	}

	winners := dedupeLatest(candidates,
		func(c contactCandidate) string { return c.row.TenantID + "|" + c.row.ContactID },
		func(a, b contactCandidate) bool {
			al, bl := a.row.LastContact, b.row.LastContact
			switch {
			case al != nil && bl == nil:
				return true
			case al == nil && bl != nil:
				return false
			case al != nil && bl != nil && !al.Equal(*bl):
				return al.After(*bl)
			}
			return a.loadedAt.After(b.loadedAt)
		})

	rows := make([]*models.Contact, len(winners))
	for i, w := range winners {
		rows[i] = w.row
	}
	return e.norm.UpsertContacts(rows)
}
