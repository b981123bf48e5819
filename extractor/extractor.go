package extractor

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"engagement-pipeline/config"
	"engagement-pipeline/models"
	"engagement-pipeline/storage"
	"engagement-pipeline/utils"
)

// Window is the requested date range for windowed endpoints.
type Window struct {
	From time.Time
	To   time.Time
}

// Extractor drives the endpoint fetch loops for one channel, landing every
// successful page as a RawSnapshot before pagination continues, so partial
// progress survives a crash. One endpoint failing never aborts a sibling
// endpoint or channel.
type Extractor struct {
	client *Client
	raw    storage.RawStore
	cfg    *config.Config
	logger *utils.Logger
	window Window
}

// New creates an Extractor on top of a paced client and the raw landing store.
func New(client *Client, raw storage.RawStore, cfg *config.Config, logger *utils.Logger, window Window) *Extractor {
	return &Extractor{
		client: client,
		raw:    raw,
		cfg:    cfg,
		logger: logger,
		window: window,
	}
}

// ExtractChannel fetches every endpoint of the channel for one application.
// Endpoint failures are logged and the next endpoint proceeds.
func (e *Extractor) ExtractChannel(ctx context.Context, ch Channel, appID string) {
	e.logger.Info("[%s] extracting application %s", ch.Name, appID)

	for _, ep := range ch.Endpoints {
		pages, err := e.extractEndpoint(ctx, ep, appID)
		switch {
		case err != nil && IsPermanent(err):
			e.logger.Warn("[%s] %s: not available, skipping (%v)", ch.Name, ep.Name, err)
		case err != nil:
			e.logger.Error("[%s] %s: %v", ch.Name, ep.Name, err)
		default:
			e.logger.Info("[%s] %s: %d page(s) stored", ch.Name, ep.Name, pages)
		}
	}
}

// extractEndpoint runs the page loop for one endpoint and returns the number
// of snapshots stored. The loop stops when a page returns zero items, fewer
// items than the page size, or the max-page safety bound is reached.
func (e *Extractor) extractEndpoint(ctx context.Context, ep Endpoint, appID string) (int, error) {
	path := strings.ReplaceAll(ep.Path, "{appId}", appID)
	from, to := e.endpointWindow(ep)

	if ep.Pagination == PaginateNone {
		data, err := e.client.Get(ctx, path, e.params(ep, appID, from, to))
		if err != nil {
			return 0, err
		}
		if err := e.store(path, appID, from, to, data); err != nil {
			return 0, err
		}
		return 1, nil
	}

	pageSize := e.cfg.PageSize
	stored := 0

	for page := 0; page < e.cfg.MaxPages; page++ {
		params := e.params(ep, appID, from, to)
		params.Set("limit", strconv.Itoa(pageSize))
		switch ep.Pagination {
		case PaginateByPage:
			params.Set("page", strconv.Itoa(page))
		case PaginateByOffset:
			params.Set("offset", strconv.Itoa(page*pageSize))
		}

		data, err := e.client.Get(ctx, path, params)
		if err != nil {
			return stored, err
		}

		items, ok := models.PayloadItems(data)
		if !ok {
			e.logger.Warn("[extract] %s page %d: payload is not an array, stopping", path, page)
			return stored, nil
		}
		if len(items) == 0 {
			return stored, nil
		}

		if err := e.store(path, appID, from, to, data); err != nil {
			return stored, err
		}
		stored++

		// Short page means last page.
		if len(items) < pageSize {
			return stored, nil
		}
	}

	return stored, nil
}

func (e *Extractor) params(ep Endpoint, appID string, from, to *time.Time) url.Values {
	params := url.Values{}
	for k, v := range ep.Static {
		params.Set(k, v)
	}
	if ep.AppIDParam {
		params.Set("applicationId", appID)
	}
	if ep.Windowed && from != nil && to != nil {
		params.Set("dateFrom", from.Format("2006-01-02"))
		params.Set("dateTo", to.Format("2006-01-02"))
	}
	return params
}

// endpointWindow applies the endpoint's window clamp to the run window.
func (e *Extractor) endpointWindow(ep Endpoint) (*time.Time, *time.Time) {
	if !ep.Windowed {
		return nil, nil
	}

	from, to := e.window.From, e.window.To
	if ep.MaxWindowDays > 0 {
		if clamped := to.AddDate(0, 0, -ep.MaxWindowDays); clamped.After(from) {
			from = clamped
		}
	}
	return &from, &to
}

func (e *Extractor) store(path, appID string, from, to *time.Time, data []byte) error {
	return e.raw.Append(&models.RawSnapshot{
		TenantID:      e.cfg.TenantID,
		ApplicationID: appID,
		Endpoint:      path,
		DateFrom:      from,
		DateTo:        to,
		LoadedAt:      time.Now().UTC(),
		SourceData:    data,
	})
}
