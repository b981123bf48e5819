package extractor

// PaginationMode selects how an endpoint's pages are addressed. The mode is
// per-endpoint data, not per-channel control flow: the same page loop drives
// every paginated endpoint.
type PaginationMode int

const (
	// PaginateNone issues a single call.
	PaginateNone PaginationMode = iota
	// PaginateByPage sends limit + page, 0-indexed.
	PaginateByPage
	// PaginateByOffset sends limit + offset.
	PaginateByOffset
)

// Endpoint describes one API path and how to drive it.
type Endpoint struct {
	Name string
	// Path may contain "{appId}", replaced with the application id.
	Path       string
	Pagination PaginationMode
	// Windowed endpoints receive dateFrom/dateTo query params.
	Windowed bool
	// MaxWindowDays clamps the requested window to its most recent N days.
	// Zero means the full window is requested.
	MaxWindowDays int
	// AppIDParam adds applicationId to the query string.
	AppIDParam bool
	// Static params are sent verbatim on every call.
	Static map[string]string
}

// Channel groups the endpoints extracted for one communication medium.
type Channel struct {
	Name      string
	Endpoints []Endpoint
}

// Channels returns the extraction catalogue. Endpoint paths and pagination
// conventions follow the platform API: /v1/chat/contacts honours limit+page
// for the contacts feed but limit+offset on the chat side, and the device
// stats endpoint rejects ranges wider than 7 days.
func Channels() []Channel {
	return []Channel{
		{
			Name: "push",
			Endpoints: []Endpoint{
				{
					Name:     "dateStats",
					Path:     "/v1/application/{appId}/dateStats",
					Windowed: true,
					Static:   map[string]string{"periodicity": "daily"},
				},
				{
					Name:     "pushHeatmap",
					Path:     "/v1/application/{appId}/pushHeatmap",
					Windowed: true,
				},
				{
					Name:          "stats/device",
					Path:          "/v1/application/{appId}/stats/device",
					Windowed:      true,
					MaxWindowDays: 7,
				},
				{
					Name:       "application/stats",
					Path:       "/v1/application/stats",
					AppIDParam: true,
					Static:     map[string]string{"limit": "50", "page": "0"},
				},
			},
		},
		{
			Name: "contacts",
			Endpoints: []Endpoint{
				{
					Name:       "chat/contacts",
					Path:       "/v1/chat/contacts",
					Pagination: PaginateByPage,
					AppIDParam: true,
				},
				{
					Name:       "agent/status",
					Path:       "/v1/chat/agent/status",
					AppIDParam: true,
				},
			},
		},
		{
			Name: "chat",
			Endpoints: []Endpoint{
				{
					Name:       "agent/status",
					Path:       "/v1/chat/agent/status",
					AppIDParam: true,
				},
				{
					Name:       "chat/contacts",
					Path:       "/v1/chat/contacts",
					Pagination: PaginateByOffset,
					AppIDParam: true,
				},
			},
		},
		{
			Name: "campaigns",
			Endpoints: []Endpoint{
				{
					Name:       "campaign list",
					Path:       "/v1/campaign",
					Pagination: PaginateByPage,
					AppIDParam: true,
				},
				{
					Name:       "campaign stats",
					Path:       "/v1/campaign/stats",
					Windowed:   true,
					AppIDParam: true,
					Static:     map[string]string{"limit": "100", "page": "0"},
				},
			},
		},
		{
			Name: "email",
			Endpoints: []Endpoint{
				{Name: "email/stats", Path: "/v1/email/stats", Windowed: true, AppIDParam: true},
			},
		},
		{
			Name: "sms",
			Endpoints: []Endpoint{
				{Name: "sms/stats", Path: "/v1/sms/stats", Windowed: true, AppIDParam: true},
			},
		},
		{
			Name: "inapp",
			Endpoints: []Endpoint{
				{Name: "inApp/stats", Path: "/v1/inApp/stats", Windowed: true, AppIDParam: true},
			},
		},
	}
}
