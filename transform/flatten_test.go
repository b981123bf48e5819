package transform

import (
	"testing"
	"time"
)

func TestStringField(t *testing.T) {
	tests := []struct {
		name string
		elem map[string]any
		keys []string
		want string
	}{
		{"plain string", map[string]any{"name": "Promo"}, []string{"name"}, "Promo"},
		{"numeric id becomes string", map[string]any{"id": float64(1042)}, []string{"id"}, "1042"},
		{"bool becomes string", map[string]any{"active": true}, []string{"active"}, "true"},
		{"alias fallback", map[string]any{"campaignId": "c-7"}, []string{"id", "campaignId"}, "c-7"},
		{"empty string falls through", map[string]any{"name": "", "title": "Alt"}, []string{"name", "title"}, "Alt"},
		{"missing", map[string]any{}, []string{"name"}, ""},
	}

	for _, tt := range tests {
		if got := stringField(tt.elem, tt.keys...); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIntField(t *testing.T) {
	tests := []struct {
		name string
		elem map[string]any
		want int
	}{
		{"number", map[string]any{"sent": float64(120)}, 120},
		{"numeric string", map[string]any{"sent": "45"}, 45},
		{"non-numeric string", map[string]any{"sent": "n/a"}, 0},
		{"missing", map[string]any{}, 0},
	}

	for _, tt := range tests {
		if got := intField(tt.elem, "sent"); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDateField(t *testing.T) {
	midnight := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		elem map[string]any
		want *time.Time
	}{
		{"rfc3339", map[string]any{"d": "2024-02-01T15:04:05Z"}, &midnight},
		{"space separated", map[string]any{"d": "2024-02-01 15:04:05"}, &midnight},
		{"date only", map[string]any{"d": "2024-02-01"}, &midnight},
		{"garbage", map[string]any{"d": "not a date"}, nil},
		{"wrong type", map[string]any{"d": float64(20240201)}, nil},
		{"missing", map[string]any{}, nil},
	}

	for _, tt := range tests {
		got := dateField(tt.elem, "d")
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("%s: got %v, want nil", tt.name, got)
		case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}
