package models

import (
	"encoding/json"
	"testing"
)

func TestPayloadItems(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantOK  bool
	}{
		{"data envelope", `{"data":[{"id":1},{"id":2}]}`, 2, true},
		{"bare array", `[{"id":1}]`, 1, true},
		{"empty data array", `{"data":[]}`, 0, true},
		{"data object", `{"data":{"id":1}}`, 0, false},
		{"bare object", `{"id":1}`, 0, false},
		{"garbage", `not json`, 0, false},
	}

	for _, tt := range tests {
		items, ok := PayloadItems(json.RawMessage(tt.raw))
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if len(items) != tt.wantLen {
			t.Errorf("%s: got %d items, want %d", tt.name, len(items), tt.wantLen)
		}
	}
}

func TestPayloadObject(t *testing.T) {
	doc, ok := PayloadObject(json.RawMessage(`{"data":{"weekday-hour":{"monday":{"9":0.1}}}}`))
	if !ok {
		t.Fatal("expected object payload to decode")
	}
	if _, present := doc["weekday-hour"]; !present {
		t.Error("inner document lost its keys")
	}

	if _, ok := PayloadObject(json.RawMessage(`{"data":[1,2]}`)); ok {
		t.Error("array payload must not decode as object")
	}
	if _, ok := PayloadObject(json.RawMessage(`{"other":true}`)); ok {
		t.Error("payload without data must not decode as object")
	}
}
