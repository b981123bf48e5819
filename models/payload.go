package models

import "encoding/json"

// API payloads come in three shapes: {"data": [...]}, {"data": {...}}, or a
// bare top-level array. The helpers below resolve the shape once so the
// transform stage can treat "list of elements" and "single document"
// uniformly.

// PayloadItems returns the element list of an array-shaped payload.
// The second return value is false when the payload holds no array.
func PayloadItems(raw json.RawMessage) ([]map[string]any, bool) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return decodeArray(envelope.Data)
	}
	return decodeArray(raw)
}

// PayloadObject returns the inner document of an object-shaped payload,
// i.e. {"data": {...}}. The second return value is false otherwise.
func PayloadObject(raw json.RawMessage) (map[string]any, bool) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(envelope.Data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func decodeArray(raw json.RawMessage) ([]map[string]any, bool) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
