package devicelog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractMessage derives display text from a raw record. Priority: message,
// then "topic: payload", then payload alone, then the whole record as JSON.
func ExtractMessage(rec Record) string {
	if msg, ok := field(rec, "message"); ok {
		return msg
	}
	payload, hasPayload := field(rec, "payload")
	if topic, ok := field(rec, "topic"); ok && hasPayload {
		return topic + ": " + payload
	}
	if hasPayload {
		return payload
	}
	return stringify(map[string]any(rec))
}

// ExtractType reads the "type" field, defaulting to info.
func ExtractType(rec Record) Type {
	raw, _ := field(rec, "type")
	return ParseType(raw)
}

// ExtractDevice reads "device", falling back to "topic". Empty when neither is set.
func ExtractDevice(rec Record) string {
	if d, ok := field(rec, "device"); ok {
		return d
	}
	if t, ok := field(rec, "topic"); ok {
		return t
	}
	return ""
}

// field returns the stringified value of key when present and non-blank.
func field(rec Record, key string) (string, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", false
	}
	s := stringify(v)
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
