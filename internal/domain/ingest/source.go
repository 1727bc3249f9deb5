package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
)

// Source pulls raw records from an external log feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]devicelog.Record, error)
}

// StatusError reports a non-success response from the feed.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source returned HTTP %d", e.Code)
}

// DecodeError wraps a payload the feed sent but we could not parse.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "malformed source response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// toRecords normalises decoded JSON values; scalars become {"message": v}.
func toRecords(items []any) []devicelog.Record {
	out := make([]devicelog.Record, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, devicelog.Record(v))
		case nil:
		default:
			out = append(out, devicelog.Record{"message": v})
		}
	}
	return out
}

// decodeFeed accepts a bare array or an object wrapping one under "logs" or "data".
func decodeFeed(body []byte) ([]devicelog.Record, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}
	switch v := raw.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		for _, key := range []string{"logs", "data"} {
			if items, ok := v[key].([]any); ok {
				return toRecords(items), nil
			}
		}
		return []devicelog.Record{devicelog.Record(v)}, nil
	default:
		return nil, &DecodeError{Err: fmt.Errorf("unexpected payload type %T", raw)}
	}
}
