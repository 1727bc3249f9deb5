package devicelog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMessage(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
		want string
	}{
		{"message wins", Record{"message": "hello", "payload": "x", "topic": "t"}, "hello"},
		{"topic and payload", Record{"payload": "23.5", "topic": "temp/living"}, "temp/living: 23.5"},
		{"numeric payload with topic", Record{"payload": 23.5, "topic": "temp/living"}, "temp/living: 23.5"},
		{"payload only", Record{"payload": map[string]any{"on": true}}, `{"on":true}`},
		{"blank message falls through", Record{"message": "  ", "payload": "p"}, "p"},
		{"non-string message", Record{"message": 42}, "42"},
		{"whole record", Record{"status": "ok", "code": 3}, `{"code":3,"status":"ok"}`},
		{"empty record", Record{}, "{}"},
		{"markup kept unescaped", Record{"status": "a&b <ok>"}, `{"status":"a&b <ok>"}`},
		{"topic without payload", Record{"topic": "a/b"}, `{"topic":"a/b"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractMessage(tc.rec))
		})
	}
}

func TestExtractType(t *testing.T) {
	require.Equal(t, TypeWarning, ExtractType(Record{"type": "WARNING"}))
	require.Equal(t, TypeDevice, ExtractType(Record{"type": " device "}))
	require.Equal(t, TypeInfo, ExtractType(Record{"type": "debug"}))
	require.Equal(t, TypeInfo, ExtractType(Record{}))
}

func TestExtractDevice(t *testing.T) {
	require.Equal(t, "lamp", ExtractDevice(Record{"device": "lamp", "topic": "x"}))
	require.Equal(t, "home/door", ExtractDevice(Record{"topic": "home/door"}))
	require.Empty(t, ExtractDevice(Record{"message": "m"}))
}
