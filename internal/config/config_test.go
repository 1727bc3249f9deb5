package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOURCE_KIND", "")
	t.Setenv("TILE_LOG_CAPACITY", "")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 50, cfg.Tile.Capacity)
	require.Equal(t, 8, cfg.Tile.RecentEntries)
	require.Equal(t, SourceNone, cfg.Source.Kind)
	require.Equal(t, 10*time.Second, cfg.Source.PollInterval)
	require.Equal(t, 5*time.Second, cfg.Source.FetchTimeout)
}

func TestLoadHTTPSourceRequiresURL(t *testing.T) {
	t.Setenv("SOURCE_KIND", "http")
	t.Setenv("SOURCE_URL", "")

	_, err := Load()

	require.Error(t, err)
}

func TestLoadHTTPSource(t *testing.T) {
	t.Setenv("SOURCE_KIND", "HTTP")
	t.Setenv("SOURCE_URL", "http://node-red.local:1880/logs")
	t.Setenv("SOURCE_POLL_INTERVAL", "30")
	t.Setenv("SOURCE_FETCH_TIMEOUT", "7s")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, SourceHTTP, cfg.Source.Kind)
	require.Equal(t, 30*time.Second, cfg.Source.PollInterval)
	require.Equal(t, 7*time.Second, cfg.Source.FetchTimeout)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("SOURCE_KIND", "kafka")

	_, err := Load()

	require.Error(t, err)
}

func TestLoadRejectsBadCapacity(t *testing.T) {
	t.Setenv("SOURCE_KIND", "")
	t.Setenv("TILE_LOG_CAPACITY", "0")

	_, err := Load()

	require.Error(t, err)
}

func TestSplitAndTrim(t *testing.T) {
	require.Nil(t, splitAndTrim(""))
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
