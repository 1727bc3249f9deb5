package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
)

func TestDecodeFeedShapes(t *testing.T) {
	recs, err := decodeFeed([]byte(`[{"message":"a"},"plain",null,7]`))
	require.NoError(t, err)
	require.Equal(t, []devicelog.Record{{"message": "a"}, {"message": "plain"}, {"message": float64(7)}}, recs)

	recs, err = decodeFeed([]byte(`{"logs":[{"payload":"on","topic":"lamp"}]}`))
	require.NoError(t, err)
	require.Equal(t, "lamp: on", devicelog.ExtractMessage(recs[0]))

	recs, err = decodeFeed([]byte(`{"data":[{"message":"x"}]}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	recs, err = decodeFeed([]byte(`{"status":"ok"}`))
	require.NoError(t, err)
	require.Equal(t, `{"status":"ok"}`, devicelog.ExtractMessage(recs[0]))
}

func TestDecodeFeedErrors(t *testing.T) {
	_, err := decodeFeed([]byte(`"just a string"`))
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))

	_, err = decodeFeed([]byte(`{`))
	require.True(t, errors.As(err, &decodeErr))
}

func TestDecodeLines(t *testing.T) {
	recs := decodeLines([]string{`{"message":"json"}`, `raw text`, `null`})

	require.Equal(t, []devicelog.Record{{"message": "json"}, {"message": "raw text"}, {"message": "null"}}, recs)
}

func TestNormalizeRow(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := normalizeRow(map[string]any{"message": []byte("boiler on"), "created_at": ts, "level": int64(2)})

	require.Equal(t, "boiler on", rec["message"])
	require.Equal(t, "2024-01-02T03:04:05Z", rec["created_at"])
	require.Equal(t, int64(2), rec["level"])
}

func TestHTTPSourceRejectsOversizedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["` + strings.Repeat("x", maxFeedSize) + `"]`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	require.Contains(t, err.Error(), fmt.Sprintf("feed exceeds %d bytes", maxFeedSize))
}

func TestRedisSourceReadsListTail(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	for i := 0; i < 12; i++ {
		_, err := mr.RPush("device:logs", fmt.Sprintf(`{"message":"m%d","device":"lamp"}`, i))
		require.NoError(t, err)
	}
	_, err := mr.RPush("device:logs", "raw line")
	require.NoError(t, err)

	recs, err := NewRedisSource(client, "device:logs").Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, recs, devicelog.IngestWindow)
	require.Equal(t, "m3", recs[0]["message"])
	require.Equal(t, "lamp", recs[0]["device"])
	require.Equal(t, devicelog.Record{"message": "raw line"}, recs[len(recs)-1])
}

func TestRedisSourceMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	recs, err := NewRedisSource(client, "absent").Fetch(context.Background())

	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestRedisSourceConnectionError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err = NewRedisSource(client, "device:logs").Fetch(context.Background())

	require.Error(t, err)
	require.Contains(t, err.Error(), "lrange device:logs")
}

func TestSQLSourceScansRows(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(conn, "sqlmock")
	defer db.Close()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT message, type, device, created_at FROM device_logs").
		WillReturnRows(sqlmock.NewRows([]string{"message", "type", "device", "created_at"}).
			AddRow([]byte("boiler on"), "device", "boiler", ts).
			AddRow("window open", nil, "window", ts))

	recs, err := NewSQLSource(db, "SELECT message, type, device, created_at FROM device_logs").Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "boiler on", devicelog.ExtractMessage(recs[0]))
	require.Equal(t, devicelog.TypeDevice, devicelog.ExtractType(recs[0]))
	require.Equal(t, "2024-01-02T03:04:05Z", recs[0]["created_at"])
	require.Equal(t, "window", devicelog.ExtractDevice(recs[1]))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSourceQueryError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(conn, "sqlmock")
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err = NewSQLSource(db, "SELECT * FROM device_logs").Fetch(context.Background())

	require.ErrorContains(t, err, "query log source: relation does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}
