package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/config"
	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/monitoring"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/ratelimit"
)

func newTestEngine(t *testing.T) (http.Handler, *devicelog.Buffer) {
	t.Helper()
	cfg := &config.Config{
		App:        config.AppConfig{Name: "device-logs-tile", Env: "test"},
		RateLimit:  config.RateLimitConfig{Enabled: true},
		Cors:       config.CORSConfig{AllowedMethods: []string{"GET", "POST"}},
		Monitoring: config.MonitoringConfig{PrometheusEnabled: true},
	}
	buf := devicelog.NewBuffer(5)
	svc := devicelog.NewService(buf, zap.NewNop(), "Device Logs", 3)
	handler := devicelog.NewHandler(svc, devicelog.Manifest{Name: "device-logs-tile", RefreshInterval: 10}, config.SourceNone)
	r := NewRouter(RouterDeps{
		Config:     cfg,
		DeviceLogs: handler,
		Logger:     zap.NewNop(),
		Limiter:    ratelimit.NewMemoryLimiter(100, 10),
	})
	return r, buf
}

func TestRouterServesTileFlow(t *testing.T) {
	r, buf := newTestEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", strings.NewReader(`{"message":"garage closed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tile", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "garage closed")
	require.Equal(t, 1, buf.Size())
}

func TestRouterMetricsAndNotFound(t *testing.T) {
	r, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "not_found")
}

func TestRouterPublishesBufferSize(t *testing.T) {
	monitoring.Init()
	r, buf := newTestEngine(t)

	for _, msg := range []string{"door opened", "lamp on", "boiler off"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", strings.NewReader(`{"message":"`+msg+`"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	require.Equal(t, 3, buf.Size())

	scrape := func() string {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.String()
	}
	require.Contains(t, scrape(), "device_logs_buffer_size 3\n")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/logs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, scrape(), "device_logs_buffer_size 0\n")
}
