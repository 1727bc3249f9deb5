package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/logging"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/monitoring"
)

// pollPaths are hit by dashboards every few seconds; successful hits log at debug.
var pollPaths = map[string]bool{
	"/api/v1/tile":    true,
	"/api/v1/health":  true,
	"/api/v1/metrics": true,
}

// RequestLogger logs request info and records metrics.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		id := c.GetString("request_id")
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		reqLogger := logging.WithRequestID(logger, id)
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("request", append(fields, zap.Strings("errors", c.Errors.Errors()))...)
		case status < http.StatusBadRequest && pollPaths[path]:
			reqLogger.Debug("request", fields...)
		default:
			reqLogger.Info("request", fields...)
		}
		monitoring.ObserveRequest(path, c.Request.Method, strconv.Itoa(status), latency.Seconds())
	}
}
