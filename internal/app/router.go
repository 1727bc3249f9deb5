package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/app/middleware"
	"github.com/cirozov-cmyk/device-logs-tile/internal/config"
	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/ratelimit"
	"github.com/cirozov-cmyk/device-logs-tile/pkg/response"
)

// RouterDeps aggregates HTTP dependencies.
type RouterDeps struct {
	Config     *config.Config
	DeviceLogs *devicelog.Handler
	Logger     *zap.Logger
	Limiter    ratelimit.Limiter
}

// NewRouter builds the gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Config != nil {
		r.Use(middleware.CORS(deps.Config.Cors))
	}
	if deps.Config == nil || deps.Config.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.Limiter, deps.Logger))
	}
	r.Use(middleware.RequestLogger(deps.Logger))

	api := r.Group("/api/v1")
	deps.DeviceLogs.RegisterRoutes(api)

	if deps.Config == nil || deps.Config.Monitoring.PrometheusEnabled {
		api.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route")
	})

	return r
}
