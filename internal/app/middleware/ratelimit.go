package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/ratelimit"
	"github.com/cirozov-cmyk/device-logs-tile/pkg/response"
)

// RateLimit enforces a per-client-IP throttle. Limiter errors fail open.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		info, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			if logger != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
			}
			c.Next()
			return
		}
		setHeaders(c, info)
		if !info.Allowed {
			response.TooManyRequests(c, info.Reset)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setHeaders(c *gin.Context, info ratelimit.RateLimitInfo) {
	c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset.Unix(), 10))
	if !info.Allowed {
		reset := time.Until(info.Reset)
		if reset < 0 {
			reset = 0
		}
		c.Writer.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())))
	}
}
