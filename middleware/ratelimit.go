package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimiter counts requests per key. *cache.Cache implements it.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int, error)
}

// RateLimit allows maxRequests per client IP per window. Limiter errors
// let the request through.
func RateLimit(limiter RateLimiter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.CheckRateLimit(c.Request.Context(), c.ClientIP(), maxRequests, window)
		if err != nil {
			utils.Log.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Window", window.String())

		if !allowed {
			utils.Log.WithFields(logrus.Fields{"ip": c.ClientIP(), "path": c.Request.URL.Path}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.NewResponse(
				http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Retry after %v", window),
				nil,
			))
			return
		}

		c.Next()
	}
}
