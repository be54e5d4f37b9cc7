package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Limiter interface {
	Take(ctx context.Context, key string) (cache.Decision, error)
	Capacity() int
}

// RateLimit keys the bucket by client IP and route. A limiter error lets the
// request through.
func RateLimit(limiter Limiter, logger *logrus.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.Request.Method + ":" + c.FullPath()
		decision, err := limiter.Take(c.Request.Context(), key)
		if err != nil {
			logger.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Capacity()))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			c.Header("Retry-After", decision.RetryAfterSeconds())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
