package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/charlesng35/dbnav/pkg/errors"
	"github.com/charlesng35/dbnav/pkg/logger"
	"github.com/charlesng35/dbnav/pkg/response"
)

var errTooManyRequests = apperrors.New("TOO_MANY_REQUESTS", "Too many requests", http.StatusTooManyRequests)

// RateLimit limits requests per (clientIP, route) within a fixed window.
// A nil store or non-positive limits disable it.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP() + "|" + c.FullPath()
		count, resetIn, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.WithModule("http").Warn("rate limit store failed", zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > maxRequests {
			response.Error(c, errTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
