package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/dbnav/internal/catalog"
	"github.com/charlesng35/dbnav/pkg/logger"
)

// Pinger reports whether the browsed server answers.
type Pinger interface {
	Ping(ctx context.Context) error
	Backend() string
}

// Health returns a status payload useful for readiness checks. With a
// pinger the browsed server is checked too; a failing server yields 503.
func Health(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pinger == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}

		payload := gin.H{"status": "ok", "backend": pinger.Backend()}
		if err := pinger.Ping(requestContext(c)); err != nil {
			reason := catalog.Reason(err)
			logger.WithModule("health").Warn("catalog ping failed",
				zap.String("backend", pinger.Backend()),
				zap.String("reason", reason),
				zap.Error(err),
			)
			payload["status"] = "degraded"
			payload["reason"] = reason
			c.JSON(http.StatusServiceUnavailable, payload)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}
