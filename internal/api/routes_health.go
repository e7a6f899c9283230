package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dbnav/internal/app"
	"github.com/charlesng35/dbnav/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, pinger handlers.Pinger) {
	if !cfg.Monitoring.Health.Enabled {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/live", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	r.GET("/health", handlers.Health(pinger))
	r.GET("/health/live", handlers.Health(nil))
	r.GET("/health/ready", handlers.Health(pinger))
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}
