package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dbnav/internal/app"
	"github.com/charlesng35/dbnav/internal/handlers"
	"github.com/charlesng35/dbnav/internal/middleware"
	"github.com/charlesng35/dbnav/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// navigation, health and metrics routes. pinger may be nil, in which case
// health reports only process liveness.
func NewRouter(cfg *app.Config, nav *services.NavigationService, pinger handlers.Pinger, rates middleware.RateStore) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if nav == nil {
		return nil, fmt.Errorf("navigation service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, cfg, pinger)
	registerMetricsRoutes(r, cfg)

	api := r.Group("/api")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	api.Use(middleware.RateLimit(rates, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	registerNavigationRoutes(api, handlers.NewNavigationHandler(nav))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
