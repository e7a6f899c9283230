package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/dbnav/internal/api"
	"github.com/charlesng35/dbnav/internal/app"
	"github.com/charlesng35/dbnav/internal/catalog"
	"github.com/charlesng35/dbnav/internal/database"
	"github.com/charlesng35/dbnav/internal/middleware"
	"github.com/charlesng35/dbnav/internal/services"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Catalog    *catalog.Client
	Navigation *services.NavigationService
	RateStore  middleware.RateStore
	Router     *gin.Engine

	stopRates context.CancelFunc
}

// bootstrapRuntime opens the browsed server, selects its catalog backend
// and builds the navigation service and HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if shutdownErr := stack.Shutdown(); shutdownErr != nil {
				log.Warn("partial bootstrap cleanup failed", zap.Error(shutdownErr))
			}
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbCfg := cfg.Target.Database()
	stack.DB, err = database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open target database: %w", err)
	}
	driver := database.Driver(dbCfg)

	backend, err := catalog.Open(stack.DB, driver, cfg.Target.DisableIS)
	if err != nil {
		return nil, fmt.Errorf("select catalog backend: %w", err)
	}
	stack.Catalog, err = catalog.NewClient(backend)
	if err != nil {
		return nil, fmt.Errorf("initialise catalog client: %w", err)
	}

	if err := stack.Catalog.Ping(ctx); err != nil {
		// The tree degrades to empty listings; health reports the failure.
		log.Warn("target database unreachable at startup",
			zap.String("backend", stack.Catalog.Backend()),
			zap.String("reason", catalog.Reason(err)),
			zap.Error(err),
		)
	}
	log.Info("target database connected",
		zap.String("driver", driver),
		zap.String("backend", stack.Catalog.Backend()),
	)

	stack.Navigation, err = services.NewNavigationService(stack.Catalog, cfg.Navigation.Settings(), cfg.Target.ServerName())
	if err != nil {
		return nil, fmt.Errorf("initialise navigation service: %w", err)
	}

	ratesCtx, stopRates := context.WithCancel(context.Background())
	stack.stopRates = stopRates
	stack.RateStore = middleware.NewMemoryRateStore(ratesCtx, cfg.Server.RateLimit.Window)

	stack.Router, err = api.NewRouter(cfg, stack.Navigation, stack.Catalog, stack.RateStore)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown releases resources, reporting every failure.
func (s *runtimeStack) Shutdown() error {
	if s == nil {
		return nil
	}

	var err error
	if s.stopRates != nil {
		s.stopRates()
	}
	if s.DB != nil {
		if closeErr := database.Close(s.DB); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close target database: %w", closeErr))
		}
	}
	return err
}
