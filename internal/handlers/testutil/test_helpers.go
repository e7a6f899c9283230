package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/dbnav/internal/api"
	"github.com/charlesng35/dbnav/internal/app"
	"github.com/charlesng35/dbnav/internal/catalog"
	sharedtestutil "github.com/charlesng35/dbnav/internal/database/testutil"
	"github.com/charlesng35/dbnav/internal/middleware"
	"github.com/charlesng35/dbnav/internal/navigation"
	"github.com/charlesng35/dbnav/internal/services"
	"github.com/charlesng35/dbnav/pkg/response"
)

// DefaultSchema is the SQLite fixture browsed by handler tests.
var DefaultSchema = []string{
	`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)`,
	`CREATE TABLE order__items (id INTEGER PRIMARY KEY, order_id INTEGER)`,
	`CREATE TABLE order__lines (id INTEGER PRIMARY KEY, order_id INTEGER)`,
	`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)`,
	`CREATE INDEX idx_orders_customer ON orders (customer_id)`,
	`CREATE VIEW big_orders AS SELECT * FROM orders WHERE total > 100`,
}

// Env encapsulates a fully-wired API instance browsing an in-memory SQLite
// database for handler tests.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Config     *app.Config
	Catalog    *catalog.Client
	Navigation *services.NavigationService
	Router     *gin.Engine
}

// EnvOption customises NewEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	schema   []string
	attached []string
	mutate   []func(*app.Config)
}

// WithSchema replaces DefaultSchema.
func WithSchema(statements ...string) EnvOption {
	return func(cfg *envConfig) {
		cfg.schema = statements
	}
}

// WithAttached attaches extra empty databases before the schema runs.
func WithAttached(names ...string) EnvOption {
	return func(cfg *envConfig) {
		cfg.attached = append(cfg.attached, names...)
	}
}

// WithConfig adjusts the application config before the router is built.
func WithConfig(fn func(*app.Config)) EnvOption {
	return func(cfg *envConfig) {
		cfg.mutate = append(cfg.mutate, fn)
	}
}

// TestConfig returns the configuration used by NewEnv before options apply.
func TestConfig() *app.Config {
	settings := navigation.DefaultSettings()
	return &app.Config{
		Server: app.ServerConfig{
			RequestTimeout: 5 * time.Second,
			RateLimit:      app.RateLimitConfig{Requests: 1000, Window: time.Minute},
		},
		Target: app.TargetConfig{Name: "localhost", Driver: "sqlite"},
		Navigation: app.NavigationConfig{
			EnableGrouping:  settings.GroupingEnabled,
			DBSeparator:     settings.DBSeparators,
			TableSeparator:  settings.TableSeparators,
			TableLevel:      settings.TableLevel,
			FirstLevelItems: settings.FirstLevelItems,
			MaxItems:        settings.MaxItems,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
}

// NewEnv provisions a fresh handler test environment.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	envCfg := envConfig{schema: DefaultSchema}
	for _, opt := range opts {
		opt(&envCfg)
	}

	cfg := TestConfig()
	for _, fn := range envCfg.mutate {
		fn(cfg)
	}

	db := sharedtestutil.MustOpenTestDB(t,
		sharedtestutil.WithAttached(envCfg.attached...),
		sharedtestutil.WithStatements(envCfg.schema...),
	)

	backend, err := catalog.Open(db, cfg.Target.Driver, cfg.Target.DisableIS)
	require.NoError(t, err)
	client, err := catalog.NewClient(backend)
	require.NoError(t, err)

	nav, err := services.NewNavigationService(client, cfg.Navigation.Settings(), cfg.Target.ServerName())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rates := middleware.NewMemoryRateStore(ctx, time.Minute)

	router, err := api.NewRouter(cfg, nav, client, rates)
	require.NoError(t, err)

	return &Env{
		T:          t,
		DB:         db,
		Config:     cfg,
		Catalog:    client,
		Navigation: nav,
		Router:     router,
	}
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Get executes a GET request against the test router.
func (e *Env) Get(path string) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(e.T, err)

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Tree fetches the navigation tree for the given query string and decodes
// the root node.
func (e *Env) Tree(query string) (services.NavigationNode, APIResponse) {
	e.T.Helper()

	w := e.Get("/api/navigation/tree?" + query)
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var root services.NavigationNode
	DecodeInto(e.T, resp.Data, &root)
	return root, resp
}
