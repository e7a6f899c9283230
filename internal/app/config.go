package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/charlesng35/dbnav/internal/database"
	"github.com/charlesng35/dbnav/internal/navigation"
)

// Config represents the runtime configuration for the navigator.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Target     TargetConfig     `mapstructure:"target"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	LogFormat       string          `mapstructure:"log_format"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles the navigation API per client and route.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// TargetConfig describes the database server being browsed.
type TargetConfig struct {
	// Name labels the root node; it defaults to the host or driver.
	Name         string            `mapstructure:"name"`
	Driver       string            `mapstructure:"driver"`
	DSN          string            `mapstructure:"dsn"`
	Path         string            `mapstructure:"path"`
	Host         string            `mapstructure:"host"`
	Port         int               `mapstructure:"port"`
	DatabaseName string            `mapstructure:"database"`
	Username     string            `mapstructure:"username"`
	Password     string            `mapstructure:"password"`
	Options      map[string]string `mapstructure:"options"`
	ReadOnly     bool              `mapstructure:"read_only"`
	// DisableIS forces enumeration instead of information_schema queries.
	DisableIS bool `mapstructure:"disable_is"`
}

// NavigationConfig holds the tree settings.
type NavigationConfig struct {
	EnableGrouping           bool     `mapstructure:"enable_grouping"`
	DBSeparator              []string `mapstructure:"db_separator"`
	TableSeparator           []string `mapstructure:"table_separator"`
	TableLevel               int      `mapstructure:"table_level"`
	FirstLevelItems          int      `mapstructure:"first_level_items"`
	MaxItems                 int      `mapstructure:"max_items"`
	HideDB                   string   `mapstructure:"hide_db"`
	OnlyDB                   []string `mapstructure:"only_db"`
	DisableDatabaseExpansion bool     `mapstructure:"disable_database_expansion"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("DBNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Navigation.Settings().Validate(); err != nil {
		return nil, fmt.Errorf("config: navigation: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.rate_limit.requests", 120)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("target.driver", "sqlite")
	v.SetDefault("target.path", "")
	v.SetDefault("target.read_only", false)
	v.SetDefault("target.disable_is", false)

	defaults := navigation.DefaultSettings()
	v.SetDefault("navigation.enable_grouping", defaults.GroupingEnabled)
	v.SetDefault("navigation.db_separator", defaults.DBSeparators)
	v.SetDefault("navigation.table_separator", defaults.TableSeparators)
	v.SetDefault("navigation.table_level", defaults.TableLevel)
	v.SetDefault("navigation.first_level_items", defaults.FirstLevelItems)
	v.SetDefault("navigation.max_items", defaults.MaxItems)
	v.SetDefault("navigation.hide_db", "")
	v.SetDefault("navigation.only_db", []string{})
	v.SetDefault("navigation.disable_database_expansion", false)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Settings adapts the navigation section into the value passed to the tree.
func (c NavigationConfig) Settings() navigation.Settings {
	return navigation.Settings{
		GroupingEnabled:          c.EnableGrouping,
		DBSeparators:             append([]string(nil), c.DBSeparator...),
		TableSeparators:          append([]string(nil), c.TableSeparator...),
		TableLevel:               c.TableLevel,
		FirstLevelItems:          c.FirstLevelItems,
		MaxItems:                 c.MaxItems,
		HideDB:                   c.HideDB,
		OnlyDB:                   append([]string(nil), c.OnlyDB...),
		DisableDatabaseExpansion: c.DisableDatabaseExpansion,
	}
}

// Database adapts the target section into database connection options.
func (c TargetConfig) Database() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		Name:     c.DatabaseName,
		User:     c.Username,
		Password: c.Password,
		Options:  c.Options,
		ReadOnly: c.ReadOnly,
	}
}

// ServerName returns the label of the tree root.
func (c TargetConfig) ServerName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	if host := strings.TrimSpace(c.Host); host != "" {
		if c.Port > 0 {
			return fmt.Sprintf("%s:%d", host, c.Port)
		}
		return host
	}
	return database.Driver(c.Database())
}
