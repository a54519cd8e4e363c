package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix shared by every environment variable the dashboard reads.
const EnvPrefix = "PIHOLE_DASH_"

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	Host string `koanf:"host" validate:"required,ip"`
	Port int    `koanf:"port" validate:"required,gte=1,lt=65535"`

	// StaticDir holds the built single-page frontend. Missing is fine.
	StaticDir string `koanf:"static_dir"`

	// FTLDBPath is the read-only query log database.
	FTLDBPath string `koanf:"ftl_db_path" validate:"required"`

	// GravityDBPath is the list database; only the enabled flag is ever written.
	GravityDBPath string `koanf:"gravity_db_path" validate:"required"`

	// DashboardDBPath is the dashboard-owned store for timed blocks and device nicknames.
	DashboardDBPath string `koanf:"dashboard_db_path" validate:"required"`

	// StoreBackend selects the dashboard store engine.
	StoreBackend string `koanf:"store_backend" validate:"required,oneof=sqlite bolt"`

	PiholeCommand  string        `koanf:"pihole_command" validate:"required"`
	UseSudo        bool          `koanf:"use_sudo"`
	CommandTimeout time.Duration `koanf:"command_timeout" validate:"gt=0"`

	StatsCacheTTL time.Duration `koanf:"stats_cache_ttl" validate:"gt=0"`
	HeavyCacheTTL time.Duration `koanf:"heavy_cache_ttl" validate:"gt=0"`
	CacheSize     int           `koanf:"cache_size" validate:"required,gte=1"`

	// SweepInterval bounds how late a timed block may expire.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`

	// ReferenceRefresh is how long the latest query timestamp is reused.
	ReferenceRefresh time.Duration `koanf:"reference_refresh" validate:"gt=0"`
}

// DEFAULT_APP_CONFIG mirrors a stock Pi-hole install.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:              "prod",
	LogLevel:         "info",
	Host:             "0.0.0.0",
	Port:             8080,
	StaticDir:        "./frontend/dist",
	FTLDBPath:        "/etc/pihole/pihole-FTL.db",
	GravityDBPath:    "/etc/pihole/gravity.db",
	DashboardDBPath:  "./dashboard.db",
	StoreBackend:     "sqlite",
	PiholeCommand:    "pihole",
	UseSudo:          true,
	CommandTimeout:   15 * time.Second,
	StatsCacheTTL:    10 * time.Second,
	HeavyCacheTTL:    60 * time.Second,
	CacheSize:        512,
	SweepInterval:    30 * time.Second,
	ReferenceRefresh: 30 * time.Second,
}

// envLoader loads environment variables with the prefix "PIHOLE_DASH_",
// lowercasing keys and stripping the prefix. It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

// Address returns the host:port the HTTP server binds to.
func (c *AppConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
