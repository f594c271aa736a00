package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rpggio/profitability/internal/domain/costing"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/overhead"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/reporting"
	"github.com/rpggio/profitability/internal/domain/valuation"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Engine    EngineConfig    `yaml:"engine"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how MCP clients connect.
type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
	// ViewerID is the person a stdio session acts as.
	ViewerID string `yaml:"viewer_id"`
}

type DBConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	File     string `yaml:"file"`
	Truncate bool   `yaml:"truncate"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// APIKeys maps the sha256 hex of a token to a person id. Keys stored in
	// the database work as well.
	APIKeys map[string]string `yaml:"api_keys"`
}

// EngineConfig holds the computation constants.
type EngineConfig struct {
	UnitValue             float64                 `yaml:"unit_value"`
	EffectiveMonthlyHours float64                 `yaml:"effective_monthly_hours"`
	Calendars             profitability.Calendars `yaml:"calendars"`
	ExpectedHours         reporting.Baseline      `yaml:"expected_hours"`
	OverheadPolicy        string                  `yaml:"overhead_policy"`
	HouseClientID         string                  `yaml:"house_client_id"`
	ExcludedClientIDs     []string                `yaml:"excluded_client_ids"`
	TargetMarginPct       float64                 `yaml:"target_margin_pct"`
	RevenueBasis          string                  `yaml:"revenue_basis"`
	EditWindowDays        int                     `yaml:"edit_window_days"`
	Quote                 valuation.Defaults      `yaml:"quote"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	defaults := profitability.DefaultSettings()
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "profitability.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			UnitValue:             defaults.Rates.UnitValue,
			EffectiveMonthlyHours: defaults.Rates.EffectiveMonthlyHours,
			Calendars:             defaults.Calendars,
			ExpectedHours:         defaults.Baseline,
			OverheadPolicy:        string(defaults.OverheadPolicy),
			HouseClientID:         defaults.HouseClientID,
			TargetMarginPct:       defaults.TargetMarginPct,
			RevenueBasis:          string(defaults.RevenueBasis),
			EditWindowDays:        ledger.DefaultEditWindowDays,
			Quote: valuation.Defaults{
				OverheadPct: valuation.DefaultOverheadPct,
				MarginPct:   valuation.DefaultMarginPct,
			},
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("PROFIT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults, then applies the environment.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := loadFromFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("PROFIT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PROFIT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PROFIT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("PROFIT_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if viewer := os.Getenv("PROFIT_VIEWER_ID"); viewer != "" {
		cfg.Transport.ViewerID = viewer
	}
	if driver := os.Getenv("PROFIT_DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if dbPath := os.Getenv("PROFIT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dsn := os.Getenv("PROFIT_DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	if level := os.Getenv("PROFIT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if file := os.Getenv("PROFIT_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}
	if auth := os.Getenv("PROFIT_AUTH_ENABLED"); auth != "" {
		enabled, err := strconv.ParseBool(auth)
		if err != nil {
			return fmt.Errorf("invalid PROFIT_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if v := os.Getenv("PROFIT_UNIT_VALUE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PROFIT_UNIT_VALUE: %w", err)
		}
		cfg.Engine.UnitValue = f
	}
	if policy := os.Getenv("PROFIT_OVERHEAD_POLICY"); policy != "" {
		cfg.Engine.OverheadPolicy = policy
	}
	if basis := os.Getenv("PROFIT_REVENUE_BASIS"); basis != "" {
		cfg.Engine.RevenueBasis = basis
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate rejects settings no computation could run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Transport.Mode) {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.DB.Driver {
	case "sqlite", "":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("invalid db driver %q", c.DB.Driver)
	}
	if c.Engine.UnitValue <= 0 || c.Engine.EffectiveMonthlyHours <= 0 {
		return fmt.Errorf("engine.unit_value and engine.effective_monthly_hours must be positive")
	}
	if c.Engine.EditWindowDays < 0 {
		return fmt.Errorf("engine.edit_window_days must not be negative")
	}
	return c.Engine.Settings().Validate()
}

// Settings builds the immutable engine settings.
func (e EngineConfig) Settings() profitability.Settings {
	excluded := make([]string, len(e.ExcludedClientIDs))
	copy(excluded, e.ExcludedClientIDs)
	return profitability.Settings{
		Rates: costing.Rates{
			UnitValue:             e.UnitValue,
			EffectiveMonthlyHours: e.EffectiveMonthlyHours,
		},
		Calendars:         e.Calendars,
		Baseline:          e.ExpectedHours,
		OverheadPolicy:    overhead.Policy(e.OverheadPolicy),
		HouseClientID:     e.HouseClientID,
		ExcludedClientIDs: excluded,
		TargetMarginPct:   e.TargetMarginPct,
		RevenueBasis:      profitability.RevenueBasis(e.RevenueBasis),
	}
}

// LedgerOptions returns the write service options.
func (e EngineConfig) LedgerOptions() ledger.Options {
	return ledger.Options{EditWindowDays: e.EditWindowDays}
}
