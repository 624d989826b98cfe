package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	KPI       KPIConfig       `yaml:"kpi"`
	Fixtures  FixturesConfig  `yaml:"fixtures"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the slog handler. When Path is set, logs go to a
// rotating file instead of the console.
type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// KPIConfig tunes the dashboard derivations.
type KPIConfig struct {
	WarningThreshold float64 `yaml:"warning_threshold"`
	RevenueKPI       string  `yaml:"revenue_kpi"`
	// PipelineScale converts pipeline amounts into the revenue KPI's unit,
	// e.g. 1000000 when revenue is tracked in millions.
	PipelineScale   string             `yaml:"pipeline_scale"`
	CompositeInputs map[string]float64 `yaml:"composite_inputs"`
}

// FixturesConfig points at the YAML snapshot used by "seed" and by the
// server when no database snapshot has been stored.
type FixturesConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "vantage.db",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  16,
			MaxBackups: 8,
		},
		KPI: KPIConfig{
			WarningThreshold: 5,
			RevenueKPI:       "revenue",
			PipelineScale:    "1",
		},
		Fixtures: FixturesConfig{
			Path: "fixtures/sample.yaml",
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in that order of increasing precedence.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("VANTAGE_CONFIG_PATH"); path != "" {
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

func applyEnv(cfg *Config) error {
	if host := os.Getenv("VANTAGE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("VANTAGE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid VANTAGE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("VANTAGE_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if dbPath := os.Getenv("VANTAGE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("VANTAGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("VANTAGE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if th := os.Getenv("VANTAGE_WARNING_THRESHOLD"); th != "" {
		v, err := strconv.ParseFloat(th, 64)
		if err != nil {
			return fmt.Errorf("invalid VANTAGE_WARNING_THRESHOLD: %w", err)
		}
		cfg.KPI.WarningThreshold = v
	}
	if id := os.Getenv("VANTAGE_REVENUE_KPI"); id != "" {
		cfg.KPI.RevenueKPI = id
	}
	if scale := os.Getenv("VANTAGE_PIPELINE_SCALE"); scale != "" {
		cfg.KPI.PipelineScale = scale
	}
	if path := os.Getenv("VANTAGE_FIXTURES_PATH"); path != "" {
		cfg.Fixtures.Path = path
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.KPI.WarningThreshold < 0 {
		return fmt.Errorf("invalid warning threshold %v", c.KPI.WarningThreshold)
	}
	if _, err := c.KPI.Scale(); err != nil {
		return err
	}
	return nil
}

// Scale parses PipelineScale. An empty value means 1.
func (k KPIConfig) Scale() (decimal.Decimal, error) {
	if strings.TrimSpace(k.PipelineScale) == "" {
		return decimal.NewFromInt(1), nil
	}
	scale, err := decimal.NewFromString(strings.TrimSpace(k.PipelineScale))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid pipeline scale %q: %w", k.PipelineScale, err)
	}
	if !scale.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("invalid pipeline scale %q: must be positive", k.PipelineScale)
	}
	return scale, nil
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
