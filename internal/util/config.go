package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Historical HistoricalConfig `yaml:"historical"`
	Alpaca     AlpacaConfig     `yaml:"alpaca"`
	Database   DatabaseConfig   `yaml:"database"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Chart      ChartConfig      `yaml:"chart"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// DefaultMaxHorizon bounds how many dates a single extrapolate request may
// ask for.
const DefaultMaxHorizon = 365

type ForecastConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxHistory     int    `yaml:"max_history"`
	MaxHorizon     int    `yaml:"max_horizon"`
}

const (
	HistoricalSourceForecast = "forecast"
	HistoricalSourceYahoo    = "yahoo"
	HistoricalSourceAlpaca   = "alpaca"
)

type HistoricalConfig struct {
	Source    string `yaml:"source"`
	StartDate string `yaml:"start_date"`
}

type AlpacaConfig struct {
	ApiKey    string `yaml:"api_key"`
	ApiSecret string `yaml:"api_secret"`
	Endpoint  string `yaml:"endpoint"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Dsn    string `yaml:"dsn"`
}

type ScheduleConfig struct {
	RetrainCron           string `yaml:"retrain_cron"`
	SessionPruneCron      string `yaml:"session_prune_cron"`
	SessionMaxIdleMinutes int    `yaml:"session_max_idle_minutes"`
}

type ChartConfig struct {
	DateFormat string `yaml:"date_format"`
	XAxisTitle string `yaml:"x_axis_title"`
	YAxisTitle string `yaml:"y_axis_title"`
}

func configFile() string {
	if v := os.Getenv("STOCKFORECAST_CONFIG"); v != "" {
		return v
	}
	switch strings.ToLower(os.Getenv("STOCKFORECAST_ENV")) {
	case "dev":
		return "config-dev.yaml"
	case "test":
		return "config-test.yaml"
	}
	return "/go/src/app/config.yaml"
}

// LoadConfig reads the yaml config for the current environment, applies
// environment overrides and fills defaults. A missing file is not an
// error; everything can come from the environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(configFile())
}

func LoadConfigFile(path string) (*Config, error) {
	cfg := &Config{}

	f, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if len(f) > 0 {
		if err := yaml.Unmarshal(f, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FORECAST_BASE_URL"); v != "" {
		cfg.Forecast.BaseURL = v
	}
	if v := os.Getenv("HISTORICAL_SOURCE"); v != "" {
		cfg.Historical.Source = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.ApiKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.ApiSecret = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.Dsn = v
	}
	if v := os.Getenv("RETRAIN_CRON"); v != "" {
		cfg.Schedule.RetrainCron = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3009
	}
	if cfg.Forecast.BaseURL == "" {
		cfg.Forecast.BaseURL = "http://127.0.0.1:5000"
	}
	if cfg.Forecast.TimeoutSeconds == 0 {
		cfg.Forecast.TimeoutSeconds = 120
	}
	if cfg.Forecast.MaxHistory == 0 {
		cfg.Forecast.MaxHistory = 720
	}
	if cfg.Forecast.MaxHorizon == 0 {
		cfg.Forecast.MaxHorizon = DefaultMaxHorizon
	}
	if cfg.Historical.Source == "" {
		cfg.Historical.Source = HistoricalSourceForecast
	}
	if cfg.Historical.StartDate == "" {
		cfg.Historical.StartDate = "2022-01-01"
	}
	if cfg.Alpaca.Endpoint == "" {
		cfg.Alpaca.Endpoint = "https://data.alpaca.markets"
	}
	if cfg.Schedule.SessionPruneCron == "" {
		cfg.Schedule.SessionPruneCron = "@every 10m"
	}
	if cfg.Schedule.SessionMaxIdleMinutes == 0 {
		cfg.Schedule.SessionMaxIdleMinutes = 60
	}
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Forecast.MaxHistory < 0 {
		return fmt.Errorf("forecast.max_history must not be negative")
	}
	if c.Forecast.MaxHorizon < 0 {
		return fmt.Errorf("forecast.max_horizon must not be negative")
	}
	switch c.Historical.Source {
	case HistoricalSourceForecast:
	case HistoricalSourceYahoo:
		if _, err := ParseDate(c.Historical.StartDate); err != nil {
			return fmt.Errorf("historical.start_date: %w", err)
		}
	case HistoricalSourceAlpaca:
		if c.Alpaca.ApiKey == "" || c.Alpaca.ApiSecret == "" {
			return fmt.Errorf("alpaca.api_key and alpaca.api_secret are required for the alpaca historical source")
		}
		if _, err := ParseDate(c.Historical.StartDate); err != nil {
			return fmt.Errorf("historical.start_date: %w", err)
		}
	default:
		return fmt.Errorf("unknown historical.source %q", c.Historical.Source)
	}
	switch c.Database.Driver {
	case "":
	case "postgres", "sqlite":
		if c.Database.Dsn == "" {
			return fmt.Errorf("database.dsn is required when database.driver is set")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}
