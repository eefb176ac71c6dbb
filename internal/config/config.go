package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultTickers is the fixed universe analysed on every run.
var DefaultTickers = []string{"AAPL", "MSFT", "GOOG"}

// Lookback ranges accepted by the Yahoo chart API.
var validLookbacks = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true, "5y": true, "ytd": true,
}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL     string `yaml:"base_url"`
		Lookback    string `yaml:"lookback"`
		Concurrency int    `yaml:"concurrency"`
		TimeoutSec  int    `yaml:"timeout_sec"`
	} `yaml:"data_source"`
	Output struct {
		ExcelPath   string `yaml:"excel_path"`
		ChartDir    string `yaml:"chart_dir"`
		ChartPrefix string `yaml:"chart_prefix"`
	} `yaml:"output"`
	Chart struct {
		Enabled  *bool   `yaml:"enabled"`
		WidthIn  float64 `yaml:"width_in"`
		HeightIn float64 `yaml:"height_in"`
		DPI      int     `yaml:"dpi"`
	} `yaml:"chart"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file and an optional .env file, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("LOOKBACK"); v != "" {
		cfg.DataSource.Lookback = v
	}
	if v := os.Getenv("CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.Concurrency = n
		}
	}
	if v := os.Getenv("EXCEL_PATH"); v != "" {
		cfg.Output.ExcelPath = v
	}
	if v := os.Getenv("CHART_DIR"); v != "" {
		cfg.Output.ChartDir = v
	}
	if v := os.Getenv("CHART_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Chart.Enabled = &b
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.DataSource.Lookback == "" {
		cfg.DataSource.Lookback = "1y"
	}
	if cfg.DataSource.Concurrency == 0 {
		cfg.DataSource.Concurrency = 1
	}
	if cfg.DataSource.TimeoutSec == 0 {
		cfg.DataSource.TimeoutSec = 30
	}
	if cfg.Output.ExcelPath == "" {
		cfg.Output.ExcelPath = "Assessment3_Output.xlsx"
	}
	if cfg.Output.ChartDir == "" {
		cfg.Output.ChartDir = "."
	}
	if cfg.Output.ChartPrefix == "" {
		cfg.Output.ChartPrefix = "options_analysis"
	}
	if cfg.Chart.Enabled == nil {
		enabled := true
		cfg.Chart.Enabled = &enabled
	}
	if cfg.Chart.WidthIn == 0 {
		cfg.Chart.WidthIn = 16
	}
	if cfg.Chart.HeightIn == 0 {
		cfg.Chart.HeightIn = 20
	}
	if cfg.Chart.DPI == 0 {
		cfg.Chart.DPI = 150
	}

	return cfg, nil
}

// ChartEnabled reports whether chart rendering is on.
func (c *Config) ChartEnabled() bool {
	return c.Chart.Enabled != nil && *c.Chart.Enabled
}

// TelegramEnabled reports whether summary delivery to Telegram is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Tickers returns a copy of the fixed ticker universe.
func (c *Config) Tickers() []string {
	return append([]string(nil), DefaultTickers...)
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if !validLookbacks[strings.ToLower(c.DataSource.Lookback)] {
		return fmt.Errorf("data_source.lookback %q is not a supported range", c.DataSource.Lookback)
	}
	if c.DataSource.Concurrency < 1 {
		return fmt.Errorf("data_source.concurrency must be at least 1")
	}
	if c.DataSource.TimeoutSec < 1 {
		return fmt.Errorf("data_source.timeout_sec must be positive")
	}
	if c.Chart.WidthIn <= 0 || c.Chart.HeightIn <= 0 {
		return fmt.Errorf("chart.width_in and chart.height_in must be positive")
	}
	if c.Chart.DPI <= 0 {
		return fmt.Errorf("chart.dpi must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	return nil
}
