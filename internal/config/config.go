// Package config handles configuration loading for etftracker.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/etftracker/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. ETFTRACKER_OUTPUT_PATH.
const EnvPrefix = "ETFTRACKER"

// Config represents the complete application configuration.
type Config struct {
	Output    OutputConfig       `mapstructure:"output"    yaml:"output"`
	Fetch     FetchConfig        `mapstructure:"fetch"     yaml:"fetch"`
	History   HistoryConfig      `mapstructure:"history"   yaml:"history"`
	Trend     TrendConfig        `mapstructure:"trend"     yaml:"trend"`
	Reconcile ReconcileConfig    `mapstructure:"reconcile" yaml:"reconcile"`
	Logging   LoggingConfig      `mapstructure:"logging"   yaml:"logging"`
	Roster    []RosterEntry      `mapstructure:"roster"    yaml:"roster"`
	Overrides []HoldingsOverride `mapstructure:"holdings_overrides" yaml:"holdings_overrides"`
}

// OutputConfig holds dataset location settings.
type OutputConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // also the prior snapshot
}

// FetchConfig holds settings for the MoneyDJ page scraper.
type FetchConfig struct {
	BaseURL         string  `mapstructure:"base_url"          yaml:"base_url"`
	Referer         string  `mapstructure:"referer"           yaml:"referer"`
	TimeoutSec      int     `mapstructure:"timeout_sec"       yaml:"timeout_sec"`
	RequestsPerSec  float64 `mapstructure:"requests_per_sec"  yaml:"requests_per_sec"`
	CacheTTL        int     `mapstructure:"cache_ttl"         yaml:"cache_ttl"` // seconds
	TopHoldings     int     `mapstructure:"top_holdings"      yaml:"top_holdings"`
	InstrumentDelay int     `mapstructure:"instrument_delay_ms" yaml:"instrument_delay_ms"`
}

// HistoryConfig holds settings for the historical price series provider.
type HistoryConfig struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Lookback string `mapstructure:"lookback" yaml:"lookback"` // e.g. "6mo", "1y", "90d"
	Interval string `mapstructure:"interval" yaml:"interval"` // "1d", "1wk", "1mo"
}

// TrendConfig holds synthetic trend settings.
type TrendConfig struct {
	Steps int `mapstructure:"steps" yaml:"steps"`
}

// ReconcileConfig holds holdings comparison settings.
type ReconcileConfig struct {
	RemovedPolicy string `mapstructure:"removed_policy" yaml:"removed_policy"` // "drop" or "mark"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
	Color  bool   `mapstructure:"color"  yaml:"color"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.etftracker/config.yaml (home directory)
//  3. /etc/etftracker/config.yaml (system)
//
// A .env file in the working directory is loaded first, if present.
// Environment variables override config file values.
// Format: ETFTRACKER_<SECTION>_<KEY>, e.g., ETFTRACKER_OUTPUT_PATH
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".etftracker"))
	v.AddConfigPath("/etc/etftracker")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if len(cfg.Roster) == 0 {
		cfg.Roster = DefaultRoster()
	}
	if _, err := cfg.Instruments(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("output.path", "public/etf_data.json")

	// MoneyDJ defaults (polite: one request per second)
	v.SetDefault("fetch.base_url", "https://www.moneydj.com/ETF/X/Basic")
	v.SetDefault("fetch.referer", "https://www.moneydj.com/")
	v.SetDefault("fetch.timeout_sec", 10)
	v.SetDefault("fetch.requests_per_sec", 1.0)
	v.SetDefault("fetch.cache_ttl", 1800) // 30 minutes
	v.SetDefault("fetch.top_holdings", 10)
	v.SetDefault("fetch.instrument_delay_ms", 1000)

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("history.lookback", "6mo")
	v.SetDefault("history.interval", "1wk")

	v.SetDefault("trend.steps", 5)
	v.SetDefault("reconcile.removed_policy", "drop")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", false)
}

// loadDotEnv loads ./.env if present. Variables already set in the
// environment take precedence.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// FetchTimeout returns the per-request timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSec) * time.Second
}

// CacheTTL returns the page cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Fetch.CacheTTL) * time.Second
}

// InstrumentDelay returns the pause between two instruments.
func (c *Config) InstrumentDelay() time.Duration {
	return time.Duration(c.Fetch.InstrumentDelay) * time.Millisecond
}

// LookbackWindow parses History.Lookback. Supported units: d, wk, mo, y.
func (c *Config) LookbackWindow() (time.Duration, error) {
	return ParseLookback(c.History.Lookback)
}

// ParseLookback parses windows such as "90d", "2wk", "6mo" or "1y".
// Months count as 30 days and years as 365.
func ParseLookback(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	units := []struct {
		suffix string
		day    int
	}{
		{"wk", 7}, {"mo", 30}, {"d", 1}, {"y", 365},
	}
	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, u.suffix))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid lookback %q", s)
		}
		return time.Duration(n*u.day) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid lookback %q: want <n>d, <n>wk, <n>mo or <n>y", s)
}

// OverrideFor returns the configured manual holdings for ticker, if any.
func (c *Config) OverrideFor(ticker string) ([]models.HoldingEntry, bool) {
	for _, o := range c.Overrides {
		if o.Ticker == ticker {
			return o.Holdings, true
		}
	}
	return nil, false
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
