package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Detail output representations.
const (
	FormatNarrow = "narrow"
	FormatWide   = "wide"
)

// Listing fetch engines.
const (
	EngineRod   = "rod"
	EngineColly = "colly"
)

// Config holds every recognized option for a scrape run.
type Config struct {
	Scraper struct {
		BaseURL           string        `yaml:"base_url"`
		DateParam         string        `yaml:"date_param"`
		Engine            string        `yaml:"engine"`
		NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	} `yaml:"scraper"`

	Pacing struct {
		EventPause time.Duration `yaml:"event_pause"`
		BatchSize  int           `yaml:"batch_size"`
		BatchPause time.Duration `yaml:"batch_pause"`
		Retries    int           `yaml:"retries"`
	} `yaml:"pacing"`

	Output struct {
		Dir          string `yaml:"dir"`
		DetailFormat string `yaml:"detail_format"`
	} `yaml:"output"`

	Filters struct {
		Currencies []string `yaml:"currencies"`
		Impacts    []string `yaml:"impacts"`
	} `yaml:"filters"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the defaults used when no config file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Scraper.BaseURL = "https://www.forexfactory.com/calendar"
	cfg.Scraper.DateParam = "day=oct22.2025"
	cfg.Scraper.Engine = EngineRod
	cfg.Scraper.NavigationTimeout = 15 * time.Second
	cfg.Pacing.EventPause = 3 * time.Second
	cfg.Pacing.BatchSize = 5
	cfg.Pacing.BatchPause = 5 * time.Second
	cfg.Pacing.Retries = 2
	cfg.Output.Dir = "."
	cfg.Output.DetailFormat = FormatNarrow
	return cfg
}

func (c *Config) validate() error {
	switch c.Output.DetailFormat {
	case FormatNarrow, FormatWide:
	default:
		return fmt.Errorf("invalid detail_format %q (want %q or %q)", c.Output.DetailFormat, FormatNarrow, FormatWide)
	}
	switch c.Scraper.Engine {
	case EngineRod, EngineColly:
	default:
		return fmt.Errorf("invalid engine %q (want %q or %q)", c.Scraper.Engine, EngineRod, EngineColly)
	}
	if c.Pacing.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Pacing.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}
