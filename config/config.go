package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the tracker reads at startup. Scoring thresholds
// and request delays come from the YAML file; credentials come from the
// environment (a .env file is honored if present).
type Config struct {
	Scoring struct {
		RejectionThreshold  float64 `yaml:"rejection_threshold"`
		AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
	} `yaml:"scoring"`

	Scraping struct {
		IncludeBrowser       bool    `yaml:"include_browser"`
		EbayDelaySeconds     float64 `yaml:"ebay_delay_seconds"`
		EbayAPIDelaySeconds  float64 `yaml:"ebay_api_delay_seconds"`
		ArtnetDelaySeconds   float64 `yaml:"artnet_delay_seconds"`
		InvaluableDelay      float64 `yaml:"invaluable_delay_seconds"`
		LiveAuctioneersDelay float64 `yaml:"liveauctioneers_delay_seconds"`
		IntervalMinutes      int     `yaml:"interval_minutes"`
	} `yaml:"scraping"`

	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`

	SpreadsheetURL string `yaml:"spreadsheet_url"`

	// Environment-sourced credentials, not part of the YAML file.
	EbayClientID     string `yaml:"-"`
	EbayClientSecret string `yaml:"-"`
	TelegramToken    string `yaml:"-"`
	TelegramChatID   int64  `yaml:"-"`
	DatabaseURL      string `yaml:"-"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Scoring.RejectionThreshold = -1.0
	cfg.Scoring.AcceptanceThreshold = 1.0
	cfg.Scraping.IncludeBrowser = false
	cfg.Scraping.EbayDelaySeconds = 2.0
	cfg.Scraping.EbayAPIDelaySeconds = 0.5
	cfg.Scraping.ArtnetDelaySeconds = 2.0
	cfg.Scraping.InvaluableDelay = 3.0
	cfg.Scraping.LiveAuctioneersDelay = 2.5
	cfg.Scraping.IntervalMinutes = 60
	cfg.API.Addr = ":8080"
	cfg.loadEnv()
	return cfg
}

// Load reads a YAML config file and overlays environment credentials.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.loadEnv()

	return cfg, nil
}

// loadEnv pulls credentials from the environment. A .env file in the
// working directory is loaded first; real environment variables win.
func (c *Config) loadEnv() {
	_ = godotenv.Load()

	c.EbayClientID = os.Getenv("EBAY_CLIENT_ID")
	c.EbayClientSecret = os.Getenv("EBAY_CLIENT_SECRET")
	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.DatabaseURL = os.Getenv("DATABASE_URL")

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.TelegramChatID = id
		}
	}
	if v := os.Getenv("SPREADSHEET_URL"); v != "" {
		c.SpreadsheetURL = v
	}
}

// HasEbayCredentials reports whether the Browse API scraper can be used
// instead of the HTML fallback.
func (c *Config) HasEbayCredentials() bool {
	return c.EbayClientID != "" && c.EbayClientSecret != ""
}
