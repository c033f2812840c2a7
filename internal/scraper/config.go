package scraper

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences a crawl run.
// All values originate from Viper so the scraper can be configured via
// files, env vars, or CLI flags, while staying decoupled from Viper itself.
type Config struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	RequestTimeout time.Duration
	MaxRetries     int
	RequestDelay   time.Duration
	FlushEvery     int
	RawDir         string
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		UserAgent:      v.GetString("scraper.user_agent"),
		Accept:         v.GetString("scraper.accept"),
		AcceptLanguage: v.GetString("scraper.accept_language"),
		RequestTimeout: v.GetDuration("scraper.request_timeout"),
		MaxRetries:     v.GetInt("scraper.max_retries"),
		RequestDelay:   v.GetDuration("scraper.request_delay"),
		FlushEvery:     v.GetInt("scraper.flush_every"),
		RawDir:         v.GetString("scraper.raw_dir"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("scraper.user_agent must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("scraper.max_retries must be positive, got %d", c.MaxRetries)
	}
	if c.FlushEvery <= 0 {
		return fmt.Errorf("scraper.flush_every must be positive, got %d", c.FlushEvery)
	}
	if c.RawDir == "" {
		return fmt.Errorf("scraper.raw_dir must not be empty")
	}
	return nil
}
