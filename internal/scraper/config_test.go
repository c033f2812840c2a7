package scraper

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("scraper.user_agent", "pricewatch-test")
	v.Set("scraper.accept", "text/html")
	v.Set("scraper.accept_language", "fr-FR")
	v.Set("scraper.request_timeout", "15s")
	v.Set("scraper.max_retries", 3)
	v.Set("scraper.request_delay", "2s")
	v.Set("scraper.flush_every", 100)
	v.Set("scraper.raw_dir", "data/raw")

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "pricewatch-test", cfg.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, 100, cfg.FlushEvery)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	base := testFetcherConfig()
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user agent", func(c *Config) { c.UserAgent = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero flush interval", func(c *Config) { c.FlushEvery = 0 }},
		{"empty raw dir", func(c *Config) { c.RawDir = "" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
