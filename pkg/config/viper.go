// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/soukdata/pricewatch/internal/logging"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup so that configuration is loaded and available
// to all other packages.
func InitConfig() {
	// --- Set Search Paths ---
	viper.SetConfigName("config")
	viper.AddConfigPath(".")                 // Current working directory
	viper.AddConfigPath("/etc/pricewatch/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.pricewatch") // User-specific configuration

	// --- Set Defaults ---
	// Header set mimics a desktop browser; the target storefronts reject
	// requests with an obviously programmatic User-Agent.
	viper.SetDefault("scraper.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("scraper.accept",
		"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	viper.SetDefault("scraper.accept_language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")
	viper.SetDefault("scraper.request_timeout", "15s")
	viper.SetDefault("scraper.max_retries", 3)
	viper.SetDefault("scraper.request_delay", "1s")
	viper.SetDefault("scraper.flush_every", 100)
	viper.SetDefault("scraper.raw_dir", "data/raw")

	viper.SetDefault("transform.raw_dir", "data/raw")
	viper.SetDefault("transform.processed_dir", "data/processed")

	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.table", "products")

	viper.SetDefault("metrics.listen_addr", ":9090")
	viper.SetDefault("logging.development", false)

	// --- Environment Variables ---
	viper.SetEnvPrefix("PRICEWATCH") // e.g., PRICEWATCH_DATABASE_DSN=postgres://...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: defaults and environment variables still apply.
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
