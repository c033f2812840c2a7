// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/soukdata/pricewatch/internal/database"
	"github.com/soukdata/pricewatch/internal/logging"
	"github.com/soukdata/pricewatch/internal/scraper"
)

// App holds the shared, long-lived services: the logger, the durable
// store, and the metrics listener. It is built once at startup and handed
// to the commands that need it.
type App struct {
	logger     *zap.Logger
	db         database.Provider
	metricsSrv *http.Server
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetDatabase provides access to the cleaned-product store.
func (a *App) GetDatabase() database.Provider {
	return a.db
}

// NewApp creates and initializes the service container from Viper
// configuration. It fails fast if a configured service cannot start.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")

	scraper.InitMetrics()

	// Durable store. Without a DSN the pipeline still scrapes and cleans;
	// only the load step needs Postgres.
	var db database.Provider
	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		l.Info("No database DSN configured; cleaned rows will not be loaded.")
		db = database.NoOpProvider{}
	} else {
		l.Info("Connecting to PostgreSQL...")
		loader, err := database.NewLoader(ctx, database.LoaderConfig{
			DSN:   dsn,
			Table: viper.GetString("database.table"),
		}, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db = loader
	}

	// Metrics listener.
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              viper.GetString("metrics.listen_addr"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info("Starting metrics server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error("Metrics server failed", zap.Error(err))
		}
	}()

	l.Info("Application services initialized successfully.")
	return &App{
		logger:     l,
		db:         db,
		metricsSrv: srv,
	}, nil
}

// Close shuts down every held service. Safe to call once at process exit.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}
	a.logger.Info("Application services closed.")
	_ = a.logger.Sync()
}
