// Package cmd defines and implements the CLI commands for the pricewatch
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/soukdata/pricewatch/internal/clock/system"
	"github.com/soukdata/pricewatch/internal/scraper"
)

// newScrapeCmd creates and configures the 'scrape' subcommand, which runs
// one full crawl of a site: catalog discovery, then listing pages per
// category, with the raw records exported incrementally.
func newScrapeCmd() *cobra.Command {
	var (
		siteName       string
		skipCategories bool
		skipProducts   bool
		maxProducts    int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawls one site's category listings",
		Long: `Crawls the selected marketplace: discovers its category catalog,
then walks every category page by page, extracting the product cards
into the raw export. The crawl is strictly sequential and polite.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.GetLogger()

			cfg, err := scraper.LoadConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("load scraper config: %w", err)
			}

			sink, err := scraper.NewCSVSink(cfg.RawDir, logger)
			if err != nil {
				return fmt.Errorf("init sink: %w", err)
			}

			// An unknown site fails here, before any network activity.
			site, err := scraper.DefaultRegistry().New(siteName, scraper.Deps{
				Config: cfg,
				Sink:   sink,
				Clock:  system.New(),
				Logger: logger.With(zap.String("site", siteName)),
			})
			if err != nil {
				return fmt.Errorf("select site: %w", err)
			}

			// An interrupt cancels cooperatively at page boundaries; the
			// scraper flushes its buffer before returning.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := site.Run(ctx, scraper.RunOptions{
				ScrapeCategories: !skipCategories,
				ScrapeProducts:   !skipProducts,
				MaxProducts:      maxProducts,
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Scrape interrupted; partial data persisted",
						zap.Int("products", summary.Products),
					)
					return nil
				}
				return fmt.Errorf("run scraper: %w", err)
			}

			logger.Info("Scrape finished",
				zap.String("run_id", summary.RunID),
				zap.Int("categories", summary.Categories),
				zap.Int("products", summary.Products),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site identifier to scrape (required)")
	cmd.Flags().BoolVar(&skipCategories, "skip-categories", false, "reuse previously discovered categories; skip the catalog build")
	cmd.Flags().BoolVar(&skipProducts, "skip-products", false, "only build the category catalog")
	cmd.Flags().IntVar(&maxProducts, "max-products", 0, "cap on new products per category (0 = unlimited)")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}
