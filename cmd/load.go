package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/soukdata/pricewatch/internal/transform"
)

// newLoadCmd creates the 'load' subcommand: upserts one day's processed
// file into the durable store.
func newLoadCmd() *cobra.Command {
	var (
		siteName string
		dateStr  string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Loads processed rows into PostgreSQL",
		Long: `Reads the site's processed CSV for the given date and upserts each
row into the products table. Loading is idempotent: a record whose
(website, sku, scraped_at) key already exists is left untouched.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.GetLogger()

			if err := knownSite(siteName); err != nil {
				return err
			}
			suffix, err := dateSuffix(dateStr, false)
			if err != nil {
				return err
			}

			path := filepath.Join(
				viper.GetString("transform.processed_dir"),
				siteName,
				fmt.Sprintf("%s_products_%s.csv", siteName, suffix),
			)
			products, err := transform.ReadCleanedFile(path)
			if err != nil {
				return fmt.Errorf("read processed file: %w", err)
			}
			if len(products) == 0 {
				logger.Warn("Nothing to load", zap.String("path", path))
				return nil
			}

			db := appInstance.GetDatabase()
			if err := db.EnsureSchema(cmd.Context()); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			inserted, err := db.LoadProducts(cmd.Context(), siteName, products)
			if err != nil {
				return fmt.Errorf("load products: %w", err)
			}

			logger.Info("Load finished",
				zap.String("site", siteName),
				zap.String("file", path),
				zap.Int("rows", len(products)),
				zap.Int("inserted", inserted),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site identifier to load (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "export date to load, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}
