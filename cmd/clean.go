package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/soukdata/pricewatch/internal/scraper"
	"github.com/soukdata/pricewatch/internal/transform"
)

// newCleanCmd creates the 'clean' subcommand: the normalization pass that
// turns raw exports into typed, processed files.
func newCleanCmd() *cobra.Command {
	var (
		siteName string
		dateStr  string
		allFiles bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalizes raw exports into processed files",
		Long: `Reads the site's raw CSV exports, converts locale-formatted text
fields (prices, percentages, ratings) into typed values, and writes the
cleaned rows to the processed-data directory.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.GetLogger()

			if err := knownSite(siteName); err != nil {
				return err
			}
			suffix, err := dateSuffix(dateStr, allFiles)
			if err != nil {
				return err
			}

			runner := transform.NewRunner(
				viper.GetString("transform.raw_dir"),
				viper.GetString("transform.processed_dir"),
				siteName,
				logger.With(zap.String("site", siteName)),
			)
			processed, err := runner.Run(cmd.Context(), suffix)
			if err != nil {
				return fmt.Errorf("clean %s: %w", siteName, err)
			}
			logger.Info("Clean finished",
				zap.String("site", siteName),
				zap.Int("files", processed),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site identifier to clean (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "export date to clean, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&allFiles, "all", false, "clean every raw file regardless of date")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

// knownSite rejects site identifiers this build has no registry entry
// for, before any filesystem or network work happens.
func knownSite(site string) error {
	if _, ok := scraper.DefaultRegistry()[site]; !ok {
		return fmt.Errorf("%w: %q", scraper.ErrUnknownSite, site)
	}
	return nil
}

// dateSuffix turns a YYYY-MM-DD flag into the YYYYMMDD filename token,
// defaulting to today. With all=true the filter is dropped entirely.
func dateSuffix(dateStr string, all bool) (string, error) {
	if all {
		return "", nil
	}
	if dateStr == "" {
		return time.Now().UTC().Format("20060102"), nil
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", dateStr, err)
	}
	return day.Format("20060102"), nil
}
