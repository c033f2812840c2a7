package scraper

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// CSVSink writes crawl output under root/<site>/. Product exports are one
// delimited file per site per day, rewritten in full on every flush, so a
// flush is idempotent at the file level.
type CSVSink struct {
	root   string
	logger *zap.Logger
}

// NewCSVSink returns a sink rooted at dir.
func NewCSVSink(root string, logger *zap.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir %s: %w", root, err)
	}
	return &CSVSink{
		root:   root,
		logger: logger,
	}, nil
}

// SaveProducts rewrites the day file with the current buffer contents.
func (s *CSVSink) SaveProducts(ctx context.Context, site string, day time.Time, products []RawProduct) error {
	if len(products) == 0 {
		s.logger.Warn("No products to save", zap.String("site", site))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	target := filepath.Join(s.root, site, fmt.Sprintf("%s_products_%s.csv", site, day.Format("20060102")))
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, p.Row())
	}
	if err := s.writeCSV(target, RawProductColumns(), rows); err != nil {
		return err
	}
	s.logger.Info("Flushed products",
		zap.String("site", site),
		zap.Int("rows", len(products)),
		zap.String("path", target),
	)
	return nil
}

// SaveCategories rewrites the site's category export.
func (s *CSVSink) SaveCategories(ctx context.Context, site string, categories []Category) error {
	if len(categories) == 0 {
		s.logger.Warn("No categories to save", zap.String("site", site))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	target := filepath.Join(s.root, site, site+"_categories.csv")
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Name, c.ScrapedAt.Format(time.RFC3339), c.URL})
	}
	if err := s.writeCSV(target, []string{"name", "scraped_at", "url"}, rows); err != nil {
		return err
	}
	s.logger.Info("Saved categories",
		zap.String("site", site),
		zap.Int("rows", len(categories)),
		zap.String("path", target),
	)
	return nil
}

// SavePartialJSON snapshots the buffer after an interrupted run.
func (s *CSVSink) SavePartialJSON(_ context.Context, site string, products []RawProduct) error {
	if len(products) == 0 {
		return nil
	}
	target := filepath.Join(s.root, site, site+"_products_partial.json")
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create export dir for %s: %w", target, err)
	}
	rows := make([]map[string]string, 0, len(products))
	columns := RawProductColumns()
	for _, p := range products {
		cells := p.Row()
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = cells[i]
		}
		rows = append(rows, row)
	}
	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal partial snapshot: %w", err)
	}
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return fmt.Errorf("write partial snapshot %s: %w", target, err)
	}
	s.logger.Info("Saved partial snapshot",
		zap.String("site", site),
		zap.Int("rows", len(products)),
		zap.String("path", target),
	)
	return nil
}

func (s *CSVSink) writeCSV(target string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create export dir for %s: %w", target, err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create export %s: %w", target, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header to %s: %w", target, err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write rows to %s: %w", target, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush export %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export %s: %w", target, err)
	}
	return nil
}
