package transform

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Runner walks one site's raw exports, normalizes them row by row, and
// writes the cleaned files next door under the processed directory.
// Per-file errors are contained: one bad file never stops the pass.
type Runner struct {
	rawDir       string
	processedDir string
	site         string
	logger       *zap.Logger
}

// NewRunner builds a cleaning pass for one site.
func NewRunner(rawDir, processedDir, site string, logger *zap.Logger) *Runner {
	return &Runner{
		rawDir:       rawDir,
		processedDir: processedDir,
		site:         site,
		logger:       logger,
	}
}

// Run processes every raw CSV for the site, or only the files matching
// dateSuffix (YYYYMMDD) when it is non-empty. A missing raw folder or an
// empty one is a warning and a no-op, not an error. Returns how many
// files were cleaned successfully.
func (r *Runner) Run(ctx context.Context, dateSuffix string) (int, error) {
	siteRawDir := filepath.Join(r.rawDir, r.site)
	entries, err := os.ReadDir(siteRawDir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("No raw data folder for site", zap.String("dir", siteRawDir))
			return 0, nil
		}
		return 0, fmt.Errorf("read raw dir %s: %w", siteRawDir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if dateSuffix != "" && !strings.Contains(name, dateSuffix) {
			continue
		}
		files = append(files, name)
	}
	if len(files) == 0 {
		r.logger.Warn("No raw CSV files to process",
			zap.String("dir", siteRawDir),
			zap.String("date", dateSuffix),
		)
		return 0, nil
	}

	r.logger.Info("Processing raw files",
		zap.String("site", r.site),
		zap.Int("files", len(files)),
	)

	processed := 0
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		rawPath := filepath.Join(siteRawDir, name)
		outPath := filepath.Join(r.processedDir, r.site, name)
		if err := r.processFile(rawPath, outPath); err != nil {
			r.logger.Error("Failed to process file",
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	r.logger.Info("Cleaning pass finished",
		zap.String("site", r.site),
		zap.Int("processed", processed),
	)
	return processed, nil
}

func (r *Runner) processFile(rawPath, outPath string) error {
	rows, err := ReadRows(rawPath)
	if err != nil {
		return err
	}

	cleaned := make([]CleanedProduct, 0, len(rows))
	for i, row := range rows {
		record, err := CleanRow(row)
		if err != nil {
			// Malformed timestamps mean the raw file violates the
			// scraper's contract; fail the whole file.
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		cleaned = append(cleaned, record)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("create processed dir for %s: %w", outPath, err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(CleanedColumns()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header to %s: %w", outPath, err)
	}
	for _, record := range cleaned {
		if err := w.Write(record.Row()); err != nil {
			_ = f.Close()
			return fmt.Errorf("write row to %s: %w", outPath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outPath, err)
	}

	r.logger.Info("Cleaned file",
		zap.String("raw", rawPath),
		zap.String("processed", outPath),
		zap.Int("rows", len(cleaned)),
	)
	return nil
}

// ReadRows loads a headed CSV file as one map per row, keyed by column.
func ReadRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, cells := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCleanedFile loads one processed CSV into typed records.
func ReadCleanedFile(path string) ([]CleanedProduct, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	products := make([]CleanedProduct, 0, len(rows))
	for i, row := range rows {
		p, err := FromCleanRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		products = append(products, p)
	}
	return products, nil
}
