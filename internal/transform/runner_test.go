package transform

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRawCSV(t *testing.T, path string, rows []map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	header := CleanedColumns()
	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = row[col]
		}
		require.NoError(t, w.Write(cells))
	}
	w.Flush()
	require.NoError(t, w.Error())
}

func TestRunnerCleansRawFiles(t *testing.T) {
	t.Parallel()

	rawDir := t.TempDir()
	processedDir := t.TempDir()

	writeRawCSV(t, filepath.Join(rawDir, "jumia", "jumia_products_20260831.csv"),
		[]map[string]string{rawRow(), rawRow()})

	runner := NewRunner(rawDir, processedDir, "jumia", zap.NewNop())
	processed, err := runner.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	products, err := ReadCleanedFile(filepath.Join(processedDir, "jumia", "jumia_products_20260831.csv"))
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].CurrentPrice)
	assert.InDelta(t, 1229.00, *products[0].CurrentPrice, 1e-9)
	assert.True(t, products[0].IsOfficialStore)
}

func TestRunnerDateFilter(t *testing.T) {
	t.Parallel()

	rawDir := t.TempDir()
	processedDir := t.TempDir()

	writeRawCSV(t, filepath.Join(rawDir, "jumia", "jumia_products_20260830.csv"), []map[string]string{rawRow()})
	writeRawCSV(t, filepath.Join(rawDir, "jumia", "jumia_products_20260831.csv"), []map[string]string{rawRow()})

	runner := NewRunner(rawDir, processedDir, "jumia", zap.NewNop())
	processed, err := runner.Run(context.Background(), "20260831")
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	_, err = os.Stat(filepath.Join(processedDir, "jumia", "jumia_products_20260831.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(processedDir, "jumia", "jumia_products_20260830.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunnerMissingRawDirIsNoOp(t *testing.T) {
	t.Parallel()

	runner := NewRunner(filepath.Join(t.TempDir(), "absent"), t.TempDir(), "jumia", zap.NewNop())
	processed, err := runner.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestRunnerBadFileIsContained(t *testing.T) {
	t.Parallel()

	rawDir := t.TempDir()
	processedDir := t.TempDir()

	badRow := rawRow()
	badRow["scraped_at"] = "pas une date"
	writeRawCSV(t, filepath.Join(rawDir, "jumia", "jumia_products_20260830.csv"), []map[string]string{badRow})
	writeRawCSV(t, filepath.Join(rawDir, "jumia", "jumia_products_20260831.csv"), []map[string]string{rawRow()})

	runner := NewRunner(rawDir, processedDir, "jumia", zap.NewNop())
	processed, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	// The malformed file fails whole; the healthy one still goes through.
	assert.Equal(t, 1, processed)
	_, statErr := os.Stat(filepath.Join(processedDir, "jumia", "jumia_products_20260830.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunnerCanceledContext(t *testing.T) {
	t.Parallel()

	rawDir := t.TempDir()
	writeRawCSV(t, filepath.Join(rawDir, "jumia", "jumia_products_20260831.csv"), []map[string]string{rawRow()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(rawDir, t.TempDir(), "jumia", zap.NewNop())
	_, err := runner.Run(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
