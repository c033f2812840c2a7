package database

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soukdata/pricewatch/internal/transform"
)

func strptr(s string) *string     { return &s }
func floatptr(f float64) *float64 { return &f }

func cleanedProduct(sku string) transform.CleanedProduct {
	return transform.CleanedProduct{
		Name:            strptr("Samsung Galaxy A16 128Go"),
		CurrentPrice:    floatptr(1229.00),
		OldPrice:        floatptr(1499.00),
		Discount:        floatptr(18),
		Rating:          floatptr(4.4),
		ReviewCount:     floatptr(128),
		URL:             strptr("https://www.jumia.ma/samsung-galaxy-a16-128go.html"),
		ImageURL:        strptr("https://ma.jumia.is/cms/a16.jpg"),
		SKU:             strptr(sku),
		IsOfficialStore: true,
		ScrapedAt:       time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
		Source:          "jumia.ma",
	}
}

func newMockLoader(t *testing.T) (*Loader, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	loader, err := NewLoaderWithPool(mock, "products", zap.NewNop())
	require.NoError(t, err)
	return loader, mock
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	loader, mock := newMockLoader(t)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, loader.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProductInserts(t *testing.T) {
	t.Parallel()

	loader, mock := newMockLoader(t)
	defer mock.Close()

	p := cleanedProduct("SKU001")
	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			"jumia.ma",
			p.SKU,
			p.Name,
			p.URL,
			p.CurrentPrice,
			p.OldPrice,
			p.Discount,
			p.Rating,
			pgxmock.AnyArg(),
			p.IsOfficialStore,
			p.ImageURL,
			p.ScrapedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := loader.UpsertProduct(context.Background(), "jumia.ma", p)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProductDuplicateIsNoOp(t *testing.T) {
	t.Parallel()

	loader, mock := newMockLoader(t)
	defer mock.Close()

	p := cleanedProduct("SKU001")
	// ON CONFLICT DO NOTHING reports zero affected rows for a known key.
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := loader.UpsertProduct(context.Background(), "jumia.ma", p)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadProductsCountsInsertsAndSkips(t *testing.T) {
	t.Parallel()

	loader, mock := newMockLoader(t)
	defer mock.Close()

	noSKU := cleanedProduct("ignored")
	noSKU.SKU = nil
	emptySKU := cleanedProduct("ignored")
	emptySKU.SKU = strptr("")
	batch := []transform.CleanedProduct{
		cleanedProduct("SKU001"),
		noSKU,
		cleanedProduct("SKU002"),
		emptySKU,
		cleanedProduct("SKU001"), // duplicate key
	}

	mock.ExpectExec("INSERT INTO products").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO products").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO products").WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := loader.LoadProducts(context.Background(), "jumia.ma", batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewLoaderWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewLoaderWithPool(mock, "products; DROP TABLE users", zap.NewNop())
	assert.Error(t, err)

	loader, err := NewLoaderWithPool(mock, "", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, loader)
}

func TestNoOpProvider(t *testing.T) {
	t.Parallel()

	var p NoOpProvider
	require.NoError(t, p.EnsureSchema(context.Background()))
	n, err := p.LoadProducts(context.Background(), "jumia.ma", []transform.CleanedProduct{cleanedProduct("SKU001")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p.Close()
}
