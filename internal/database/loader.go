// Package database provides Postgres-backed persistence for cleaned
// product records. The upsert contract is insert-if-absent keyed by
// (website, sku, scraped_at): loading the same record twice leaves
// exactly one row.
package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/soukdata/pricewatch/internal/transform"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Provider is the durable-store interface the rest of the application
// depends on, keeping command wiring decoupled from pgx.
type Provider interface {
	EnsureSchema(ctx context.Context) error
	LoadProducts(ctx context.Context, website string, products []transform.CleanedProduct) (int, error)
	Close()
}

// LoaderConfig controls the Postgres connection pool.
type LoaderConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Loader writes cleaned product rows into Postgres.
type Loader struct {
	pool   execCloser
	table  string
	logger *zap.Logger
}

// NewLoader creates a Postgres-backed Loader using the provided config.
func NewLoader(ctx context.Context, cfg LoaderConfig, logger *zap.Logger) (*Loader, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "products"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{pool: pool, table: table, logger: logger}, nil
}

// NewLoaderWithPool constructs a Loader from an existing pool (primarily
// for testing).
func NewLoaderWithPool(pool execCloser, table string, logger *zap.Logger) (*Loader, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "products"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{pool: pool, table: table, logger: logger}, nil
}

// Close releases the underlying pool resources.
func (l *Loader) Close() {
	if l == nil || l.pool == nil {
		return
	}
	l.pool.Close()
}

// EnsureSchema creates the products table and its indexes if absent.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("loader is not configured")
	}
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id BIGSERIAL PRIMARY KEY,
	website VARCHAR(50) NOT NULL,
	sku VARCHAR(100),
	name TEXT,
	url TEXT,
	current_price NUMERIC(10, 2),
	old_price NUMERIC(10, 2),
	discount NUMERIC(5, 2),
	rating NUMERIC(3, 2),
	review_count INTEGER,
	is_official_store BOOLEAN,
	image_url TEXT,
	scraped_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	UNIQUE(website, sku, scraped_at)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_website ON %[1]s(website);
CREATE INDEX IF NOT EXISTS idx_%[1]s_scraped_at ON %[1]s(scraped_at);`, l.table)

	if _, err := l.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	l.logger.Info("Database schema ready", zap.String("table", l.table))
	return nil
}

// UpsertProduct inserts one cleaned record if its (website, sku,
// scraped_at) key is new. Returns whether a row was actually inserted;
// a duplicate key is a no-op, never an overwrite.
func (l *Loader) UpsertProduct(ctx context.Context, website string, p transform.CleanedProduct) (bool, error) {
	if l == nil || l.pool == nil {
		return false, fmt.Errorf("loader is not configured")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	website,
	sku,
	name,
	url,
	current_price,
	old_price,
	discount,
	rating,
	review_count,
	is_official_store,
	image_url,
	scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
ON CONFLICT (website, sku, scraped_at) DO NOTHING`, l.table)

	args := []any{
		website,
		p.SKU,
		p.Name,
		p.URL,
		p.CurrentPrice,
		p.OldPrice,
		p.Discount,
		p.Rating,
		reviewCountArg(p.ReviewCount),
		p.IsOfficialStore,
		p.ImageURL,
		p.ScrapedAt,
	}
	tag, err := l.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LoadProducts upserts a batch of cleaned records. Records without a SKU
// have no identity and are skipped. Returns how many rows were inserted.
func (l *Loader) LoadProducts(ctx context.Context, website string, products []transform.CleanedProduct) (int, error) {
	inserted := 0
	skipped := 0
	for _, p := range products {
		if p.SKU == nil || *p.SKU == "" {
			skipped++
			continue
		}
		ok, err := l.UpsertProduct(ctx, website, p)
		if err != nil {
			return inserted, fmt.Errorf("load product %s: %w", *p.SKU, err)
		}
		if ok {
			inserted++
		}
	}
	l.logger.Info("Batch loaded",
		zap.String("website", website),
		zap.Int("inserted", inserted),
		zap.Int("duplicates", len(products)-skipped-inserted),
		zap.Int("skipped_no_sku", skipped),
	)
	return inserted, nil
}

// reviewCountArg converts the float-typed review count to the INTEGER
// column, preserving null.
func reviewCountArg(f *float64) *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}

// NoOpProvider is a Provider that discards everything. Used when no DSN
// is configured so commands that never touch the database still run.
type NoOpProvider struct{}

// EnsureSchema does nothing.
func (NoOpProvider) EnsureSchema(context.Context) error { return nil }

// LoadProducts discards the batch.
func (NoOpProvider) LoadProducts(_ context.Context, _ string, products []transform.CleanedProduct) (int, error) {
	return len(products), nil
}

// Close does nothing.
func (NoOpProvider) Close() {}
