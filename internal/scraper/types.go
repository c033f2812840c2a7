// Package scraper implements the crawl-and-extract engine: category
// discovery, pagination over listing pages, per-card field extraction,
// and incremental persistence of the raw records.
package scraper

import (
	"context"
	"strconv"
	"time"
)

// RawProduct is one observation of a product card on a listing page.
// Every field except ScrapedAt and Source is optional; a nil pointer means
// the element was absent from the card, which is distinct from an element
// that was present but empty. Records are immutable after extraction.
type RawProduct struct {
	Name            *string
	CurrentPrice    *string
	OldPrice        *string
	Discount        *string
	Rating          *string
	ReviewCount     *string
	URL             *string
	ImageURL        *string
	Brand           *string
	SKU             *string
	Category        *string
	Category2       *string
	Category3       *string
	IsOfficialStore bool
	ScrapedAt       time.Time
	Source          string
}

// rawProductColumns is the export column set, ordered alphabetically.
// The cleaning pass and the loader both key on these names.
var rawProductColumns = []string{
	"brand",
	"category",
	"category_2",
	"category_3",
	"current_price",
	"discount",
	"image_url",
	"is_official_store",
	"name",
	"old_price",
	"rating",
	"review_count",
	"scraped_at",
	"sku",
	"source",
	"url",
}

// RawProductColumns returns the CSV column set in export order.
func RawProductColumns() []string {
	return append([]string(nil), rawProductColumns...)
}

// Row renders the record as CSV cells matching RawProductColumns.
// Absent fields become empty cells.
func (p RawProduct) Row() []string {
	return []string{
		deref(p.Brand),
		deref(p.Category),
		deref(p.Category2),
		deref(p.Category3),
		deref(p.CurrentPrice),
		deref(p.Discount),
		deref(p.ImageURL),
		strconv.FormatBool(p.IsOfficialStore),
		deref(p.Name),
		deref(p.OldPrice),
		deref(p.Rating),
		deref(p.ReviewCount),
		p.ScrapedAt.Format(time.RFC3339),
		deref(p.SKU),
		p.Source,
		deref(p.URL),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Category is one discovered category link, deduplicated by href within
// a single catalog build.
type Category struct {
	Name      string
	URL       string
	ScrapedAt time.Time
}

// Session holds the transient state of one site-crawl run. It is owned
// exclusively by the scraper that created it and discarded at run end;
// only flushed data survives.
type Session struct {
	RunID      string
	Site       string
	BaseURL    string
	Categories []Category
	Products   []RawProduct
}

// RunOptions controls one full crawl of a site.
type RunOptions struct {
	ScrapeCategories bool
	ScrapeProducts   bool
	// MaxProducts caps how many new records a single category may add.
	// Zero means unlimited.
	MaxProducts int
}

// RunSummary reports the aggregate outcome of a run.
type RunSummary struct {
	RunID      string
	Categories int
	Products   int
}

// Scraper is the per-site capability set. Sites without an implemented
// extraction ruleset satisfy it with operations that return
// ErrSiteNotSupported.
type Scraper interface {
	BuildCatalog(ctx context.Context) ([]Category, error)
	CrawlCategory(ctx context.Context, cat Category, maxProducts int) error
	Run(ctx context.Context, opts RunOptions) (RunSummary, error)
}

// Page is the result of one successful fetch.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves one page per call, with retries handled internally.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
	Close()
}

// Sink persists crawl output. Product flushes carry overwrite semantics:
// each call rewrites the full day file from the buffer handed to it.
type Sink interface {
	SaveProducts(ctx context.Context, site string, day time.Time, products []RawProduct) error
	SaveCategories(ctx context.Context, site string, categories []Category) error
	SavePartialJSON(ctx context.Context, site string, products []RawProduct) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
