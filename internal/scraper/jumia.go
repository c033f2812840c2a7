package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Structural locators for jumia.ma pages.
const (
	jumiaBaseURL = "https://www.jumia.ma"
	jumiaSource  = "jumia.ma"

	jumiaListingSelector      = "article.prd._fb.col.c-prd"
	jumiaNextPageSelector     = `a.pg[aria-label*='suivante']`
	jumiaMenuSelector         = `a[role='menuitem'][href]`
	jumiaMenuFallbackSelector = "nav a[href]"
)

// Jumia crawls jumia.ma: category discovery from the homepage menu, then
// page-by-page listing extraction per category. Strictly sequential; one
// page in flight at a time.
type Jumia struct {
	cfg       Config
	session   *Session
	fetcher   Fetcher
	extractor *Extractor
	sink      Sink
	clock     Clock
	logger    *zap.Logger
}

// NewJumia wires a Jumia scraper from shared dependencies.
func NewJumia(d Deps) (*Jumia, error) {
	if d.Sink == nil {
		return nil, errors.New("jumia: sink is required")
	}
	if d.Clock == nil {
		return nil, errors.New("jumia: clock is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fetcher := d.Fetcher
	if fetcher == nil {
		fetcher = NewCollyFetcher("jumia", d.Config, logger)
	}
	return &Jumia{
		cfg: d.Config,
		session: &Session{
			Site:    "jumia",
			BaseURL: jumiaBaseURL,
		},
		fetcher:   fetcher,
		extractor: NewExtractor(jumiaSource, jumiaBaseURL, jumiaCardSelectors, d.Clock, logger),
		sink:      d.Sink,
		clock:     d.Clock,
		logger:    logger,
	}, nil
}

// Session exposes the run state, mainly for tests and summaries.
func (j *Jumia) Session() *Session {
	return j.session
}

// BuildCatalog fetches the site root and extracts the category menu.
// An unreachable root is not an error: it yields an empty list and a log
// line, so a dead site degrades to a successful-but-empty run.
func (j *Jumia) BuildCatalog(ctx context.Context) ([]Category, error) {
	j.logger.Info("Building category catalog", zap.String("site", j.session.Site))

	page, err := j.fetcher.Fetch(ctx, j.session.BaseURL)
	if err != nil {
		j.logger.Error("Failed to fetch homepage; no categories", zap.Error(err))
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		j.logger.Error("Failed to parse homepage", zap.Error(err))
		return nil, nil
	}

	links := doc.Find(jumiaMenuSelector)
	if links.Length() == 0 {
		j.logger.Warn("No menu-role category links found; using fallback selector")
		links = doc.Find(jumiaMenuFallbackSelector)
	}

	seen := make(map[string]struct{})
	var categories []Category
	links.Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		name := spaceNormalize(link.Text())
		if !keepCategoryLink(href, name, seen) {
			return
		}
		full, ok := ResolveURL(href, j.session.BaseURL)
		if !ok || !sameOrigin(full, j.session.BaseURL) {
			return
		}
		seen[href] = struct{}{}
		categories = append(categories, Category{
			Name:      name,
			URL:       full,
			ScrapedAt: j.clock.Now(),
		})
	})

	j.logger.Info("Catalog built",
		zap.String("site", j.session.Site),
		zap.Int("categories", len(categories)),
	)
	observeCategories(j.session.Site, len(categories))
	return categories, nil
}

// keepCategoryLink applies the catalog filters: drop fragment-only links,
// near-empty labels, and hrefs already seen in this build.
func keepCategoryLink(href, name string, seen map[string]struct{}) bool {
	if href == "" || href[0] == '#' {
		return false
	}
	if utf8.RuneCountInString(name) <= 2 {
		return false
	}
	if _, dup := seen[href]; dup {
		return false
	}
	return true
}

// CrawlCategory walks one category's page sequence, extracting every
// listing card and appending to the shared buffer. maxProducts caps how
// many new records this category may add; zero means unlimited. Page-level
// failures end the category, never the whole run; only cancellation is
// returned to the caller.
func (j *Jumia) CrawlCategory(ctx context.Context, cat Category, maxProducts int) error {
	j.logger.Info("Crawling category",
		zap.String("category", cat.Name),
		zap.String("url", cat.URL),
		zap.Int("max_products", maxProducts),
	)

	currentURL := cat.URL
	pageNum := 1
	initial := len(j.session.Products)

	for {
		// Cancellation is cooperative at page boundaries.
		if err := ctx.Err(); err != nil {
			return err
		}
		if capReached(len(j.session.Products)-initial, maxProducts) {
			j.logger.Info("Reached category cap", zap.Int("cap", maxProducts))
			break
		}

		page, err := j.fetcher.Fetch(ctx, currentURL)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// Exhausted retries or a terminal 404: the rest of this
			// category is unreachable, move on to the next one.
			j.logger.Warn("Page unavailable; ending category",
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
		if err != nil {
			j.logger.Error("Failed to parse listing page",
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			break
		}

		cards := doc.Find(jumiaListingSelector)
		if cards.Length() == 0 {
			j.logger.Info("No listings on page; ending category", zap.Int("page", pageNum))
			break
		}

		added := 0
		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			if capReached(len(j.session.Products)-initial, maxProducts) {
				return false
			}
			record := j.extractor.Extract(card)
			if record == nil {
				return true
			}
			j.session.Products = append(j.session.Products, *record)
			added++
			if len(j.session.Products)%j.cfg.FlushEvery == 0 {
				j.flushProducts(ctx)
			}
			return true
		})
		observeProducts(j.session.Site, added)
		j.logger.Info("Page processed",
			zap.Int("page", pageNum),
			zap.Int("added", added),
			zap.Int("category_total", len(j.session.Products)-initial),
		)

		if capReached(len(j.session.Products)-initial, maxProducts) {
			j.logger.Info("Reached category cap", zap.Int("cap", maxProducts))
			break
		}

		next := doc.Find(jumiaNextPageSelector).First()
		if next.Length() == 0 {
			j.logger.Info("No next-page link; reached last page", zap.Int("page", pageNum))
			break
		}
		href, ok := next.Attr("href")
		if !ok || href == "" {
			j.logger.Info("Next-page link has no target; reached last page", zap.Int("page", pageNum))
			break
		}
		resolved, ok := ResolveURL(href, j.session.BaseURL)
		if !ok {
			j.logger.Warn("Unresolvable next-page link; ending category", zap.String("href", href))
			break
		}
		currentURL = resolved
		pageNum++
	}

	j.logger.Info("Category finished",
		zap.String("category", cat.Name),
		zap.Int("pages", pageNum),
		zap.Int("scraped", len(j.session.Products)-initial),
	)

	// Final flush so everything collected so far is on disk.
	if len(j.session.Products) > 0 {
		j.flushProducts(ctx)
	}
	return nil
}

// Run executes the full workflow: catalog build, then a sequential crawl
// of every discovered category. A category failure is contained; a cancel
// persists the buffer before returning. The fetcher's connections are
// released on every exit path.
func (j *Jumia) Run(ctx context.Context, opts RunOptions) (RunSummary, error) {
	defer j.fetcher.Close()

	runID, err := uuid.NewV7()
	if err != nil {
		return RunSummary{}, fmt.Errorf("generate run id: %w", err)
	}
	j.session.RunID = runID.String()
	logger := j.logger.With(zap.String("run_id", j.session.RunID))
	logger.Info("Starting crawl run", zap.String("site", j.session.Site))

	if opts.ScrapeCategories {
		cats, err := j.BuildCatalog(ctx)
		if err != nil {
			return j.summary(), fmt.Errorf("build catalog: %w", err)
		}
		j.session.Categories = cats
		if len(cats) > 0 {
			if err := j.sink.SaveCategories(ctx, j.session.Site, cats); err != nil {
				logger.Error("Failed to persist categories", zap.Error(err))
			}
		}
	}

	if opts.ScrapeProducts {
		if len(j.session.Categories) == 0 {
			logger.Warn("No categories to scrape products from")
		}
		for i, cat := range j.session.Categories {
			logger.Info("Processing category",
				zap.Int("index", i+1),
				zap.Int("total", len(j.session.Categories)),
				zap.String("category", cat.Name),
			)
			if err := j.CrawlCategory(ctx, cat, opts.MaxProducts); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					logger.Warn("Crawl interrupted; persisting partial data")
					j.persistPartial(logger)
					return j.summary(), err
				}
				logger.Error("Category crawl failed",
					zap.String("category", cat.Name),
					zap.Error(err),
				)
				continue
			}
		}
	}

	logger.Info("Crawl run finished",
		zap.Int("categories", len(j.session.Categories)),
		zap.Int("products", len(j.session.Products)),
	)
	return j.summary(), nil
}

func (j *Jumia) summary() RunSummary {
	return RunSummary{
		RunID:      j.session.RunID,
		Categories: len(j.session.Categories),
		Products:   len(j.session.Products),
	}
}

// flushProducts rewrites the day's raw export with the full buffer.
func (j *Jumia) flushProducts(ctx context.Context) {
	if len(j.session.Products) == 0 {
		return
	}
	day := j.clock.Now()
	if err := j.sink.SaveProducts(ctx, j.session.Site, day, j.session.Products); err != nil {
		j.logger.Error("Flush failed", zap.Int("buffered", len(j.session.Products)), zap.Error(err))
		return
	}
	observeFlush(j.session.Site)
}

// persistPartial writes both exports after an interruption. Uses a fresh
// context: the run context is already canceled.
func (j *Jumia) persistPartial(logger *zap.Logger) {
	if len(j.session.Products) == 0 {
		return
	}
	ctx := context.Background()
	day := j.clock.Now()
	if err := j.sink.SaveProducts(ctx, j.session.Site, day, j.session.Products); err != nil {
		logger.Error("Partial CSV flush failed", zap.Error(err))
	}
	if err := j.sink.SavePartialJSON(ctx, j.session.Site, j.session.Products); err != nil {
		logger.Error("Partial JSON snapshot failed", zap.Error(err))
	}
}

func capReached(collected, maxProducts int) bool {
	return maxProducts > 0 && collected >= maxProducts
}
