package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// reviewCountPattern pulls the digits out of the first parenthesized
// group of a review string, e.g. "(128)" from "4.4 étoiles (128)".
var reviewCountPattern = regexp.MustCompile(`\((\d+)\)`)

// cardSelectors is the fixed set of structural lookups applied to one
// listing fragment. Each lookup is independently optional.
type cardSelectors struct {
	Name          string
	CurrentPrice  string
	OldPrice      string
	Discount      string
	Rating        string
	Review        string
	DetailLink    string
	Image         string
	OfficialBadge string
	BrandAttr     string
	SKUAttr       string
	CategoryAttrs [3]string
}

// jumiaCardSelectors matches the product-card markup on jumia.ma
// listing pages.
var jumiaCardSelectors = cardSelectors{
	Name:          "h3.name",
	CurrentPrice:  "div.prc",
	OldPrice:      "div.old",
	Discount:      "div.bdg._dsct",
	Rating:        "div.stars._s",
	Review:        "div.rev",
	DetailLink:    "a.core",
	Image:         "img.img",
	OfficialBadge: "div.bdg._mall",
	BrandAttr:     "data-ga4-item_brand",
	SKUAttr:       "data-sku",
	CategoryAttrs: [3]string{
		"data-ga4-item_category",
		"data-ga4-item_category2",
		"data-ga4-item_category3",
	},
}

// Extractor derives one RawProduct from a listing-page fragment.
type Extractor struct {
	source    string
	baseURL   string
	selectors cardSelectors
	clock     Clock
	logger    *zap.Logger
}

// NewExtractor builds an extractor for one site's card markup.
func NewExtractor(source, baseURL string, selectors cardSelectors, clock Clock, logger *zap.Logger) *Extractor {
	return &Extractor{
		source:    source,
		baseURL:   baseURL,
		selectors: selectors,
		clock:     clock,
		logger:    logger,
	}
}

// Extract applies the structural lookups to one product card. Any missing
// sub-element degrades to a nil field; the record as a whole is nil only
// if extraction blows up unexpectedly, in which case the listing is
// skipped rather than aborting the page.
func (e *Extractor) Extract(card *goquery.Selection) (record *RawProduct) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Skipping listing: extraction panicked", zap.Any("reason", r))
			record = nil
		}
	}()

	p := RawProduct{
		Name:         e.text(card, e.selectors.Name),
		CurrentPrice: e.text(card, e.selectors.CurrentPrice),
		OldPrice:     e.text(card, e.selectors.OldPrice),
		Discount:     e.text(card, e.selectors.Discount),
		Rating:       e.rating(card),
		ReviewCount:  e.reviewCount(card),
		ImageURL:     e.imageURL(card),
		ScrapedAt:    e.clock.Now(),
		Source:       e.source,
	}

	link := card.Find(e.selectors.DetailLink).First()
	if link.Length() > 0 {
		if href, ok := link.Attr("href"); ok {
			if resolved, ok := ResolveURL(href, e.baseURL); ok {
				p.URL = &resolved
			}
		}
		p.Brand = attr(link, e.selectors.BrandAttr)
		p.SKU = attr(link, e.selectors.SKUAttr)
		p.Category = attr(link, e.selectors.CategoryAttrs[0])
		p.Category2 = attr(link, e.selectors.CategoryAttrs[1])
		p.Category3 = attr(link, e.selectors.CategoryAttrs[2])
	}

	// Present badge means official store; absence means false, never nil.
	p.IsOfficialStore = card.Find(e.selectors.OfficialBadge).Length() > 0

	return &p
}

// text returns the trimmed text of the first selector match, nil if absent.
func (e *Extractor) text(card *goquery.Selection, selector string) *string {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	t := strings.TrimSpace(sel.Text())
	return &t
}

// rating keeps the first whitespace-delimited token of the rating string,
// e.g. "4.4" from "4.4 out of 5".
func (e *Extractor) rating(card *goquery.Selection) *string {
	raw := e.text(card, e.selectors.Rating)
	if raw == nil {
		return nil
	}
	fields := strings.Fields(*raw)
	if len(fields) == 0 {
		return nil
	}
	return &fields[0]
}

// reviewCount extracts the digits inside the first parenthesized group.
// A review element without a parenthesized count yields nil, not zero.
func (e *Extractor) reviewCount(card *goquery.Selection) *string {
	raw := e.text(card, e.selectors.Review)
	if raw == nil {
		return nil
	}
	m := reviewCountPattern.FindStringSubmatch(*raw)
	if m == nil {
		return nil
	}
	return &m[1]
}

// imageURL prefers a direct src and falls back to the lazy-load data-src.
func (e *Extractor) imageURL(card *goquery.Selection) *string {
	img := card.Find(e.selectors.Image).First()
	if img.Length() == 0 {
		return nil
	}
	if src, ok := img.Attr("src"); ok && src != "" {
		return &src
	}
	if src, ok := img.Attr("data-src"); ok && src != "" {
		return &src
	}
	return nil
}

func attr(sel *goquery.Selection, name string) *string {
	if v, ok := sel.Attr(name); ok {
		return &v
	}
	return nil
}
