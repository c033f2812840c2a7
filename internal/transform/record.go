package transform

import (
	"fmt"
	"strconv"
	"time"
)

// CleanedProduct mirrors the raw record shape with price, discount, rating
// and review count as numbers (nil when the raw text was absent or
// unparseable) and scraped_at as a real timestamp.
type CleanedProduct struct {
	Name            *string
	CurrentPrice    *float64
	OldPrice        *float64
	Discount        *float64
	Rating          *float64
	ReviewCount     *float64
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

// cleanedColumns is the processed-file column set; same alphabetical order
// as the raw export so the two files line up column for column.
var cleanedColumns = []string{
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

// CleanedColumns returns the processed CSV column set in export order.
func CleanedColumns() []string {
	return append([]string(nil), cleanedColumns...)
}

// CleanRow normalizes one raw CSV row (column name -> cell) into a
// CleanedProduct. Numeric garbage degrades to nil; a malformed scraped_at
// is returned as an error per the upstream contract.
func CleanRow(row map[string]string) (CleanedProduct, error) {
	scrapedAt, err := ParseTimestamp(row["scraped_at"])
	if err != nil {
		return CleanedProduct{}, fmt.Errorf("scraped_at: %w", err)
	}

	official := row["is_official_store"]
	return CleanedProduct{
		Name:            optional(row["name"]),
		CurrentPrice:    CleanPrice(optional(row["current_price"])),
		OldPrice:        CleanPrice(optional(row["old_price"])),
		Discount:        CleanDiscount(optional(row["discount"])),
		Rating:          CleanNumeric(optional(row["rating"])),
		ReviewCount:     CleanNumeric(optional(row["review_count"])),
		URL:             optional(row["url"]),
		ImageURL:        optional(row["image_url"]),
		Brand:           optional(row["brand"]),
		SKU:             optional(row["sku"]),
		Category:        optional(row["category"]),
		Category2:       optional(row["category_2"]),
		Category3:       optional(row["category_3"]),
		IsOfficialStore: CleanBool(&official),
		ScrapedAt:       scrapedAt,
		Source:          row["source"],
	}, nil
}

// Row renders the record as CSV cells matching CleanedColumns.
func (p CleanedProduct) Row() []string {
	return []string{
		strOrEmpty(p.Brand),
		strOrEmpty(p.Category),
		strOrEmpty(p.Category2),
		strOrEmpty(p.Category3),
		floatOrEmpty(p.CurrentPrice),
		floatOrEmpty(p.Discount),
		strOrEmpty(p.ImageURL),
		strconv.FormatBool(p.IsOfficialStore),
		strOrEmpty(p.Name),
		floatOrEmpty(p.OldPrice),
		floatOrEmpty(p.Rating),
		floatOrEmpty(p.ReviewCount),
		p.ScrapedAt.Format(time.RFC3339),
		strOrEmpty(p.SKU),
		p.Source,
		strOrEmpty(p.URL),
	}
}

// FromCleanRow parses a processed CSV row back into a CleanedProduct.
// Used by the loader; the file is our own output, so a bad cell here is
// an error, not something to degrade silently.
func FromCleanRow(row map[string]string) (CleanedProduct, error) {
	scrapedAt, err := ParseTimestamp(row["scraped_at"])
	if err != nil {
		return CleanedProduct{}, fmt.Errorf("scraped_at: %w", err)
	}
	p := CleanedProduct{
		Name:            optional(row["name"]),
		URL:             optional(row["url"]),
		ImageURL:        optional(row["image_url"]),
		Brand:           optional(row["brand"]),
		SKU:             optional(row["sku"]),
		Category:        optional(row["category"]),
		Category2:       optional(row["category_2"]),
		Category3:       optional(row["category_3"]),
		IsOfficialStore: row["is_official_store"] == "true",
		ScrapedAt:       scrapedAt,
		Source:          row["source"],
	}
	for col, dst := range map[string]**float64{
		"current_price": &p.CurrentPrice,
		"old_price":     &p.OldPrice,
		"discount":      &p.Discount,
		"rating":        &p.Rating,
		"review_count":  &p.ReviewCount,
	} {
		cell := row[col]
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return CleanedProduct{}, fmt.Errorf("%s: parse %q: %w", col, cell, err)
		}
		*dst = &v
	}
	return p, nil
}

// optional maps an empty CSV cell to an absent value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
