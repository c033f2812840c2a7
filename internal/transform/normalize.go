// Package transform converts raw scraped rows into typed, analytics-ready
// records. The normalization functions are pure: no I/O, no external state,
// one cleaned record per raw record.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	priceKeepPattern = regexp.MustCompile(`[^\d.,]`)
	numberPattern    = regexp.MustCompile(`\d+(\.\d+)?`)
)

// CleanPrice parses a locale-formatted price string such as
// "1,229.00 DH" or "299,99 Dhs" into a float. Rules: strip everything but
// digits and separators; when both separators are present the one seen
// first is a thousands separator and the later one the decimal point;
// a lone comma is a decimal point. Anything unparseable yields nil.
func CleanPrice(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := priceKeepPattern.ReplaceAllString(*raw, "")
	if s == "" {
		return nil
	}

	comma := strings.Index(s, ",")
	dot := strings.Index(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma < dot {
			s = strings.ReplaceAll(s, ",", "") // 1,234.56 -> 1234.56
		} else {
			s = strings.ReplaceAll(s, ".", "") // 1.234,56 -> 1234,56
			s = strings.ReplaceAll(s, ",", ".")
		}
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".") // 299,99 -> 299.99
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CleanNumeric extracts the first integer-or-decimal number from a string,
// treating a comma as a decimal point. A fully numeric string passes
// through unchanged; no match yields nil.
func CleanNumeric(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return &v
	}
	s = strings.ReplaceAll(s, ",", ".")
	m := numberPattern.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CleanDiscount strips the percent sign and leading minus a discount badge
// carries ("-25%") before numeric extraction.
func CleanDiscount(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.ReplaceAll(*raw, "%", "")
	s = strings.ReplaceAll(s, "-", "")
	return CleanNumeric(&s)
}

// CleanBool casts a raw cell to a boolean. A recognizable boolean literal
// is parsed; any other non-empty value counts as true. There is no null
// boolean state.
func CleanBool(raw *string) bool {
	if raw == nil {
		return false
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return false
	}
	if v, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
		return v
	}
	return true
}

// timestampLayouts are the stamp formats the scraper has ever written.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a scraped_at stamp. A malformed stamp is an
// upstream contract violation, so unlike the numeric cleaners this fails
// loudly instead of degrading to nil.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", raw)
}
