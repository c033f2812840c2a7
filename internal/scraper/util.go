package scraper

import "strings"

// spaceNormalize trims and collapses internal whitespace, matching how
// browsers render anchor text.
func spaceNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
