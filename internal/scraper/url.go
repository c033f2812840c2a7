package scraper

import (
	"net/url"
	"strings"
)

// ResolveURL builds an absolute, dereferenceable URL from an href found in
// markup. Absolute inputs pass through unchanged; relative inputs are
// resolved against base with standard relative-reference semantics
// (including "./", "../" and query strings). Fragments are not stripped.
// Malformed or empty input returns ok=false, never an error or panic.
func ResolveURL(raw, base string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, true
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}

// sameOrigin reports whether two absolute URLs share scheme and host.
// Used to reject off-site category links.
func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}
