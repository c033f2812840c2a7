package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Site registry errors. ErrUnknownSite is a configuration error: the
// caller asked for a site this build has never heard of. A site that is
// known but has no extraction ruleset yet signals ErrSiteNotSupported
// from every operation instead.
var (
	ErrUnknownSite      = errors.New("unknown site")
	ErrSiteNotSupported = errors.New("site not supported yet")
)

// Deps bundles the collaborators a site scraper needs. Fetcher may be nil,
// in which case the factory builds one from Config.
type Deps struct {
	Config  Config
	Fetcher Fetcher
	Sink    Sink
	Clock   Clock
	Logger  *zap.Logger
}

// Factory builds a Scraper from shared dependencies.
type Factory func(Deps) (Scraper, error)

// Registry maps site identifiers to scraper factories. It is an explicit
// value handed to the caller at construction; there is no hidden global
// registration.
type Registry map[string]Factory

// DefaultRegistry lists every site the pipeline knows about. Sites whose
// extraction rules have not been written yet get the unsupported variant
// so that selecting them fails deterministically, after configuration
// validation but before any network activity.
func DefaultRegistry() Registry {
	return Registry{
		"jumia": func(d Deps) (Scraper, error) { return NewJumia(d) },

		"marjane":       unsupportedFactory("marjane"),
		"electroplanet": unsupportedFactory("electroplanet"),
		"bikhir":        unsupportedFactory("bikhir"),
		"decathlon":     unsupportedFactory("decathlon"),
		"hmizate":       unsupportedFactory("hmizate"),
	}
}

// Sites returns the registered site identifiers.
func (r Registry) Sites() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

// New builds the scraper for site, or fails with ErrUnknownSite.
func (r Registry) New(site string, d Deps) (Scraper, error) {
	factory, ok := r[site]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, site)
	}
	return factory(d)
}

func unsupportedFactory(name string) Factory {
	return func(Deps) (Scraper, error) {
		return &unsupportedSite{name: name}, nil
	}
}

// unsupportedSite satisfies Scraper for sites without extraction rules.
type unsupportedSite struct {
	name string
}

func (s *unsupportedSite) BuildCatalog(context.Context) ([]Category, error) {
	return nil, s.err()
}

func (s *unsupportedSite) CrawlCategory(context.Context, Category, int) error {
	return s.err()
}

func (s *unsupportedSite) Run(context.Context, RunOptions) (RunSummary, error) {
	return RunSummary{}, s.err()
}

func (s *unsupportedSite) err() error {
	return fmt.Errorf("site %q: %w", s.name, ErrSiteNotSupported)
}
