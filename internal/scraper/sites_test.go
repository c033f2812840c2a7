package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryUnknownSite(t *testing.T) {
	t.Parallel()

	registry := DefaultRegistry()
	_, err := registry.New("amazon", Deps{Sink: &fakeSink{}, Clock: fixedClock{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSite)
	assert.Contains(t, err.Error(), "amazon")
}

func TestRegistryKnownSites(t *testing.T) {
	t.Parallel()

	registry := DefaultRegistry()
	sites := registry.Sites()
	assert.Contains(t, sites, "jumia")
	assert.Contains(t, sites, "marjane")
	assert.Contains(t, sites, "electroplanet")
	assert.Len(t, sites, 6)
}

func TestRegistryBuildsJumia(t *testing.T) {
	t.Parallel()

	registry := DefaultRegistry()
	s, err := registry.New("jumia", Deps{
		Config:  testJumiaConfig(100),
		Fetcher: &stubFetcher{pages: map[string]string{}},
		Sink:    &fakeSink{},
		Clock:   fixedClock{},
	})
	require.NoError(t, err)
	require.IsType(t, &Jumia{}, s)
}

func TestUnsupportedSiteFailsEveryOperation(t *testing.T) {
	t.Parallel()

	registry := DefaultRegistry()
	s, err := registry.New("marjane", Deps{})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = s.BuildCatalog(ctx)
	assert.ErrorIs(t, err, ErrSiteNotSupported)

	err = s.CrawlCategory(ctx, Category{Name: "X", URL: "https://www.marjane.ma/x"}, 0)
	assert.ErrorIs(t, err, ErrSiteNotSupported)

	_, err = s.Run(ctx, RunOptions{ScrapeCategories: true, ScrapeProducts: true})
	assert.ErrorIs(t, err, ErrSiteNotSupported)
	assert.Contains(t, err.Error(), "marjane")
}
