package scraper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scraperPagesTotal     *prometheus.CounterVec
	scraperRetriesTotal   *prometheus.CounterVec
	scraperProductsTotal  *prometheus.CounterVec
	scraperFlushesTotal   *prometheus.CounterVec
	scraperCategoriesSeen *prometheus.GaugeVec

	metricsOnce sync.Once
)

// InitMetrics registers the Prometheus collectors.
// It is safe to call this function multiple times.
func InitMetrics() {
	metricsOnce.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of page fetches, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scraperRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_retries_total",
				Help: "Total number of fetch retries after a transient failure, labeled by site.",
			},
			[]string{"site"},
		)

		scraperProductsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_products_total",
				Help: "Total number of product records extracted, labeled by site.",
			},
			[]string{"site"},
		)

		scraperFlushesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_flushes_total",
				Help: "Total number of buffer flushes to the raw export, labeled by site.",
			},
			[]string{"site"},
		)

		scraperCategoriesSeen = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scraper_categories_discovered",
				Help: "Number of categories discovered by the last catalog build, labeled by site.",
			},
			[]string{"site"},
		)
	})
}

func observePage(site, outcome string) {
	if scraperPagesTotal != nil {
		scraperPagesTotal.WithLabelValues(site, outcome).Inc()
	}
}

func observeRetry(site string) {
	if scraperRetriesTotal != nil {
		scraperRetriesTotal.WithLabelValues(site).Inc()
	}
}

func observeProducts(site string, n int) {
	if scraperProductsTotal != nil {
		scraperProductsTotal.WithLabelValues(site).Add(float64(n))
	}
}

func observeFlush(site string) {
	if scraperFlushesTotal != nil {
		scraperFlushesTotal.WithLabelValues(site).Inc()
	}
}

func observeCategories(site string, n int) {
	if scraperCategoriesSeen != nil {
		scraperCategoriesSeen.WithLabelValues(site).Set(float64(n))
	}
}
