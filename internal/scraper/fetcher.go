package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyFetcher implements Fetcher using the Colly collector. It owns the
// retry loop: transient failures (timeouts, connection errors, any HTTP
// error other than 404) are retried with a linear backoff, a 404 is
// terminal, and a successful fetch is followed by a politeness delay.
// Each Fetch call is independent; no retry state survives it.
type CollyFetcher struct {
	site          string
	cfg           Config
	baseCollector *colly.Collector
	transport     *http.Transport
	policy        *LinearRetryPolicy
	sleeper       Sleeper
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher for one site.
func NewCollyFetcher(site string, cfg Config, logger *zap.Logger) *CollyFetcher {
	transport := newHTTPTransport()
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	base.WithTransport(transport)
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &CollyFetcher{
		site:          site,
		cfg:           cfg,
		baseCollector: base,
		transport:     transport,
		policy:        NewLinearRetryPolicy(cfg.MaxRetries),
		sleeper:       timerSleeper{},
		logger:        logger,
	}
}

// WithSleeper replaces the wait implementation. Intended for tests.
func (f *CollyFetcher) WithSleeper(s Sleeper) *CollyFetcher {
	f.sleeper = s
	return f
}

// Fetch performs up to MaxRetries GET attempts for rawURL.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	maxAttempts := f.policy.MaxAttempts()
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		f.logger.Info("Fetching page",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
		)

		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			observePage(f.site, "ok")
			// Polite delay so consecutive requests do not hammer the site.
			// Applied on success only; failures wait via backoff instead.
			f.sleeper.Sleep(ctx, f.cfg.RequestDelay)
			return page, nil
		}
		lastErr = err

		if !f.policy.ShouldRetry(err, attempt) {
			break
		}
		wait := f.policy.Backoff(attempt)
		f.logger.Warn("Fetch attempt failed; retrying",
			zap.String("url", rawURL),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		observeRetry(f.site)
		f.sleeper.Sleep(ctx, wait)
	}

	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		return Page{}, lastErr
	}
	if isNotFound(lastErr) {
		observePage(f.site, "not_found")
		f.logger.Error("Page not found", zap.String("url", rawURL))
		return Page{}, lastErr
	}
	observePage(f.site, "unavailable")
	f.logger.Error("Fetch failed after all attempts",
		zap.String("url", rawURL),
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)
	return Page{}, fmt.Errorf("%w: %s: %v", ErrPageUnavailable, rawURL, lastErr)
}

// Close releases the underlying connection pool.
func (f *CollyFetcher) Close() {
	if f.transport != nil {
		f.transport.CloseIdleConnections()
	}
	f.logger.Info("HTTP transport closed", zap.String("site", f.site))
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, rawURL string) (Page, error) {
	collector := f.baseCollector.Clone()

	var (
		page       Page
		fetchErr   error
		statusCode int
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", f.cfg.Accept)
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
	})
	collector.OnResponse(func(r *colly.Response) {
		page = Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return Page{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr == nil {
			fetchErr = err
		}
		if fetchErr != nil {
			if statusCode == http.StatusNotFound {
				return Page{}, fmt.Errorf("%s: %w", rawURL, ErrPageNotFound)
			}
			return Page{}, fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
		}
		return page, nil
	}
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrPageNotFound)
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
