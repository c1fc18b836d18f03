// Package fetch retrieves page snapshots over plain HTTP. Server-rendered
// markup is the input to resolution; client-side rendering is out of scope.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/cache"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/ratelimit"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/reqctx"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/retry"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// Source produces page snapshots for the resolver.
type Source interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
}

const maxBodyBytes = 10 * 1024 * 1024 // pages past 10MB are malformed or hostile

// Fetcher implements Source with raw HTTP requests, per-domain rate
// limiting, retry with backoff, and snapshot caching.
type Fetcher struct {
	client    *http.Client
	limiter   ratelimit.RateLimiter
	cache     cache.Cache
	retryCfg  retry.Config
	userAgent string
}

// Options configures a Fetcher. Limiter and Cache may be nil to disable
// those layers.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Limiter   ratelimit.RateLimiter
	Cache     cache.Cache
	Retry     *retry.Config
}

// New creates a Fetcher with a keep-alive HTTP client.
func New(opts Options) *Fetcher {
	// Keep-Alive transport for connection reuse across a batch
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Omen/1.0 (+https://github.com/Simon-Bruno/omen-backend-sub000)"
	}
	retryCfg := retry.DefaultConfig()
	if opts.Retry != nil {
		retryCfg = *opts.Retry
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		retryCfg:  retryCfg,
		userAgent: userAgent,
	}
}

// Fetch retrieves the page at url, serving from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Page, error) {
	if f.cache != nil {
		if page, ok := f.cache.Get(url); ok {
			return page, nil
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	var page *models.Page
	err := retry.WithRetry(ctx, f.retryCfg, func() error {
		var fetchErr error
		page, fetchErr = f.fetchOnce(ctx, url)
		return fetchErr
	})
	if err != nil {
		return nil, reqctx.NewRequestError(ctx, err)
	}

	if f.cache != nil {
		if err := f.cache.Set(url, page); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to cache page")
		}
	}
	return page, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*models.Page, error) {
	start := time.Now()
	rc := reqctx.GetRequestContext(ctx)

	log.Debug().
		Str("url", url).
		Str("request_id", rc.RequestID).
		Msg("Starting fetch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, retry.NewHTTPError(resp.StatusCode, resp.Status, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	elapsed := time.Since(start)
	html := string(body)
	page := &models.Page{
		URL:          url,
		StatusCode:   resp.StatusCode,
		HTML:         html,
		Title:        extractTitle(html),
		FetchedAt:    time.Now(),
		ResponseTime: elapsed.Milliseconds(),
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", elapsed).
		Msg("Fetch complete")

	return page, nil
}

func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
