package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pquerna/cachecontrol"
)

// Defaults for NewHTTPFetcher.
const (
	DefaultRetryMax  = 3
	DefaultTimeout   = 30 * time.Second
	DefaultCacheSize = 128
	DefaultUserAgent = "rdfup"
)

// HTTPFetcher fetches http and https IRIs. Transient failures are retried;
// responses whose cache headers allow it are kept in an LRU cache.
type HTTPFetcher struct {
	client    *retryablehttp.Client
	cache     *lru.Cache[string, *Document]
	accept    string
	userAgent string
	logger    *slog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	retryMax  int
	waitMin   time.Duration
	waitMax   time.Duration
	timeout   time.Duration
	cacheSize int
	accept    string
	userAgent string
	logger    *slog.Logger
	transport http.RoundTripper
}

// WithRetryMax sets the number of retries after the first attempt.
func WithRetryMax(n int) HTTPOption {
	return func(c *httpConfig) { c.retryMax = n }
}

// WithRetryWait bounds the backoff between attempts.
func WithRetryWait(minWait, maxWait time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.waitMin = minWait
		c.waitMax = maxWait
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) { c.timeout = d }
}

// WithCacheSize sets the number of cached responses.
func WithCacheSize(n int) HTTPOption {
	return func(c *httpConfig) { c.cacheSize = n }
}

// WithAccept sets the Accept header. Loader fills it from its codec
// registry when left empty.
func WithAccept(accept string) HTTPOption {
	return func(c *httpConfig) { c.accept = accept }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(c *httpConfig) { c.userAgent = ua }
}

// WithHTTPLogger sets the logger used for retry diagnostics.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(c *httpConfig) { c.logger = l }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(c *httpConfig) { c.transport = rt }
}

// NewHTTPFetcher builds an HTTPFetcher.
func NewHTTPFetcher(opts ...HTTPOption) (*HTTPFetcher, error) {
	cfg := httpConfig{
		retryMax:  DefaultRetryMax,
		waitMin:   100 * time.Millisecond,
		waitMax:   2 * time.Second,
		timeout:   DefaultTimeout,
		cacheSize: DefaultCacheSize,
		accept:    NewRegistry(nil).Accept(),
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	cache, err := lru.New[string, *Document](max(cfg.cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.retryMax
	client.RetryWaitMin = cfg.waitMin
	client.RetryWaitMax = cfg.waitMax
	client.HTTPClient.Timeout = cfg.timeout
	if cfg.transport != nil {
		client.HTTPClient.Transport = cfg.transport
	}
	client.Logger = cfg.logger

	return &HTTPFetcher{
		client:    client,
		cache:     cache,
		accept:    cfg.accept,
		userAgent: cfg.userAgent,
		logger:    cfg.logger,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	if doc, ok := f.cache.Get(uri); ok {
		f.logger.Debug("fetch cache hit", "iri", uri)
		return doc, nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, unavailable(uri, err)
	}
	req.Header.Set("Accept", f.accept)
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, unavailable(uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(uri, fmt.Errorf("unexpected status %s", resp.Status))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(uri, fmt.Errorf("read body: %w", err))
	}

	doc := &Document{IRI: uri, Body: body}
	if resp.Request != nil && resp.Request.URL != nil {
		// Redirects move the base.
		doc.IRI = resp.Request.URL.String()
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			doc.MediaType = mt
		}
	}

	reasons, _, err := cachecontrol.CachableResponse(req.Request, resp, cachecontrol.Options{})
	if err == nil && len(reasons) == 0 {
		f.cache.Add(uri, doc)
	} else {
		f.logger.Debug("response not cacheable", "iri", uri, "reasons", reasons)
	}
	return doc, nil
}
