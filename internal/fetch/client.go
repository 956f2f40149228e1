package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/osintlab/ecoprofiler/internal/cache"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/util"
	"github.com/osintlab/ecoprofiler/internal/worker"
)

// Client is the shared outbound HTTP client used by all source adapters.
// It applies per-domain rate limiting and caches successful GET responses.
type Client struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	userAgent  string
	maxBytes   int64
	verbose    bool
}

// NewClient builds a client from configuration. responseCache may be nil
// to disable caching.
func NewClient(cfg *model.Config, responseCache cache.Cache) *Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	}
	if cfg.HTTP.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:   worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		cache:     responseCache,
		cacheTTL:  cfg.Cache.DiskTTL,
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		verbose:   cfg.Output.Verbose,
	}
}

// Get fetches a URL with rate limiting and caching.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	cacheKey := cache.Key("GET " + rawURL)
	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			c.logf("cache hit: %s", rawURL)
			return data, nil
		}
	}

	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := c.do(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(cacheKey, body, c.cacheTTL)
	}
	return body, nil
}

// GetJSON fetches a URL and decodes the response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, v interface{}) error {
	body, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse response from %s: %w", rawURL, err)
	}
	return nil
}

// Post sends a request body and returns the response. POST responses are
// cached keyed on URL plus body since the APIs used here are read-only
// query endpoints.
func (c *Client) Post(ctx context.Context, rawURL, contentType string, payload []byte, headers map[string]string) ([]byte, error) {
	cacheKey := cache.Key("POST " + rawURL + " " + string(payload))
	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			c.logf("cache hit: %s", rawURL)
			return data, nil
		}
	}

	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = contentType

	body, err := c.do(ctx, http.MethodPost, rawURL, payload, headers)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(cacheKey, body, c.cacheTTL)
	}
	return body, nil
}

// PostNoCache sends a request without touching the cache. Used for
// authenticated endpoints where responses must stay fresh.
func (c *Client) PostNoCache(ctx context.Context, rawURL, contentType string, payload []byte, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = contentType
	return c.do(ctx, http.MethodPost, rawURL, payload, headers)
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logf("%s %s", method, rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status from %s: %d %s", rawURL, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// UserAgent returns the configured user agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// SetDomainRate overrides the rate limit for a specific API host.
func (c *Client) SetDomainRate(domain string, requestsPerSecond float64, burst int) {
	c.limiter.SetDomainRate(domain, requestsPerSecond, burst)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[fetch] "+format+"\n", args...)
	}
}
