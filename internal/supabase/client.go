// Package supabase is the shared handle on the hosted database/storage
// service. Both the REST record store and the storage blob store issue
// their requests through one Client so they share credentials and the
// request rate limit.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/projectkeeper/project-keeper/internal/logging"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit bounds outgoing requests to rps with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = rps
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("supabase url required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("supabase api key required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}

	c := &Client{
		baseURL:    u,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL joins path and query onto the service base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends an authenticated request. Responses with status >= 400 are
// turned into *APIError and the body is closed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*http.Response, error) {
	logger := logging.New(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("supabase "+method, err)
		return nil, fmt.Errorf("supabase request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		apiErr := decodeError(resp)
		logger.Warnf("supabase "+method, "path=%s status=%d latency=%s message=%q", path, resp.StatusCode, time.Since(start), apiErr.Message)
		return nil, apiErr
	}
	return resp, nil
}

// DoJSON encodes in (when non-nil) as the request body and decodes the
// response into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}, header http.Header) error {
	var body io.Reader
	if header == nil {
		header = http.Header{}
	}
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
		header.Set("Content-Type", "application/json")
	}
	header.Set("Accept", "application/json")

	resp, err := c.Do(ctx, method, path, query, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
