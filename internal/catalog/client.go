// Package catalog is a small Scryfall API client: exact-name lookups, name
// searches per language and the health endpoint.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"manamate/internal/config"
)

// Client issues rate-limited, timed-out requests to the catalog.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	exact      *cache.Cache
	logger     *log.Logger
}

// New creates a client from the catalog settings.
func New(cfg config.CatalogSettings, logger *log.Logger) *Client {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	var exact *cache.Cache
	if cfg.ExactCacheTTL > 0 {
		exact = cache.New(cfg.ExactCacheTTL, 2*cfg.ExactCacheTTL)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		exact:      exact,
		logger:     logger.With("component", "catalog"),
	}
}

// GetExact looks a card up by its exact English name.
func (c *Client) GetExact(ctx context.Context, name string) (*Card, error) {
	key := strings.ToLower(name)
	if c.exact != nil {
		if cached, ok := c.exact.Get(key); ok {
			return cached.(*Card), nil
		}
	}

	var card Card
	apiErr, err := c.get(ctx, "/cards/named", url.Values{"exact": {name}}, &card)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		if apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, apiErr
	}

	if c.exact != nil {
		c.exact.Set(key, &card, cache.DefaultExpiration)
	}
	return &card, nil
}

// Search runs a name search restricted to one language. A search with no
// matches returns an empty result, not an error.
func (c *Client) Search(ctx context.Context, term, lang string) (*SearchResult, error) {
	params := url.Values{
		"q":      {fmt.Sprintf("name:%s lang:%s", term, lang)},
		"unique": {"cards"},
	}

	var result SearchResult
	apiErr, err := c.get(ctx, "/cards/search", params, &result)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		if apiErr.Status == http.StatusNotFound {
			return &SearchResult{Object: "list"}, nil
		}
		return nil, apiErr
	}
	return &result, nil
}

// Health fetches the catalog's health document.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	apiErr, err := c.get(ctx, "/health", nil, &health)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, apiErr
	}
	return &health, nil
}

// get performs one GET. 2xx bodies are decoded into out; 4xx responses are
// returned as an APIError for the caller to inspect; 5xx, network errors and
// timeouts are returned as errors wrapping ErrUnavailable.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (*APIError, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("🌐 catalog request", "path", path, "status", resp.StatusCode, "took", time.Since(start).Round(time.Millisecond))

	switch {
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: GET %s: HTTP %d", ErrUnavailable, path, resp.StatusCode)

	case resp.StatusCode >= 400:
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil && !errors.Is(err, io.EOF) {
			c.logger.Debug("could not decode error body", "path", path, "err", err)
		}
		apiErr.Status = resp.StatusCode
		return apiErr, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return nil, nil
}

// WebSearchURL builds a link to the catalog's own search page showing every
// card whose name contains text in the given language.
func WebSearchURL(webBase, text, lang string) string {
	return fmt.Sprintf("%s/search?q=name:%s*+lang:%s&unique=cards",
		strings.TrimRight(webBase, "/"), url.QueryEscape(text), lang)
}
