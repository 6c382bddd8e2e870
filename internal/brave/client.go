// Package brave implements a client for the Brave Search web API.
package brave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the Brave web search API URL.
const DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

const (
	// DefaultCount is the number of results requested per page.
	DefaultCount = 20

	// maxCount is the provider's per-page ceiling.
	maxCount = 20

	requestTimeout = 15 * time.Second

	// maxAttempts bounds retries for transport errors and rate limits.
	maxAttempts = 3

	backoffStart = 700 * time.Millisecond
	backoffCap   = 4 * time.Second

	// excerptLimit caps how much of an error body is kept for messages.
	excerptLimit = 400
)

// ErrMissingAPIKey is returned before any network activity when no
// credential is configured.
var ErrMissingAPIKey = errors.New("missing API key: set BRAVE_API_KEY or search.api_key in the config")

// StatusError is a non-retryable HTTP error from the provider.
type StatusError struct {
	StatusCode int
	Excerpt    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Excerpt)
}

// RateLimitError signals an HTTP 429. RetryAfter is zero when the provider
// did not send a usable Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limited (HTTP 429)"
}

// Result is one web search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Age     string
}

// ResultPage is one page of search results. Altered carries the provider's
// spellcheck rewrite of the query, empty if the query ran as typed.
type ResultPage struct {
	Results []Result
	Altered string
}

// Options configures a Client. Zero values fall back to sensible defaults
// in NewClient; APIKey has no default.
type Options struct {
	APIKey       string
	Endpoint     string
	Count        int
	Country      string
	SearchLang   string
	SafeSearch   string
	Freshness    string
	ResultFilter string
	UserAgent    string
}

// Client calls the Brave Search API with bounded retries.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger

	// sleep is swapped out in tests to observe retry waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a search client. A nil logger discards log output.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Count == 0 {
		opts.Count = DefaultCount
	}
	if opts.Country == "" {
		opts.Country = "US"
	}
	if opts.SearchLang == "" {
		opts.SearchLang = "en"
	}
	if opts.SafeSearch == "" {
		opts.SafeSearch = "moderate"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Search fetches one page of results. page is zero-based and maps to the
// provider's offset parameter. Transport errors and 429 responses are
// retried up to the attempt budget with exponential backoff; a 429 with a
// parseable Retry-After header waits that long instead. Any other error
// status fails immediately.
func (c *Client) Search(ctx context.Context, query string, page int) (*ResultPage, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	reqURL := c.buildURL(query, page)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := c.doRequest(ctx, reqURL)
		if err == nil {
			return result, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		wait := backoffDelay(attempt)
		var rateErr *RateLimitError
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			wait = rateErr.RetryAfter
		}
		c.logger.Warn("search attempt failed, retrying",
			"attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("search failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) buildURL(query string, page int) string {
	count := c.opts.Count
	if count < 1 {
		count = 1
	}
	if count > maxCount {
		count = maxCount
	}
	offset := page
	if offset < 0 {
		offset = 0
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("country", c.opts.Country)
	params.Set("search_lang", c.opts.SearchLang)
	params.Set("safesearch", c.opts.SafeSearch)
	if c.opts.Freshness != "" {
		params.Set("freshness", c.opts.Freshness)
	}
	if c.opts.ResultFilter != "" {
		params.Set("result_filter", c.opts.ResultFilter)
	}
	return c.opts.Endpoint + "?" + params.Encode()
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*ResultPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.opts.APIKey)
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, excerptLimit))
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Excerpt:    readExcerpt(resp.Body),
		}
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return mapResponse(&api), nil
}

type apiResponse struct {
	Query struct {
		Altered string `json:"altered"`
	} `json:"query"`
	Web struct {
		Results []apiResult `json:"results"`
	} `json:"web"`
}

type apiResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
	Age         string `json:"age"`
}

func mapResponse(api *apiResponse) *ResultPage {
	page := &ResultPage{
		Results: make([]Result, 0, len(api.Web.Results)),
		Altered: api.Query.Altered,
	}
	for _, item := range api.Web.Results {
		snippet := item.Description
		if snippet == "" {
			snippet = item.Snippet
		}
		page.Results = append(page.Results, Result{
			Title:   strings.TrimSpace(item.Title),
			URL:     strings.TrimSpace(item.URL),
			Snippet: strings.TrimSpace(snippet),
			Age:     item.Age,
		})
	}
	return page
}

// readExcerpt reads at most excerptLimit bytes of an error body.
func readExcerpt(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, excerptLimit))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
// Returns zero for anything unparseable.
func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoffDelay returns the exponential delay after the given attempt,
// starting at backoffStart and capped at backoffCap.
func backoffDelay(attempt int) time.Duration {
	d := backoffStart
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= backoffCap {
			return backoffCap
		}
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
