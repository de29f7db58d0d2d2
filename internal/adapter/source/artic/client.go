package artic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/artpick/internal/domain"
)

const (
	// DefaultBaseURL is the public Art Institute of Chicago API
	DefaultBaseURL = "https://api.artic.edu/api/v1"

	// DefaultMaxRetries bounds retries of 5xx and 429 responses
	DefaultMaxRetries = 3

	defaultTimeout = 30 * time.Second
	baseRetryDelay = 500 * time.Millisecond
	maxErrorBody   = 512
)

// DefaultFields is the field projection requested for every page
var DefaultFields = []string{
	"id", "title", "place_of_origin", "artist_display", "inscriptions", "date_start", "date_end",
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d - %s", e.Code, e.Body)
}

// Temporary reports whether retrying the request may succeed
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || (e.Code >= 500 && e.Code < 600)
}

// Options tunes the client. Zero durations and empty fields fall back to
// defaults; MaxRetries is taken as given.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
	Fields     []string
}

// Client implements domain.PageSource for the artworks API
type Client struct {
	baseURL    string
	userAgent  string
	fields     []string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new artworks API client
func NewClient(baseURL string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = baseRetryDelay
	}
	if len(opts.Fields) == 0 {
		opts.Fields = DefaultFields
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  opts.UserAgent,
		fields:     opts.Fields,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
}

// GetPage returns one page of artworks
func (c *Client) GetPage(ctx context.Context, pageIndex, limit int) (*domain.Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pageIndex))
	query.Set("limit", strconv.Itoa(limit))
	if len(c.fields) > 0 {
		query.Set("fields", strings.Join(c.fields, ","))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/artworks", query)
	if err != nil {
		return nil, err
	}

	var resp ArtworksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	return MapPage(&resp, pageIndex, limit)
}

// doRequest performs an HTTP request against the API.
// Retries 5xx and 429 responses with exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = reqURL + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		c.logger.Debug("artic request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Debug("artic request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrSourceOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		statusErr := &StatusError{Code: resp.StatusCode, Body: truncateBody(body)}
		if statusErr.Temporary() {
			lastErr = statusErr
			c.logger.Warn("artic server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", c.maxRetries,
				"path", path,
			)
			continue
		}

		c.logger.Debug("artic request error", "status", resp.StatusCode, "body", statusErr.Body)
		return nil, statusErr
	}

	c.logger.Debug("artic request failed after retries",
		"error", lastErr,
		"url", reqURL,
	)
	return nil, lastErr
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
