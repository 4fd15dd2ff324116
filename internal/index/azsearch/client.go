// Package azsearch implements index.Store against an Azure AI Search
// compatible REST API.
package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/index"
)

// Compile-time check: Client implements index.Store.
var _ index.Store = (*Client)(nil)

const (
	defaultAPIVersion = "2023-11-01"
	defaultTimeout    = 10 * time.Second

	// maxRetries counts extra attempts after the first for throttled or
	// unavailable responses.
	maxRetries     = 2
	retryBaseDelay = 250 * time.Millisecond

	errBodyLimit = 2048
)

// Config holds connection parameters for the search service.
type Config struct {
	Endpoint   string // https://<service>.search.windows.net
	APIKey     string
	APIVersion string        // default 2023-11-01
	Timeout    time.Duration // per-attempt HTTP timeout
	Logger     *zap.Logger
}

// Client is an HTTP client bound to one search service endpoint. Index
// names are chosen per call, so one client serves every index.
type Client struct {
	http       *http.Client
	endpoint   string
	apiKey     string
	apiVersion string
	logger     *zap.Logger
}

// NewClient creates a search service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		logger:     cfg.Logger,
	}, nil
}

// Ping checks service availability via the service statistics endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, index.OpStats, http.MethodGet, c.endpoint+"/servicestats", nil, nil)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) docsURL(indexName, verb string) string {
	return c.endpoint + "/indexes/" + url.PathEscape(indexName) + "/docs/" + verb
}

// do runs one REST call with bounded retries on throttled and unavailable
// responses. body is marshaled to JSON when non-nil; out is decoded from a
// 2xx response when non-nil. Every error is wrapped with the operation name.
func (c *Client) do(ctx context.Context, op, method, rawURL string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &index.Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
	}

	fullURL := rawURL + "?api-version=" + c.apiVersion

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff(attempt, lastErr)); err != nil {
				return &index.Error{Op: op, Err: err}
			}
			c.logger.Debug("retrying index request",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return &index.Error{Op: op, Err: err}
		}
		req.Header.Set("api-key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return &index.Error{Op: op, Err: ctx.Err()}
			}
			lastErr = err
			continue
		}

		done, err := c.finish(resp, out)
		if done {
			if err != nil {
				return &index.Error{Op: op, Err: err}
			}
			return nil
		}
		lastErr = err
	}

	return &index.Error{Op: op, Err: lastErr}
}

// finish consumes one response. done=false means the attempt may be retried.
func (c *Client) finish(resp *http.Response, out any) (done bool, err error) {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return true, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return true, fmt.Errorf("decode response: %w", err)
		}
		return true, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true, fmt.Errorf("status %d: %w", resp.StatusCode, index.ErrUnauthorized)
	case http.StatusNotFound:
		return true, fmt.Errorf("status %d: %w", resp.StatusCode, index.ErrIndexNotFound)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return false, &retryableError{
			err:        fmt.Errorf("status %d: %w", resp.StatusCode, index.ErrThrottled),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return true, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
}

// retryableError carries the server-suggested delay to the backoff logic.
type retryableError struct {
	err        error
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func backoff(attempt int, lastErr error) time.Duration {
	if re, ok := lastErr.(*retryableError); ok && re.retryAfter > 0 {
		return re.retryAfter
	}
	return retryBaseDelay << (attempt - 1)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
