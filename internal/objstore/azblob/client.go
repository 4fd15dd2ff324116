// Package azblob implements objstore.Store against an Azure Blob Storage
// compatible REST API. Authorization uses a pre-issued SAS token appended
// to every request URL.
package azblob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/objstore"
)

// Compile-time check: Client implements objstore.Store.
var _ objstore.Store = (*Client)(nil)

const (
	defaultAPIVersion = "2023-11-03"
	defaultTimeout    = 30 * time.Second

	// maxRetries counts extra attempts after the first for throttled or
	// unavailable responses.
	maxRetries     = 2
	retryBaseDelay = 250 * time.Millisecond

	// Same-account copies normally complete synchronously; a pending copy
	// is polled briefly before giving up.
	copyPollInterval = 200 * time.Millisecond
	copyPollMax      = 10

	errBodyLimit = 2048
)

// Config holds connection parameters for the blob service.
type Config struct {
	Endpoint   string // https://<account>.blob.core.windows.net
	SASToken   string // query string without the leading '?'
	APIVersion string // default 2023-11-03
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client is an HTTP client bound to one storage account endpoint.
// Containers are chosen per call.
type Client struct {
	http       *http.Client
	endpoint   string
	sasToken   string
	apiVersion string
	logger     *zap.Logger
}

// NewClient creates a blob service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
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
		sasToken:   strings.TrimPrefix(cfg.SASToken, "?"),
		apiVersion: cfg.APIVersion,
		logger:     cfg.Logger,
	}, nil
}

// Ping checks account availability by listing one container.
func (c *Client) Ping(ctx context.Context) error {
	u := c.accountURL(url.Values{"comp": {"list"}, "maxresults": {"1"}})
	_, _, err := c.do(ctx, objstore.OpPing, http.MethodGet, u, nil, nil)
	return err
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) accountURL(query url.Values) string {
	return c.endpoint + "/?" + c.query(query)
}

// blobURL addresses a container (key empty) or a blob within it.
func (c *Client) blobURL(container, key string, query url.Values) string {
	var b strings.Builder
	b.WriteString(c.endpoint)
	b.WriteByte('/')
	b.WriteString(url.PathEscape(container))
	if key != "" {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(key))
	}
	if q := c.query(query); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String()
}

func (c *Client) query(query url.Values) string {
	q := query.Encode()
	if c.sasToken == "" {
		return q
	}
	if q == "" {
		return c.sasToken
	}
	return q + "&" + c.sasToken
}

// do runs one REST call with bounded retries on throttled and unavailable
// responses. It returns the response headers and body of a 2xx response.
// Every error is wrapped with the operation name.
func (c *Client) do(ctx context.Context, op, method, rawURL string, payload []byte, headers map[string]string) (http.Header, []byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff(attempt, lastErr)); err != nil {
				return nil, nil, &objstore.Error{Op: op, Err: err}
			}
			c.logger.Debug("retrying blob request",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
		if err != nil {
			return nil, nil, &objstore.Error{Op: op, Err: err}
		}
		req.Header.Set("x-ms-version", c.apiVersion)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if payload != nil {
			req.ContentLength = int64(len(payload))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, &objstore.Error{Op: op, Err: ctx.Err()}
			}
			lastErr = err
			continue
		}

		hdr, body, done, err := finish(resp)
		if done {
			if err != nil {
				return nil, nil, &objstore.Error{Op: op, Err: err}
			}
			return hdr, body, nil
		}
		lastErr = err
	}

	return nil, nil, &objstore.Error{Op: op, Err: lastErr}
}

// finish consumes one response. done=false means the attempt may be retried.
func finish(resp *http.Response) (http.Header, []byte, bool, error) {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, nil, true, fmt.Errorf("read response: %w", err)
		}
		return resp.Header, body, true, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	code := resp.Header.Get("x-ms-error-code")
	if code == "" {
		code = strings.TrimSpace(string(snippet))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil, true, fmt.Errorf("status %d (%s): %w", resp.StatusCode, code, objstore.ErrUnauthorized)
	case http.StatusNotFound:
		return nil, nil, true, fmt.Errorf("status %d (%s): %w", resp.StatusCode, code, objstore.ErrNotFound)
	case http.StatusConflict:
		return nil, nil, true, fmt.Errorf("status %d (%s): %w", resp.StatusCode, code, objstore.ErrAlreadyExists)
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return nil, nil, false, &retryableError{
			err:        fmt.Errorf("status %d (%s): service unavailable", resp.StatusCode, code),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return nil, nil, true, fmt.Errorf("status %d: %s", resp.StatusCode, code)
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
