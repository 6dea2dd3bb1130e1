// Package client provides the HTTP access layer shared by all test cases in
// a run. Requests to the implementation under test go through one Client so
// that every case observes the same timeout and retry policy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 2
)

// Config controls the shared request policy.
type Config struct {
	Timeout time.Duration // per-request timeout, DefaultTimeout when zero
	Retries uint64        // retry attempts on connection errors, not HTTP status codes
	Log     *zap.SugaredLogger
}

// Client issues HTTP requests against the implementation under test.
type Client struct {
	http    *http.Client
	retries uint64
	log     *zap.SugaredLogger
}

// Response is the body-consumed result of a request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ContentType returns the media type portion of the Content-Type header.
func (r *Response) ContentType() string {
	ctype := r.Header.Get("Content-Type")
	if idx := strings.Index(ctype, ";"); idx != -1 {
		ctype = ctype[:idx]
	}
	return strings.TrimSpace(ctype)
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A secure API must not redirect to an insecure scheme.
				if len(via) > 0 && via[0].URL.Scheme == "https" && req.URL.Scheme != "https" {
					return errors.New("redirect changed protocol from https")
				}
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		retries: cfg.Retries,
		log:     log,
	}
}

// Do issues a request with the shared policy. A non-nil body is encoded as
// JSON. Connection-level failures are retried with exponential backoff; HTTP
// error statuses are returned to the caller untouched, since test cases
// assert on them.
func (c *Client) Do(ctx context.Context, method, url string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	var resp *Response
	attempt := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Debugw("Request failed, may retry", "method", method, "url", url, "error", err)
			return err
		}
		defer res.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		resp = &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(100*time.Millisecond),
			backoff.WithMaxInterval(time.Second),
		), c.retries),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// GetJSON issues a GET request and decodes the body into v, requiring a 200.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.JSON(v)
}
