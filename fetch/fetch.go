// Package fetch downloads individual page images from a templated
// remote URL over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wudi/pagestream/config"
	"github.com/wudi/pagestream/observability"
)

// Default timeouts. BlockTimeout bounds a single stalled read of the
// response body; TotalTimeout bounds the whole transfer.
const (
	DefaultBlockTimeout = 10 * time.Second
	DefaultTotalTimeout = 60 * time.Second
)

// ProtocolError reports a URL whose scheme is not http or https. Local
// file and other schemes are rejected outright so a hostile
// configuration cannot reach the filesystem.
type ProtocolError struct {
	Scheme string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("fetch: disallowed URL scheme %q", e.Scheme)
}

// FetchError reports a failed transfer: a non-200 status, a timeout, or
// a transport failure.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches pages for one configured stream. No retries: a failed
// fetch is reported upward and the caller decides on fallback.
type Client struct {
	template     string
	username     string
	password     string
	httpClient   *http.Client
	blockTimeout time.Duration
	totalTimeout time.Duration
	logger       observability.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeouts overrides the block and total transfer timeouts.
// Non-positive values keep the defaults.
func WithTimeouts(block, total time.Duration) Option {
	return func(c *Client) {
		if block > 0 {
			c.blockTimeout = block
		}
		if total > 0 {
			c.totalTimeout = total
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a fetcher from the stream configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		template:     cfg.URLTemplate,
		username:     cfg.Username,
		password:     cfg.Password,
		httpClient:   http.DefaultClient,
		blockTimeout: DefaultBlockTimeout,
		totalTimeout: DefaultTotalTimeout,
		logger:       observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL expands the URL template for a 1-based page number and a
// target display width. The remote side counts pages from zero.
func (c *Client) PageURL(pageNumber, maxWidth int) string {
	s := strings.ReplaceAll(c.template, config.PagePlaceholder, strconv.Itoa(pageNumber-1))
	return strings.ReplaceAll(s, config.WidthPlaceholder, strconv.Itoa(maxWidth))
}

// Fetch downloads one page image and returns its raw bytes. Success is
// exactly HTTP 200; any other status, a stalled read, or an expired
// total deadline yields a *FetchError.
func (c *Client) Fetch(ctx context.Context, pageNumber, maxWidth int) ([]byte, error) {
	target := c.PageURL(pageNumber, maxWidth)

	u, err := url.Parse(target)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		c.logger.Error("disallowed scheme", observability.String("url", target), observability.String("scheme", u.Scheme))
		return nil, &ProtocolError{Scheme: u.Scheme}
	}

	ctx, cancel := context.WithTimeout(ctx, c.totalTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	// Transport compression would desynchronize byte-count sinks.
	req.Header.Set("Accept-Encoding", "identity")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("fetch failed", observability.String("url", target), observability.Error("err", err))
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("fetch rejected",
			observability.String("url", target),
			observability.Int("status", resp.StatusCode))
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := c.readAll(cancel, resp.Body)
	if err != nil {
		c.logger.Error("fetch body failed", observability.String("url", target), observability.Error("err", err))
		return nil, &FetchError{URL: target, Err: err}
	}

	c.logger.Debug("fetched page",
		observability.Int("page", pageNumber),
		observability.Int64("bytes", int64(len(data))),
		observability.Duration("elapsed", time.Since(start)))
	return data, nil
}

// readAll drains the body under the per-block timeout: the timer is
// re-armed after every successful read and cancels the request when a
// single read stalls for longer than blockTimeout.
func (c *Client) readAll(cancel context.CancelFunc, body io.Reader) ([]byte, error) {
	timer := time.AfterFunc(c.blockTimeout, cancel)
	defer timer.Stop()

	var out []byte
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			timer.Reset(c.blockTimeout)
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
