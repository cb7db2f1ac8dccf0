// Package fetch performs the HTTP requests of remote option sources: URL
// resolution against the platform base URL, query construction, the
// cross-origin header policy and payload unwrapping.
package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "https://api.form.io"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBody bounds the size of a response body.
	DefaultMaxBody int64 = 8 << 20
)

var (
	// ErrUnexpectedStatus is wrapped by errors for non-2xx responses.
	ErrUnexpectedStatus = errors.New("fetch: unexpected status")
	// ErrEmptyURL is returned when a request has no target.
	ErrEmptyURL = errors.New("fetch: url is required")
	// ErrBodyTooLarge is wrapped by errors for responses over the body limit.
	ErrBodyTooLarge = errors.New("fetch: response body too large")
)

// Client issues option queries. It is safe for concurrent use; identical GETs
// in flight at the same time share one round trip.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	maxBody    int64
	group      singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the platform base URL used for relative and resource URLs.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithToken sets the bearer token sent to the platform.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxBody caps the accepted response size in bytes.
func WithMaxBody(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBody = limit
		}
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		maxBody:    DefaultMaxBody,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the platform base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET against target and returns the raw response body.
// The shared round trip is detached from any single caller's cancellation;
// a caller whose ctx ends stops waiting without failing the others.
func (c *Client) Get(ctx context.Context, target string, header http.Header) ([]byte, error) {
	if strings.TrimSpace(target) == "" {
		return nil, ErrEmptyURL
	}
	key := flightKey(target, header)
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.do(flightCtx, target, header)
	})

	select {
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "options request abandoned", goerr.V("url", target))
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("shared in-flight options request", "url", target)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) do(ctx context.Context, target string, header http.Header) ([]byte, error) {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build options request", goerr.V("url", target))
	}
	for name, values := range header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	c.logger.Debug("fetching options", "url", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch options", goerr.V("url", target))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(ErrUnexpectedStatus, resp.Status,
			goerr.V("url", target), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read options response", goerr.V("url", target))
	}
	if int64(len(body)) > c.maxBody {
		return nil, goerr.Wrap(ErrBodyTooLarge, "options response exceeds limit",
			goerr.V("url", target), goerr.V("limit", c.maxBody))
	}
	return body, nil
}

func flightKey(target string, header http.Header) string {
	var b strings.Builder
	b.WriteString(target)
	if auth := header.Get("Authorization"); auth != "" {
		b.WriteString("\x00")
		b.WriteString(auth)
	}
	return b.String()
}
