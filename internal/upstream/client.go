// Package upstream is the outbound HTTP transport shared by the pipe and
// metadata collaborators.
package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every outbound call
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the browser-like agent the pipe endpoint insists on
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Client wraps resty.Client with fixed headers and a hard timeout. It never retries.
type Client struct {
	resty   *resty.Client
	service string
	timeout time.Duration
	debug   bool
	logger  *slog.Logger
}

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	// Service names the collaborator in errors and logs
	Service   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Debug     bool
	Logger    *slog.Logger
}

// DefaultClientConfig returns sensible defaults for HTTP client
func DefaultClientConfig(service string) ClientConfig {
	return ClientConfig{
		Service:   service,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Service == "" {
		config.Service = "upstream"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	restyClient := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeaders(config.Headers)

	client := &Client{
		resty:   restyClient,
		service: config.Service,
		timeout: config.Timeout,
		debug:   config.Debug,
		logger:  config.Logger,
	}

	if config.Debug {
		restyClient.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
			client.logRequest(r)
			return nil
		})
		restyClient.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
			client.logResponse(r)
			return nil
		})
	}

	return client
}

// Get performs a GET request with query parameters. Any status other than 200 is an *Error.
func (c *Client) Get(ctx context.Context, url string, params map[string]string) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.resty.R().
		SetContext(ctx).
		SetQueryParams(params)

	resp, err := req.Get(url)
	return c.check(resp, err)
}

// Post performs a POST request with a JSON body. Any status other than 200 is an *Error.
func (c *Client) Post(ctx context.Context, url string, body any) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(body)

	resp, err := req.Post(url)
	return c.check(resp, err)
}

func (c *Client) check(resp *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return nil, &Error{Service: c.service, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return resp, &Error{
			Service:    c.service,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}
	return resp, nil
}

// Service returns the collaborator name used in errors
func (c *Client) Service() string {
	return c.service
}

// GetTimeout returns the configured timeout
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// logRequest logs HTTP request details
func (c *Client) logRequest(r *resty.Request) {
	c.logger.Debug("upstream request",
		"service", c.service,
		"method", r.Method,
		"url", r.URL,
		"query", r.QueryParam.Encode(),
	)
}

// logResponse logs HTTP response details
func (c *Client) logResponse(r *resty.Response) {
	bodyStr := r.String()
	if len(bodyStr) > 1000 {
		bodyStr = bodyStr[:1000] + "... (truncated)"
	}

	c.logger.Debug("upstream response",
		"service", c.service,
		"status", r.StatusCode(),
		"url", r.Request.URL,
		"time", r.Time(),
		"size", humanize.Bytes(uint64(len(r.Body()))),
		"body", bodyStr,
	)
}
