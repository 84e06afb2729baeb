// Package fetch performs outbound HTTP requests with bounded retry and backoff.
package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts    = 4
	DefaultBackoff        = 1 * time.Second
	DefaultConnectTimeout = 2 * time.Second
	DefaultReadTimeout    = 10 * time.Second
	DefaultUserAgent      = "piradio"
)

// BackoffMode selects how the delay grows between attempts.
type BackoffMode string

const (
	BackoffFixed  BackoffMode = "fixed"
	BackoffLinear BackoffMode = "linear"
)

// DefaultRetryableStatus are the response codes worth another attempt.
var DefaultRetryableStatus = []int{
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Options configures a Client. Zero values are replaced by defaults.
type Options struct {
	MaxAttempts     int
	Backoff         time.Duration
	BackoffMode     BackoffMode
	RetryableStatus []int
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	UserAgent       string
}

func (o *Options) applyDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Backoff < 0 {
		o.Backoff = 0
	}
	if o.BackoffMode == "" {
		o.BackoffMode = BackoffLinear
	}
	if o.RetryableStatus == nil {
		o.RetryableStatus = DefaultRetryableStatus
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
}

// Client is a stateless retrying HTTP client. Each call starts a fresh
// attempt counter.
type Client struct {
	client *resty.Client
	opts   Options
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	opts.applyDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	c := &Client{opts: opts}
	c.client = resty.New().
		SetLogger(restyLogger{}).
		SetTransport(transport).
		SetTimeout(opts.ConnectTimeout+opts.ReadTimeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.MaxAttempts - 1).
		SetRetryWaitTime(opts.Backoff).
		SetRetryMaxWaitTime(opts.Backoff * time.Duration(opts.MaxAttempts)).
		SetRetryAfter(c.retryAfter).
		AddRetryCondition(c.shouldRetry)

	return c
}

// Options returns the effective options after defaults were applied.
func (c *Client) Options() Options {
	return c.opts
}

func (c *Client) retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}
	return c.delay(attempt), nil
}

func (c *Client) delay(attempt int) time.Duration {
	if c.opts.BackoffMode == BackoffLinear {
		return c.opts.Backoff * time.Duration(attempt)
	}
	return c.opts.Backoff
}

func (c *Client) shouldRetry(resp *resty.Response, err error) bool {
	if resp != nil && resp.Request != nil {
		if ctx := resp.Request.Context(); ctx != nil && ctx.Err() != nil {
			return false
		}
	}
	if err != nil {
		retry := isRetryableTransport(err)
		log.Debug().Err(err).Bool("retry", retry).Msg("Request failed")
		return retry
	}
	if resp != nil && c.isRetryableStatus(resp.StatusCode()) {
		log.Debug().
			Int("status", resp.StatusCode()).
			Int("attempt", resp.Request.Attempt).
			Str("url", resp.Request.URL).
			Msg("Retryable status")
		return true
	}
	return false
}

func (c *Client) isRetryableStatus(code int) bool {
	return slices.Contains(c.opts.RetryableStatus, code)
}

// Get issues a GET request to url and returns the successful response.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	resp, err := c.client.R().SetContext(ctx).Get(url)

	attempts := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempts = resp.Request.Attempt
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		kind := Fatal
		if isRetryableTransport(err) {
			kind = Transient
		}
		return nil, &Error{Kind: kind, URL: url, Attempts: attempts, Err: err}
	}

	if !resp.IsSuccess() {
		kind := Fatal
		if c.isRetryableStatus(resp.StatusCode()) {
			kind = Transient
		}
		return nil, &Error{
			Kind:       kind,
			URL:        url,
			Attempts:   attempts,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode(), resp.Status()),
		}
	}

	log.Debug().Str("url", url).Int("attempts", attempts).Int("bytes", len(resp.Body())).Msg("Fetched")
	return resp, nil
}

// GetJSON fetches url and decodes the JSON body into v. A body that does not
// decode is a fatal failure.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return &Error{Kind: Fatal, URL: url, Attempts: 1, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// Connection-level failures are retried; certificate problems and malformed
// requests are not.
func isRetryableTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var certInvalid x509.CertificateInvalidError
	var tlsVerify *tls.CertificateVerificationError
	var recordHeader tls.RecordHeaderError
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalid) || errors.As(err, &tlsVerify) || errors.As(err, &recordHeader) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
