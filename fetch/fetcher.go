// Package fetch provides the HTTP transport used to query package feeds, with
// bounded timeouts, DNS caching and per-host circuit breaking.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

// ErrUpstreamDown is returned when a feed host is known to be failing.
var ErrUpstreamDown = errors.New("upstream feed unavailable")

const (
	// DefaultTimeout bounds each of the connect, TLS handshake and
	// response-header phases of a request.
	DefaultTimeout = 30 * time.Second

	defaultMaxBodySize = 64 << 20
)

// Response is a fully read feed response. Non-success statuses are returned
// as responses, not errors; callers decide what a status means.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the response has a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// FetcherInterface defines the interface for feed fetchers.
type FetcherInterface interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Fetcher performs feed requests.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxRetries  int
	baseDelay   time.Duration
	timeout     time.Duration
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client. Timeouts configured with
// WithTimeout do not apply to it.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets how many times a 429 or 5xx response is retried.
// The default is 0.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff between retries.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithTimeout sets the connect, TLS handshake and response-header timeouts.
// The whole request is capped at three times this value.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

var (
	dnsResolver    = &dnscache.Resolver{}
	dnsRefreshOnce sync.Once
)

// sharedResolver returns the process-wide DNS cache, starting its refresh
// loop on first use.
func sharedResolver() *dnscache.Resolver {
	dnsRefreshOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				dnsResolver.Refresh(true)
			}
		}()
	})
	return dnsResolver
}

// NewFetcher creates a new Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:   "nugetcheck",
		baseDelay:   500 * time.Millisecond,
		timeout:     DefaultTimeout,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newHTTPClient(f.timeout)
	}
	return f
}

func newHTTPClient(timeout time.Duration) *http.Client {
	resolver := sharedResolver()
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: 3 * timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				var lastErr error
				for _, ip := range ips {
					conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						return conn, nil
					}
					lastErr = err
				}
				if lastErr == nil {
					lastErr = &net.OpError{Op: "dial", Net: network, Err: fmt.Errorf("no addresses for %s", host)}
				}
				return nil, lastErr
			},
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Get requests url with the given extra headers and reads the whole body.
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	var resp *Response

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with 10% jitter
			delay := f.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(float64(delay) * (rand.Float64() * 0.1))
			delay += jitter

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		var err error
		resp, err = f.doGet(ctx, url, headers)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return resp, nil
		}
	}

	return resp, nil
}

func (f *Fetcher) doGet(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")
	for name, value := range headers {
		if name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// IsConnectionFailure reports whether err is a timeout or a failure to reach
// the remote host, as opposed to a protocol or caller error. Cancellation by
// the caller is not a connection failure.
func IsConnectionFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrUpstreamDown) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
