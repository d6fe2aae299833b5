package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// errServerStatus marks a 5xx response as a breaker failure without turning
// it into an error for the caller.
var errServerStatus = errors.New("server error status")

// CircuitBreakerFetcher wraps a Fetcher with per-host circuit breakers.
type CircuitBreakerFetcher struct {
	fetcher   FetcherInterface
	threshold int64
	breakers  map[string]*circuit.Breaker
	mu        sync.RWMutex
}

// NewCircuitBreakerFetcher creates a new circuit breaker wrapper for a fetcher.
// A host's breaker trips after 5 consecutive failures.
func NewCircuitBreakerFetcher(f FetcherInterface) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:   f,
		threshold: 5,
		breakers:  make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates a circuit breaker for the given host.
func (cbf *CircuitBreakerFetcher) getBreaker(host string) *circuit.Breaker {
	cbf.mu.RLock()
	breaker, exists := cbf.breakers[host]
	cbf.mu.RUnlock()

	if exists {
		return breaker
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := cbf.breakers[host]; exists {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(cbf.threshold),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	cbf.breakers[host] = breaker
	return breaker
}

// Get wraps the underlying fetcher's Get with circuit breaker logic. Transport
// errors and 5xx responses count as failures; 5xx responses are still returned.
func (cbf *CircuitBreakerFetcher) Get(ctx context.Context, getURL string, headers map[string]string) (*Response, error) {
	host := extractHost(getURL)
	breaker := cbf.getBreaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for feed host %s: %w", host, ErrUpstreamDown)
	}

	var resp *Response
	err := breaker.Call(func() error {
		var fetchErr error
		resp, fetchErr = cbf.fetcher.Get(ctx, getURL, headers)
		if fetchErr != nil {
			return fetchErr
		}
		if resp.StatusCode >= 500 {
			return errServerStatus
		}
		return nil
	}, 0)

	switch {
	case errors.Is(err, circuit.ErrBreakerOpen):
		return nil, fmt.Errorf("circuit breaker open for feed host %s: %w", host, ErrUpstreamDown)
	case err != nil && !errors.Is(err, errServerStatus):
		return nil, err
	}
	return resp, nil
}

// extractHost extracts the host used to group requests under one breaker.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		// Fallback to simple truncation
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// GetBreakerState returns the current state of circuit breakers (for health checks).
func (cbf *CircuitBreakerFetcher) GetBreakerState() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range cbf.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
