package core

import (
	"github.com/git-pkgs/nugetcheck/client"
	"github.com/git-pkgs/nugetcheck/fetch"
)

// Type aliases shared with feed implementations.
type (
	Client    = fetch.FetcherInterface
	NuGetURLs = client.NuGetURLs
)

// Function aliases shared with feed implementations.
var (
	NewFetcher          = fetch.NewFetcher
	WithTimeout         = fetch.WithTimeout
	IsConnectionFailure = fetch.IsConnectionFailure
)

// DefaultClient returns a fetcher with 30s timeouts, no retries and a
// per-host circuit breaker.
func DefaultClient() Client {
	return fetch.NewCircuitBreakerFetcher(fetch.NewFetcher())
}
