// Package nugetcheck decides which published version of a NuGet dependency an
// automated updater should propose.
//
// Versions are listed from v2 (XML) and v3 (JSON) feeds, filtered for
// unrelated prereleases, ignore rules, known vulnerabilities and versions at
// or below the installed one, and then reduced to the latest eligible
// version or the lowest secure fix.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/nugetcheck"
//	)
//
//	req := nugetcheck.Request{
//		Dependency: nugetcheck.Dependency{Name: "Newtonsoft.Json", Version: "12.0.1"},
//		Sources: []nugetcheck.FeedSource{
//			nugetcheck.V3Source(nugetcheck.DefaultRepositoryURL,
//				"https://api.nuget.org/v3-flatcontainer", "", "Newtonsoft.Json"),
//		},
//	}
//
//	r, err := nugetcheck.NewResolver(req)
//	if err != nil {
//		log.Fatal(err)
//	}
//	latest, err := r.LatestVersion(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if latest != nil {
//		fmt.Println(latest.Version)
//	}
//
// Both feed protocols are registered when this package is imported.
package nugetcheck

import (
	"github.com/git-pkgs/nugetcheck/client"
	"github.com/git-pkgs/nugetcheck/fetch"
	"github.com/git-pkgs/nugetcheck/internal/core"
	v2 "github.com/git-pkgs/nugetcheck/internal/v2"
	v3 "github.com/git-pkgs/nugetcheck/internal/v3"
)

// Re-export types from internal/core
type (
	// Protocol identifies a feed protocol generation.
	Protocol = core.Protocol

	// FeedSource describes one configured package feed.
	FeedSource = core.FeedSource

	// VersionRecord is one published version as listed by a feed.
	VersionRecord = core.VersionRecord

	// Dependency is the package being checked for updates.
	Dependency = core.Dependency

	// Request is the input to one resolution.
	Request = core.Request

	// Resolver answers update questions for a single Request.
	Resolver = core.Resolver

	// Option configures a Resolver.
	Option = core.Option

	// Feed lists the published versions of a package from one source.
	Feed = core.Feed
)

// Re-export types from fetch and client
type (
	// Client performs feed requests.
	Client = fetch.FetcherInterface

	// ClientOption configures a Client.
	ClientOption = fetch.Option

	// URLBuilder constructs URLs for a package version.
	URLBuilder = client.URLBuilder

	// NuGetURLs builds URLs for a NuGet gallery and its flat container.
	NuGetURLs = client.NuGetURLs
)

// Re-export constants
const (
	ProtocolV2 = core.ProtocolV2
	ProtocolV3 = core.ProtocolV3

	DefaultRepositoryURL = core.DefaultRepositoryURL
)

// Re-export errors
var (
	ErrPrivateSourceTimedOut = core.ErrPrivateSourceTimedOut
	ErrAllVersionsIgnored    = core.ErrAllVersionsIgnored
	ErrUnsupportedProtocol   = core.ErrUnsupportedProtocol
	ErrUpstreamDown          = fetch.ErrUpstreamDown
)

// Error types
type (
	PrivateSourceTimedOutError = core.PrivateSourceTimedOutError
	AllVersionsIgnoredError    = core.AllVersionsIgnoredError
)

// Resolver options
var (
	WithClient               = core.WithClient
	WithDefaultRepositoryURL = core.WithDefaultRepositoryURL
	WithConcurrency          = core.WithConcurrency
	WithLogger               = core.WithLogger
)

// Client options
var (
	WithTimeout     = fetch.WithTimeout
	WithMaxRetries  = fetch.WithMaxRetries
	WithUserAgent   = fetch.WithUserAgent
	WithHTTPClient  = fetch.WithHTTPClient
	WithMaxBodySize = fetch.WithMaxBodySize
)

// NewResolver creates a resolver for req. Results are cached on the
// resolver, so create a new one for every request.
func NewResolver(req Request, opts ...Option) (*Resolver, error) {
	return core.NewResolver(req, opts...)
}

// DefaultClient returns a client with sensible defaults:
// - 30s connect, TLS handshake and response-header timeouts
// - no retries
// - a per-host circuit breaker
func DefaultClient() Client {
	return core.DefaultClient()
}

// NewClient creates a circuit-breaking client with the given options.
func NewClient(opts ...ClientOption) Client {
	return fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(opts...))
}

// BreakerState reports each feed host's circuit breaker as "open" or
// "closed". Clients without circuit breakers report nil.
func BreakerState(c Client) map[string]string {
	cbf, ok := c.(*fetch.CircuitBreakerFetcher)
	if !ok {
		return nil
	}
	return cbf.GetBreakerState()
}

// SupportedProtocols returns all registered feed protocols.
func SupportedProtocols() []Protocol {
	return core.SupportedProtocols()
}

// NewFeed creates the feed for a source.
// If c is nil, DefaultClient() is used.
func NewFeed(src FeedSource, c Client) (Feed, error) {
	return core.NewFeed(src, c, core.FeedConfig{})
}

// V3Source builds the v3 source for one package from a feed's flat container
// and search service base URLs. searchURL may be empty.
func V3Source(repositoryURL, flatContainerURL, searchURL, name string) FeedSource {
	return v3.PackageSource(repositoryURL, flatContainerURL, searchURL, name)
}

// V2Source builds the v2 source for one package from a feed's OData base URL.
func V2Source(repositoryURL, feedURL, name string) FeedSource {
	return v2.PackageSource(repositoryURL, feedURL, name)
}

// DependencyFromPURL builds a Dependency from a NuGet Package URL such as
// "pkg:nuget/Newtonsoft.Json@13.0.1".
func DependencyFromPURL(purl string) (Dependency, error) {
	return core.DependencyFromPURL(purl)
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "download", "manifest", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}
