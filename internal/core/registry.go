package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Feed lists the published versions of a package from one source.
type Feed interface {
	// Protocol returns the protocol generation this feed speaks.
	Protocol() Protocol

	// Source returns the source the feed was created for.
	Source() FeedSource

	// FetchVersions lists the versions of the named package. A source that is
	// unreachable, answers with a non-success status or does not carry the
	// package returns nil records and a nil error.
	FetchVersions(ctx context.Context, name string) ([]VersionRecord, error)
}

// FeedConfig carries resolution-wide settings into feed implementations.
type FeedConfig struct {
	// DefaultRepositoryURL identifies the public registry, whose timeouts are
	// reported as plain transport errors rather than PrivateSourceTimedOutError.
	DefaultRepositoryURL string
	Logger               *slog.Logger
}

// Factory creates a feed for a source.
type Factory func(src FeedSource, client Client, cfg FeedConfig) Feed

var (
	factories = make(map[Protocol]Factory)
	mu        sync.RWMutex
)

// Register adds a feed factory for a protocol generation.
func Register(protocol Protocol, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[protocol] = factory
}

// NewFeed creates the feed for a source. If client is nil, DefaultClient() is
// used; a nil logger discards output.
func NewFeed(src FeedSource, client Client, cfg FeedConfig) (Feed, error) {
	mu.RLock()
	factory, ok := factories[src.Protocol]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedProtocol, src.Protocol, src.RepositoryURL)
	}

	if client == nil {
		client = DefaultClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DefaultRepositoryURL == "" {
		cfg.DefaultRepositoryURL = DefaultRepositoryURL
	}

	return factory(src, client, cfg), nil
}

// SupportedProtocols returns all registered protocol generations, sorted.
func SupportedProtocols() []Protocol {
	mu.RLock()
	defer mu.RUnlock()

	protocols := make([]Protocol, 0, len(factories))
	for p := range factories {
		protocols = append(protocols, p)
	}
	sort.Slice(protocols, func(i, j int) bool { return protocols[i] < protocols[j] })
	return protocols
}
