package core

import (
	"errors"
	"log/slog"
)

// Option configures a Resolver.
type Option func(*resolverConfig) error

type resolverConfig struct {
	client               Client
	defaultRepositoryURL string
	concurrency          int

	// logger receives debug output. If nil, logging is disabled.
	logger *slog.Logger
}

func defaultResolverConfig() *resolverConfig {
	return &resolverConfig{
		defaultRepositoryURL: DefaultRepositoryURL,
		concurrency:          1,
	}
}

// WithClient sets the transport used for every feed request.
// The default is DefaultClient().
func WithClient(c Client) Option {
	return func(cfg *resolverConfig) error {
		if c == nil {
			return errors.New("client cannot be nil")
		}
		cfg.client = c
		return nil
	}
}

// WithDefaultRepositoryURL sets the repository URL of the public registry.
// Timeouts against this source are plain transport errors; timeouts against
// any other source are reported as PrivateSourceTimedOutError.
func WithDefaultRepositoryURL(url string) Option {
	return func(cfg *resolverConfig) error {
		if url == "" {
			return errors.New("default repository URL cannot be empty")
		}
		cfg.defaultRepositoryURL = url
		return nil
	}
}

// WithConcurrency sets how many sources are queried at once. The default of
// 1 queries sources one after another.
func WithConcurrency(n int) Option {
	return func(cfg *resolverConfig) error {
		if n < 1 {
			return errors.New("concurrency must be at least 1")
		}
		cfg.concurrency = n
		return nil
	}
}

// WithLogger sets the structured logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *resolverConfig) error {
		cfg.logger = logger
		return nil
	}
}
