package core

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/git-pkgs/nugetcheck/advisory"
)

// Resolver answers update questions for a single Request. Results are
// computed on first use and cached for the life of the Resolver; failed
// computations are not cached and run again on the next call.
//
// A Resolver is safe for concurrent use. Create a new one per request.
type Resolver struct {
	req Request
	cfg *resolverConfig

	mu        sync.Mutex
	versions  memo[[]VersionRecord]
	eligible  memo[[]VersionRecord]
	secure    memo[[]VersionRecord]
	latest    memo[*VersionRecord]
	lowestFix memo[*VersionRecord]
}

type memo[T any] struct {
	done  bool
	value T
}

func (m *memo[T]) get(compute func() (T, error)) (T, error) {
	if m.done {
		return m.value, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	m.value, m.done = v, true
	return v, nil
}

// NewResolver creates a resolver for req.
func NewResolver(req Request, opts ...Option) (*Resolver, error) {
	cfg := defaultResolverConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.client == nil {
		cfg.client = DefaultClient()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	req.Sources = slices.Clone(req.Sources)
	req.IgnoredVersions = slices.Clone(req.IgnoredVersions)
	req.Advisories = slices.Clone(req.Advisories)
	req.Dependency.Requirements = slices.Clone(req.Dependency.Requirements)

	return &Resolver{req: req, cfg: cfg}, nil
}

// Request returns the request the resolver was created for.
func (r *Resolver) Request() Request {
	return r.req
}

// LatestVersion returns the highest version that passes the prerelease and
// ignore filters, or nil if none does.
func (r *Resolver) LatestVersion(ctx context.Context) (*VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyRecord(r.latest.get(func() (*VersionRecord, error) {
		eligible, err := r.eligibleVersions(ctx)
		if err != nil {
			return nil, err
		}
		return MaxRecord(eligible), nil
	}))
}

// LowestSecurityFix returns the lowest version above the installed one that
// passes the prerelease and ignore filters and that no advisory flags, or nil
// if none does.
func (r *Resolver) LowestSecurityFix(ctx context.Context) (*VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyRecord(r.lowestFix.get(func() (*VersionRecord, error) {
		secure, err := r.secureVersions(ctx)
		if err != nil {
			return nil, err
		}
		return MinRecord(secure), nil
	}))
}

// Versions returns every record listed by the configured sources.
func (r *Resolver) Versions(ctx context.Context) ([]VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.allVersions(ctx)
	return slices.Clone(records), err
}

// EligibleVersions returns the records that pass the prerelease and ignore
// filters.
func (r *Resolver) EligibleVersions(ctx context.Context) ([]VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.eligibleVersions(ctx)
	return slices.Clone(records), err
}

// SecureVersions returns the eligible records that no advisory flags and
// that are newer than the installed version.
func (r *Resolver) SecureVersions(ctx context.Context) ([]VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.secureVersions(ctx)
	return slices.Clone(records), err
}

// CurrentVulnerable reports whether the installed version is flagged by any
// advisory. It is false when the installed version is unknown.
func (r *Resolver) CurrentVulnerable() bool {
	current := r.req.Dependency.currentVersion()
	if current == nil {
		return false
	}
	return advisory.AnyVulnerable(r.req.Advisories, current)
}

func (r *Resolver) allVersions(ctx context.Context) ([]VersionRecord, error) {
	return r.versions.get(func() ([]VersionRecord, error) {
		cfg := FeedConfig{
			DefaultRepositoryURL: r.cfg.defaultRepositoryURL,
			Logger:               r.cfg.logger,
		}
		records, err := ListVersions(ctx, r.req.Dependency.Name, r.req.Sources, r.cfg.client, cfg, r.cfg.concurrency)
		if err != nil {
			return nil, err
		}
		r.cfg.logger.Debug("listed versions",
			"package", r.req.Dependency.Name, "sources", len(r.req.Sources), "versions", len(records))
		return records, nil
	})
}

func (r *Resolver) eligibleVersions(ctx context.Context) ([]VersionRecord, error) {
	return r.eligible.get(func() ([]VersionRecord, error) {
		records, err := r.allVersions(ctx)
		if err != nil {
			return nil, err
		}
		dep := r.req.Dependency
		return Pipeline{
			PrereleaseFilter(dep),
			IgnoredFilter(dep.Name, r.req.IgnoredVersions, r.req.RaiseOnIgnored),
		}.Apply(records)
	})
}

func (r *Resolver) secureVersions(ctx context.Context) ([]VersionRecord, error) {
	return r.secure.get(func() ([]VersionRecord, error) {
		records, err := r.eligibleVersions(ctx)
		if err != nil {
			return nil, err
		}
		return Pipeline{
			VulnerableFilter(r.req.Advisories),
			LowerVersionsFilter(r.req.Dependency.currentVersion()),
		}.Apply(records)
	})
}

// copyRecord hands callers their own copy of a cached record.
func copyRecord(rec *VersionRecord, err error) (*VersionRecord, error) {
	if err != nil || rec == nil {
		return nil, err
	}
	c := *rec
	return &c, nil
}
