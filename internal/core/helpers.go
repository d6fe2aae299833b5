package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ListVersions queries every source for the named package and concatenates
// the records they return. v3 sources are listed before v2 sources. A source
// that returns no records contributes nothing; any error aborts the listing.
//
// At most concurrency sources are queried at once. Each source writes its own
// result slot, so the output order does not depend on scheduling.
func ListVersions(ctx context.Context, name string, sources []FeedSource, client Client, cfg FeedConfig, concurrency int) ([]VersionRecord, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	ordered := partitionSources(sources)
	feeds := make([]Feed, len(ordered))
	for i, src := range ordered {
		feed, err := NewFeed(src, client, cfg)
		if err != nil {
			return nil, err
		}
		feeds[i] = feed
	}

	results := make([][]VersionRecord, len(feeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, feed := range feeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			src := feed.Source()
			records, err := feed.FetchVersions(gctx, name)
			if err != nil {
				return fmt.Errorf("listing %s from %s: %w", name, src.RepositoryURL, err)
			}
			if len(records) == 0 && cfg.Logger != nil {
				cfg.Logger.Debug("source returned no versions",
					"package", name, "repository", src.RepositoryURL, "protocol", string(src.Protocol))
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []VersionRecord
	for _, records := range results {
		all = append(all, records...)
	}
	return all, nil
}

// partitionSources orders sources v3 first, then v2, then anything else,
// keeping configuration order within each group.
func partitionSources(sources []FeedSource) []FeedSource {
	var v3, v2, other []FeedSource
	for _, src := range sources {
		switch src.Protocol {
		case ProtocolV3:
			v3 = append(v3, src)
		case ProtocolV2:
			v2 = append(v2, src)
		default:
			other = append(other, src)
		}
	}

	ordered := make([]FeedSource, 0, len(sources))
	ordered = append(ordered, v3...)
	ordered = append(ordered, v2...)
	return append(ordered, other...)
}
