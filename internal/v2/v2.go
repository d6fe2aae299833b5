// Package v2 provides the feed client for NuGet v2 (OData/Atom XML) package
// sources.
package v2

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/git-pkgs/nugetcheck/internal/core"
	"github.com/git-pkgs/nugetcheck/internal/source"
	"github.com/git-pkgs/nugetcheck/version"
)

// ErrMissingVersion is returned when a feed entry has no Version property.
var ErrMissingVersion = errors.New("feed entry has no Version property")

func init() {
	core.Register(core.ProtocolV2, func(src core.FeedSource, client core.Client, cfg core.FeedConfig) core.Feed {
		return New(src, client, cfg)
	})
}

// PackageSource builds the v2 source for one package from a feed's OData
// base URL.
func PackageSource(repositoryURL, feedURL, name string) core.FeedSource {
	return core.FeedSource{
		Protocol:      core.ProtocolV2,
		VersionsURL:   fmt.Sprintf("%s/FindPackagesById()?id=%s", strings.TrimSuffix(feedURL, "/"), url.QueryEscape("'"+name+"'")),
		RepositoryURL: repositoryURL,
	}
}

// Listing is the raw body of a successful v2 feed response and the source it
// came from.
type Listing struct {
	Body   []byte
	Source core.FeedSource
}

// Feed lists package versions from a v2 source.
type Feed struct {
	src    core.FeedSource
	client core.Client
	cfg    core.FeedConfig
}

// New creates a v2 feed for src.
func New(src core.FeedSource, client core.Client, cfg core.FeedConfig) *Feed {
	if client == nil {
		client = core.DefaultClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{src: src, client: client, cfg: cfg}
}

func (f *Feed) Protocol() core.Protocol {
	return core.ProtocolV2
}

func (f *Feed) Source() core.FeedSource {
	return f.src
}

// FetchVersions fetches the listing and parses it into records.
func (f *Feed) FetchVersions(ctx context.Context, name string) ([]core.VersionRecord, error) {
	listing, err := f.FetchListing(ctx)
	if err != nil || listing == nil {
		return nil, err
	}
	return ParseListing(listing, f.cfg.Logger)
}

// FetchListing requests the source's versions URL once. A non-success status
// yields a nil listing and a nil error.
func (f *Feed) FetchListing(ctx context.Context) (*Listing, error) {
	if f.src.VersionsURL == "" {
		return nil, nil
	}
	resp, err := f.client.Get(ctx, f.src.VersionsURL, f.src.AuthHeaders)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		f.cfg.Logger.Debug("listing request failed",
			"url", f.src.VersionsURL, "status", resp.StatusCode)
		return nil, nil
	}
	return &Listing{Body: resp.Body, Source: f.src}, nil
}

// Element names are matched without their namespace, so "d:Version" and
// "Version" are the same property.
type feedDocument struct {
	Entries []feedEntry `xml:"entry"`
}

type feedEntry struct {
	Properties entryProperties `xml:"properties"`
}

type entryProperties struct {
	Version      *string `xml:"Version"`
	Listed       *string `xml:"Listed"`
	ProjectURL   string  `xml:"ProjectUrl"`
	ReleaseNotes string  `xml:"ReleaseNotes"`
}

// ParseListing decodes a v2 feed into records. Unlisted entries are dropped.
// An entry without a Version is an error; a Version that is not a valid
// NuGet version is skipped.
func ParseListing(listing *Listing, logger *slog.Logger) ([]core.VersionRecord, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var doc feedDocument
	dec := xml.NewDecoder(bytes.NewReader(listing.Body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing feed from %s: %w", listing.Source.VersionsURL, err)
	}

	var out []core.VersionRecord
	for i, entry := range doc.Entries {
		props := entry.Properties
		if props.Listed != nil && strings.EqualFold(strings.TrimSpace(*props.Listed), "false") {
			continue
		}
		if props.Version == nil {
			return nil, fmt.Errorf("parsing feed from %s: entry %d: %w", listing.Source.VersionsURL, i, ErrMissingVersion)
		}

		raw := strings.TrimSpace(*props.Version)
		v, err := version.Parse(raw)
		if err != nil {
			logger.Debug("skipping unparseable version",
				"version", raw, "repository", listing.Source.RepositoryURL)
			continue
		}

		out = append(out, core.VersionRecord{
			Version:       v,
			SourceURL:     source.FromText(props.ProjectURL + " " + props.ReleaseNotes),
			RepositoryURL: listing.Source.RepositoryURL,
		})
	}
	return out, nil
}
