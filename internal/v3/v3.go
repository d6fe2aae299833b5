// Package v3 provides the feed client for NuGet v3 (JSON) package sources.
package v3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/git-pkgs/nugetcheck/internal/core"
	"github.com/git-pkgs/nugetcheck/version"
)

// Feeds are known to wrap their JSON in a byte order mark or zero-width
// characters.
const invisibleCutset = "\uFEFF\u200B\u200C\u200D\u2060 \t\r\n"

var errMissingKey = errors.New("missing required key")

func init() {
	core.Register(core.ProtocolV3, func(src core.FeedSource, client core.Client, cfg core.FeedConfig) core.Feed {
		return New(src, client, cfg)
	})
}

// PackageSource builds the v3 source for one package from a feed's flat
// container and search service base URLs. searchURL may be empty.
func PackageSource(repositoryURL, flatContainerURL, searchURL, name string) core.FeedSource {
	urls := &core.NuGetURLs{FlatContainerURL: flatContainerURL}
	src := core.FeedSource{
		Protocol:      core.ProtocolV3,
		VersionsURL:   urls.Versions(name),
		RepositoryURL: repositoryURL,
	}
	if searchURL != "" {
		q := url.Values{}
		q.Set("q", "packageid:"+name)
		q.Set("prerelease", "true")
		q.Set("semVerLevel", "2.0.0")
		src.SearchURL = strings.TrimSuffix(searchURL, "?") + "?" + q.Encode()
	}
	return src
}

// Feed lists package versions from a v3 source.
type Feed struct {
	src    core.FeedSource
	client core.Client
	cfg    core.FeedConfig
}

// New creates a v3 feed for src.
func New(src core.FeedSource, client core.Client, cfg core.FeedConfig) *Feed {
	if client == nil {
		client = core.DefaultClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DefaultRepositoryURL == "" {
		cfg.DefaultRepositoryURL = core.DefaultRepositoryURL
	}
	return &Feed{src: src, client: client, cfg: cfg}
}

func (f *Feed) Protocol() core.Protocol {
	return core.ProtocolV3
}

func (f *Feed) Source() core.FeedSource {
	return f.src
}

type searchResponse struct {
	Data *[]searchEntry `json:"data"`
}

type searchEntry struct {
	ID       string          `json:"id"`
	Versions []searchVersion `json:"versions"`
}

type searchVersion struct {
	Version string `json:"version"`
}

type versionsResponse struct {
	Versions *[]string `json:"versions"`
}

// FetchVersions lists the versions of name, preferring the search service
// and falling back to the flat-container listing.
func (f *Feed) FetchVersions(ctx context.Context, name string) ([]core.VersionRecord, error) {
	var (
		raw []string
		err error
	)
	switch {
	case f.src.SearchURL != "":
		raw, err = f.searchVersions(ctx, name)
	case f.src.VersionsURL != "":
		raw, err = f.listVersions(ctx)
	}
	if err != nil || raw == nil {
		return nil, err
	}
	return f.records(name, raw), nil
}

func (f *Feed) searchVersions(ctx context.Context, name string) ([]string, error) {
	resp, err := f.client.Get(ctx, f.src.SearchURL, f.src.AuthHeaders)
	if err != nil {
		if !core.IsConnectionFailure(err) || f.isDefaultRepository() {
			return nil, err
		}
		return nil, &core.PrivateSourceTimedOutError{RepositoryURL: f.src.RepositoryURL, Cause: err}
	}
	if !resp.OK() {
		f.cfg.Logger.Debug("search request failed",
			"url", f.src.SearchURL, "status", resp.StatusCode)
		return nil, nil
	}

	var body searchResponse
	if err := decode(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("parsing search response from %s: %w", f.src.SearchURL, err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("parsing search response from %s: %w %q", f.src.SearchURL, errMissingKey, "data")
	}

	for _, entry := range *body.Data {
		if !strings.EqualFold(entry.ID, name) {
			continue
		}
		out := make([]string, 0, len(entry.Versions))
		for _, v := range entry.Versions {
			out = append(out, v.Version)
		}
		return out, nil
	}
	return nil, nil
}

func (f *Feed) listVersions(ctx context.Context) ([]string, error) {
	resp, err := f.client.Get(ctx, f.src.VersionsURL, f.src.AuthHeaders)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		f.cfg.Logger.Debug("versions request failed",
			"url", f.src.VersionsURL, "status", resp.StatusCode)
		return nil, nil
	}

	var body versionsResponse
	if err := decode(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("parsing versions from %s: %w", f.src.VersionsURL, err)
	}
	if body.Versions == nil {
		return nil, fmt.Errorf("parsing versions from %s: %w %q", f.src.VersionsURL, errMissingKey, "versions")
	}
	return *body.Versions, nil
}

func (f *Feed) records(name string, raw []string) []core.VersionRecord {
	out := make([]core.VersionRecord, 0, len(raw))
	for _, s := range raw {
		v, err := version.Parse(s)
		if err != nil {
			f.cfg.Logger.Debug("skipping unparseable version",
				"package", name, "version", s, "repository", f.src.RepositoryURL)
			continue
		}
		out = append(out, core.VersionRecord{
			Version:       v,
			ManifestURL:   f.manifestURL(name, s),
			RepositoryURL: f.src.RepositoryURL,
		})
	}
	return out
}

// manifestURL derives the .nuspec location from the flat-container listing
// URL. It is never fetched here.
func (f *Feed) manifestURL(name, v string) string {
	flat, ok := strings.CutSuffix(f.src.VersionsURL, "/"+strings.ToLower(name)+"/index.json")
	if !ok || flat == "" {
		return ""
	}
	urls := &core.NuGetURLs{FlatContainerURL: flat}
	return urls.Manifest(name, v)
}

func (f *Feed) isDefaultRepository() bool {
	return f.src.RepositoryURL == f.cfg.DefaultRepositoryURL
}

func decode(body []byte, v any) error {
	return json.Unmarshal([]byte(strings.Trim(string(body), invisibleCutset)), v)
}
