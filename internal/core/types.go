// Package core provides the data model, feed registry, aggregation, filtering
// pipeline and version selection shared by every feed protocol.
package core

import (
	"github.com/git-pkgs/nugetcheck/advisory"
	"github.com/git-pkgs/nugetcheck/version"
)

// Protocol identifies a feed protocol generation.
type Protocol string

const (
	ProtocolV2 Protocol = "v2" // OData/Atom XML feeds
	ProtocolV3 Protocol = "v3" // JSON service-index feeds
)

// DefaultRepositoryURL identifies the public nuget.org v3 feed.
const DefaultRepositoryURL = "https://api.nuget.org/v3/index.json"

// FeedSource describes one configured package feed. Sources are built by the
// caller (usually from NuGet.Config) and are read-only during resolution.
type FeedSource struct {
	Protocol      Protocol
	VersionsURL   string
	SearchURL     string            // v3 only, optional
	AuthHeaders   map[string]string // optional
	RepositoryURL string
}

// VersionRecord is one published version as listed by a feed.
type VersionRecord struct {
	Version       *version.Version
	ManifestURL   string // .nuspec location, v3 feeds only
	SourceURL     string // source repository, v2 feeds only
	RepositoryURL string // feed the record came from
}

// Dependency is the package being checked for updates.
type Dependency struct {
	Name         string
	Version      string   // currently installed; may be empty
	Requirements []string // declared requirement strings
}

// Request is the input to one resolution.
type Request struct {
	Dependency      Dependency
	IgnoredVersions []string
	Advisories      []advisory.Advisory
	// RaiseOnIgnored makes resolution fail with AllVersionsIgnoredError when
	// ignore rules exclude every published version.
	RaiseOnIgnored bool
	Sources        []FeedSource
}

// currentVersion returns the dependency's installed version, or nil when it
// is missing or not a valid version.
func (d Dependency) currentVersion() *version.Version {
	if d.Version == "" {
		return nil
	}
	v, err := version.Parse(d.Version)
	if err != nil {
		return nil
	}
	return v
}
