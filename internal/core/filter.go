package core

import (
	"github.com/git-pkgs/nugetcheck/advisory"
	"github.com/git-pkgs/nugetcheck/internal/requirement"
	"github.com/git-pkgs/nugetcheck/version"
)

// Filter narrows a set of version records. A filter never adds records and
// never modifies the slice it is given.
type Filter func(records []VersionRecord) ([]VersionRecord, error)

// Pipeline applies filters in order.
type Pipeline []Filter

// Apply runs every filter in turn, stopping at the first error.
func (p Pipeline) Apply(records []VersionRecord) ([]VersionRecord, error) {
	out := records
	for _, f := range p {
		var err error
		out, err = f(out)
		if err != nil {
			return nil, err
		}
	}
	if len(p) == 0 {
		out = keep(records, func(VersionRecord) bool { return true })
	}
	return out, nil
}

// PrereleaseFilter returns FilterPrereleases bound to dep.
func PrereleaseFilter(dep Dependency) Filter {
	return func(records []VersionRecord) ([]VersionRecord, error) {
		return FilterPrereleases(records, dep), nil
	}
}

// IgnoredFilter returns FilterIgnored bound to the given rules.
func IgnoredFilter(name string, ignored []string, raiseOnIgnored bool) Filter {
	return func(records []VersionRecord) ([]VersionRecord, error) {
		return FilterIgnored(records, name, ignored, raiseOnIgnored)
	}
}

// VulnerableFilter returns FilterVulnerable bound to the given advisories.
func VulnerableFilter(advisories []advisory.Advisory) Filter {
	return func(records []VersionRecord) ([]VersionRecord, error) {
		return FilterVulnerable(records, advisories), nil
	}
}

// LowerVersionsFilter returns FilterLowerVersions bound to current.
func LowerVersionsFilter(current *version.Version) Filter {
	return func(records []VersionRecord) ([]VersionRecord, error) {
		return FilterLowerVersions(records, current), nil
	}
}

// FilterPrereleases drops prerelease versions that are unrelated to the
// dependency. A prerelease is related when the installed version is a
// prerelease of the same release, or when a declared requirement names a
// prerelease of the same release.
func FilterPrereleases(records []VersionRecord, dep Dependency) []VersionRecord {
	current := dep.currentVersion()
	if current != nil && !current.IsPrerelease() {
		current = nil
	}

	var related []*version.Version
	for _, req := range dep.Requirements {
		related = append(related, requirement.PrereleaseVersions(req)...)
	}

	return keep(records, func(r VersionRecord) bool {
		if !r.Version.IsPrerelease() {
			return true
		}
		if current != nil && current.SameRelease(r.Version) {
			return true
		}
		for _, v := range related {
			if v.SameRelease(r.Version) {
				return true
			}
		}
		return false
	})
}

// FilterIgnored drops every version satisfying any of the ignore
// requirements. With raiseOnIgnored set, a non-empty input that ends up empty
// yields an AllVersionsIgnoredError instead of an empty result.
func FilterIgnored(records []VersionRecord, name string, ignored []string, raiseOnIgnored bool) ([]VersionRecord, error) {
	reqs := make([]*requirement.Requirement, 0, len(ignored))
	for _, s := range ignored {
		req, err := requirement.Parse(s)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	out := keep(records, func(r VersionRecord) bool {
		for _, req := range reqs {
			if req.Satisfied(r.Version) {
				return false
			}
		}
		return true
	})

	if raiseOnIgnored && len(records) > 0 && len(out) == 0 {
		return nil, &AllVersionsIgnoredError{Name: name, Ignored: append([]string(nil), ignored...)}
	}
	return out, nil
}

// FilterVulnerable drops every version flagged by any advisory.
func FilterVulnerable(records []VersionRecord, advisories []advisory.Advisory) []VersionRecord {
	return keep(records, func(r VersionRecord) bool {
		return !advisory.AnyVulnerable(advisories, r.Version)
	})
}

// FilterLowerVersions drops versions that are not strictly greater than
// current. A nil current version keeps everything.
func FilterLowerVersions(records []VersionRecord, current *version.Version) []VersionRecord {
	return keep(records, func(r VersionRecord) bool {
		return current == nil || r.Version.GreaterThan(current)
	})
}

// MaxRecord returns the record with the highest version, or nil.
func MaxRecord(records []VersionRecord) *VersionRecord {
	return extremum(records, 1)
}

// MinRecord returns the record with the lowest version, or nil.
func MinRecord(records []VersionRecord) *VersionRecord {
	return extremum(records, -1)
}

func extremum(records []VersionRecord, sign int) *VersionRecord {
	if len(records) == 0 {
		return nil
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Version.Compare(best.Version)*sign > 0 {
			best = r
		}
	}
	return &best
}

func keep(records []VersionRecord, pred func(VersionRecord) bool) []VersionRecord {
	out := make([]VersionRecord, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
