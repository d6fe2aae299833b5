// Package version provides the NuGet version value used for ordering feed listings.
//
// NuGet versions are SemVer 2.0 versions with two extensions: up to four numeric
// segments (the fourth is the legacy "revision") and case-insensitive prerelease
// labels. Parsing and prerelease ordering are delegated to Masterminds/semver; the
// revision segment is split off before parsing and compared after the patch number.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned when a string is not a NuGet version.
var ErrInvalidVersion = errors.New("invalid version")

var revisionPattern = regexp.MustCompile(`^(v?\d+\.\d+\.\d+)\.(\d+)([-+].*)?$`)

// Version is an immutable, prerelease-aware NuGet version.
type Version struct {
	sv       *semver.Version
	revision uint64
	original string
}

// Parse parses a NuGet version string such as "1.2", "1.2.3-beta.1" or "1.2.3.4".
func Parse(s string) (*Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidVersion)
	}

	text := strings.ToLower(raw)
	var revision uint64
	if m := revisionPattern.FindStringSubmatch(text); m != nil {
		r, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
		}
		revision = r
		text = m[1] + m[3]
	}

	sv, err := semver.NewVersion(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}

	return &Version{sv: sv, revision: revision, original: raw}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether s parses as a version.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the version as it was written in the feed.
func (v *Version) String() string {
	return v.original
}

// Prerelease returns the lowercased prerelease label, or "" for a release.
func (v *Version) Prerelease() string {
	return v.sv.Prerelease()
}

// IsPrerelease reports whether the version carries a prerelease label.
func (v *Version) IsPrerelease() bool {
	return v.sv.Prerelease() != ""
}

// Release returns the release-core of v: its numeric segments without any
// prerelease label or build metadata.
func (v *Version) Release() *Version {
	core := semver.New(v.sv.Major(), v.sv.Minor(), v.sv.Patch(), "", "")
	s := core.String()
	if v.revision > 0 {
		s = fmt.Sprintf("%s.%d", s, v.revision)
	}
	return &Version{sv: core, revision: v.revision, original: s}
}

// SameRelease reports whether v and o share a release-core.
func (v *Version) SameRelease(o *Version) bool {
	return v.compareNumeric(o) == 0
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than o.
// Build metadata does not participate.
func (v *Version) Compare(o *Version) int {
	if c := v.compareNumeric(o); c != 0 {
		return c
	}
	a := semver.New(0, 0, 0, v.sv.Prerelease(), "")
	b := semver.New(0, 0, 0, o.sv.Prerelease(), "")
	return a.Compare(b)
}

// LessThan reports whether v < o.
func (v *Version) LessThan(o *Version) bool {
	return v.Compare(o) < 0
}

// GreaterThan reports whether v > o.
func (v *Version) GreaterThan(o *Version) bool {
	return v.Compare(o) > 0
}

// Equal reports whether v and o order equally.
func (v *Version) Equal(o *Version) bool {
	return v.Compare(o) == 0
}

func (v *Version) compareNumeric(o *Version) int {
	if c := compareUint(v.sv.Major(), o.sv.Major()); c != 0 {
		return c
	}
	if c := compareUint(v.sv.Minor(), o.sv.Minor()); c != 0 {
		return c
	}
	if c := compareUint(v.sv.Patch(), o.sv.Patch()); c != 0 {
		return c
	}
	return compareUint(v.revision, o.revision)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
