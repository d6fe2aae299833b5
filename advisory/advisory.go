// Package advisory describes security advisories as predicates over versions.
package advisory

import (
	"fmt"

	"github.com/git-pkgs/nugetcheck/internal/requirement"
	"github.com/git-pkgs/nugetcheck/version"
)

// Advisory reports whether a version is affected by a known vulnerability.
type Advisory interface {
	Vulnerable(v *version.Version) bool
}

// Func adapts an ordinary function to the Advisory interface.
type Func func(v *version.Version) bool

func (f Func) Vulnerable(v *version.Version) bool {
	return f(v)
}

// Range is an advisory expressed as vulnerable and patched version ranges.
// Each range uses NuGet interval notation ("[1.0,1.2)") or comparator
// clauses (">= 1.0, < 1.2").
type Range struct {
	ID         string
	vulnerable []*requirement.Requirement
	safe       []*requirement.Requirement
}

// NewRange parses the vulnerable and safe ranges of an advisory.
func NewRange(id string, vulnerable, safe []string) (*Range, error) {
	r := &Range{ID: id}
	for _, s := range vulnerable {
		req, err := requirement.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("advisory %s: vulnerable range: %w", id, err)
		}
		r.vulnerable = append(r.vulnerable, req)
	}
	for _, s := range safe {
		req, err := requirement.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("advisory %s: safe range: %w", id, err)
		}
		r.safe = append(r.safe, req)
	}
	return r, nil
}

// Vulnerable reports whether v is affected. A version in a safe range is
// never vulnerable. Without vulnerable ranges, every version outside the
// safe ranges is vulnerable.
func (r *Range) Vulnerable(v *version.Version) bool {
	if anySatisfied(r.safe, v) {
		return false
	}
	if anySatisfied(r.vulnerable, v) {
		return true
	}
	if len(r.vulnerable) > 0 {
		return false
	}
	return len(r.safe) > 0
}

// AnyVulnerable reports whether any of the advisories flags v.
func AnyVulnerable(advisories []Advisory, v *version.Version) bool {
	for _, a := range advisories {
		if a.Vulnerable(v) {
			return true
		}
	}
	return false
}

func anySatisfied(reqs []*requirement.Requirement, v *version.Version) bool {
	for _, req := range reqs {
		if req.Satisfied(v) {
			return true
		}
	}
	return false
}
