// Package requirement parses the version requirement strings used for ignore
// rules, security advisories and declared dependency requirements.
//
// Two syntaxes are accepted. A string containing a bracketed interval such as
// "[1.0,2.0)" is treated as a NuGet interval: git-pkgs/vers splits it into
// bounds, which are then compared with the same ordering as feed versions.
// Anything else is a comma-separated list of comparator clauses
// ("= 1.0", ">= 1.0, < 2.0", "~> 1.2", "1.*") that must all hold.
package requirement

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/git-pkgs/vers"

	"github.com/git-pkgs/nugetcheck/version"
)

// ErrInvalidRequirement is returned when a requirement string cannot be parsed.
var ErrInvalidRequirement = errors.New("invalid requirement")

var (
	rangePattern  = regexp.MustCompile(`[(\[].*,.*[)\]]`)
	exactPattern  = regexp.MustCompile(`^\[\s*([^,\[\]]+?)\s*\]$`)
	clausePattern = regexp.MustCompile(`^(=|!=|>=|<=|>|<|~>)?\s*(\S+)$`)
)

// Requirement is a parsed version requirement.
type Requirement struct {
	raw        string
	intervals  []interval
	exclusions []*version.Version
	clauses    []clause
}

// interval is a union member of a bracketed range. A nil bound is unbounded.
type interval struct {
	min, max                   *version.Version
	minInclusive, maxInclusive bool
}

func (iv interval) contains(v *version.Version) bool {
	if iv.min != nil {
		cmp := v.Compare(iv.min)
		if cmp < 0 || (cmp == 0 && !iv.minInclusive) {
			return false
		}
	}
	if iv.max != nil {
		cmp := v.Compare(iv.max)
		if cmp > 0 || (cmp == 0 && !iv.maxInclusive) {
			return false
		}
	}
	return true
}

type clause struct {
	op    string
	v     *version.Version
	upper *version.Version // exclusive bound for "~>"
}

// IsRange reports whether s uses the bracketed interval syntax.
func IsRange(s string) bool {
	return rangePattern.MatchString(s)
}

// Parse parses a requirement string.
func Parse(s string) (*Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty requirement", ErrInvalidRequirement)
	}

	if IsRange(raw) {
		return parseRange(raw)
	}

	if m := exactPattern.FindStringSubmatch(raw); m != nil {
		raw = "= " + m[1]
	}

	var clauses []clause
	for _, part := range strings.Split(raw, ",") {
		c, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRequirement, s, err)
		}
		clauses = append(clauses, c)
	}
	return &Requirement{raw: strings.TrimSpace(s), clauses: clauses}, nil
}

func parseRange(raw string) (*Requirement, error) {
	r, err := vers.ParseNative(strings.ReplaceAll(raw, " ", ""), "nuget")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRequirement, raw, err)
	}

	if len(r.Intervals) == 0 {
		return nil, fmt.Errorf("%w: %q: no interval", ErrInvalidRequirement, raw)
	}

	req := &Requirement{raw: raw}
	for _, iv := range r.Intervals {
		lo, err := parseBound(iv.Min)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRequirement, raw, err)
		}
		hi, err := parseBound(iv.Max)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRequirement, raw, err)
		}
		req.intervals = append(req.intervals, interval{
			min:          lo,
			max:          hi,
			minInclusive: iv.MinInclusive,
			maxInclusive: iv.MaxInclusive,
		})
	}
	for _, e := range r.Exclusions {
		v, err := version.Parse(e)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRequirement, raw, err)
		}
		req.exclusions = append(req.exclusions, v)
	}
	return req, nil
}

func parseBound(s string) (*version.Version, error) {
	if s == "" {
		return nil, nil
	}
	return version.Parse(s)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Requirement {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the requirement as written.
func (r *Requirement) String() string {
	return r.raw
}

// Satisfied reports whether v meets the requirement.
func (r *Requirement) Satisfied(v *version.Version) bool {
	if len(r.intervals) > 0 {
		for _, e := range r.exclusions {
			if v.Equal(e) {
				return false
			}
		}
		for _, iv := range r.intervals {
			if iv.contains(v) {
				return true
			}
		}
		return false
	}
	for _, c := range r.clauses {
		if !c.matches(v) {
			return false
		}
	}
	return true
}

func (c clause) matches(v *version.Version) bool {
	cmp := v.Compare(c.v)
	switch c.op {
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case "~>":
		return cmp >= 0 && v.LessThan(c.upper)
	default:
		return cmp == 0
	}
}

func parseClause(s string) (clause, error) {
	m := clausePattern.FindStringSubmatch(s)
	if m == nil {
		return clause{}, fmt.Errorf("malformed clause %q", s)
	}
	op, text := m[1], m[2]
	if op == "" {
		op = "="
	}

	if text == "*" {
		return clause{op: ">=", v: version.MustParse("0.0.0")}, nil
	}
	if strings.HasSuffix(text, ".*") {
		if op != "=" {
			return clause{}, fmt.Errorf("wildcard %q cannot take operator %q", text, op)
		}
		op, text = "~>", strings.TrimSuffix(text, ".*")+".0"
	}

	v, err := version.Parse(text)
	if err != nil {
		return clause{}, err
	}
	c := clause{op: op, v: v}
	if op == "~>" {
		upper, err := pessimisticUpper(text)
		if err != nil {
			return clause{}, err
		}
		c.upper = upper
	}
	return c, nil
}

// pessimisticUpper returns the exclusive upper bound of "~> text": the second
// to last release segment is bumped and later segments dropped, so "~> 1.2"
// allows < 2.0 and "~> 1.2.3" allows < 1.3.
func pessimisticUpper(text string) (*version.Version, error) {
	release := strings.TrimPrefix(strings.ToLower(text), "v")
	if i := strings.IndexAny(release, "-+"); i >= 0 {
		release = release[:i]
	}
	segments := strings.Split(release, ".")
	keep := len(segments) - 1
	if keep < 1 {
		keep = 1
	}
	segments = segments[:keep]

	last, err := strconv.ParseUint(segments[keep-1], 10, 64)
	if err != nil {
		return nil, err
	}
	segments[keep-1] = strconv.FormatUint(last+1, 10)
	return version.Parse(strings.Join(segments, "."))
}

// PrereleaseVersions returns the versions named by the hyphenated segments of
// a declared requirement, such as "2.0.0-beta" in "[2.0.0-beta, 3.0.0)".
// Segments that do not parse are skipped.
func PrereleaseVersions(s string) []*version.Version {
	var out []*version.Version
	for _, segment := range strings.Split(s, ",") {
		if !strings.Contains(segment, "-") {
			continue
		}
		text := strings.Trim(segment, " \t[]()=<>!~")
		v, err := version.Parse(text)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
