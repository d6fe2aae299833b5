package advisory

import (
	"testing"

	"github.com/git-pkgs/nugetcheck/version"
)

func TestRangeVulnerable(t *testing.T) {
	tests := []struct {
		name       string
		vulnerable []string
		safe       []string
		version    string
		want       bool
	}{
		{"inside interval", []string{"[1.0.0,1.1.0]"}, nil, "1.1.0", true},
		{"outside interval", []string{"[1.0.0,1.1.0]"}, nil, "1.2.0", false},
		{"half open excludes upper", []string{"[1.0.0,1.1.0)"}, nil, "1.1.0", false},
		{"comparator clauses", []string{">= 1.0.0, < 1.1.0"}, nil, "1.0.5", true},
		{"safe overrides vulnerable", []string{"< 2.0.0"}, []string{"= 1.5.0"}, "1.5.0", false},
		{"only safe ranges, outside", nil, []string{">= 1.2.0"}, "1.1.0", true},
		{"only safe ranges, inside", nil, []string{">= 1.2.0"}, "1.3.0", false},
		{"no ranges", nil, nil, "1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRange("GHSA-test", tt.vulnerable, tt.safe)
			if err != nil {
				t.Fatalf("NewRange failed: %v", err)
			}
			if got := r.Vulnerable(version.MustParse(tt.version)); got != tt.want {
				t.Errorf("Vulnerable(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestNewRangeInvalid(t *testing.T) {
	if _, err := NewRange("GHSA-bad", []string{">= nope"}, nil); err == nil {
		t.Error("expected error for invalid vulnerable range")
	}
	if _, err := NewRange("GHSA-bad", nil, []string{"~> "}); err == nil {
		t.Error("expected error for invalid safe range")
	}
}

func TestFuncAndAnyVulnerable(t *testing.T) {
	beta := Func(func(v *version.Version) bool { return v.IsPrerelease() })
	none := Func(func(*version.Version) bool { return false })

	if !AnyVulnerable([]Advisory{none, beta}, version.MustParse("2.0.0-beta")) {
		t.Error("expected prerelease to be flagged")
	}
	if AnyVulnerable([]Advisory{none, beta}, version.MustParse("2.0.0")) {
		t.Error("expected release not to be flagged")
	}
	if AnyVulnerable(nil, version.MustParse("2.0.0")) {
		t.Error("expected no advisories to flag nothing")
	}
}
