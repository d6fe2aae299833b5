// Package source extracts source repository URLs from free-form package metadata.
package source

import (
	"regexp"
	"strings"
)

var hostPattern = regexp.MustCompile(`(?i)(github\.com|gitlab\.com|bitbucket\.org|codeberg\.org)[/:]([\w.-]+)/([\w.-]+)`)

// FromText returns the canonical URL of the first recognized source-hosting
// repository mentioned in text, or "" if there is none. Matches are tried in
// the order they appear; multi-URL text may pick an unrelated repository.
func FromText(text string) string {
	for _, m := range hostPattern.FindAllStringSubmatch(text, -1) {
		if u := canonicalize(m[1], m[2], m[3]); u != "" {
			return u
		}
	}
	return ""
}

// IsRepoURL reports whether u points at a recognized source host.
func IsRepoURL(u string) bool {
	return FromText(u) != ""
}

func canonicalize(host, owner, repo string) string {
	repo = strings.TrimRight(repo, ".")
	repo = strings.TrimSuffix(repo, ".git")
	owner = strings.Trim(owner, ".")
	if owner == "" || repo == "" || owner == "sponsors" {
		return ""
	}
	return "https://" + strings.ToLower(host) + "/" + owner + "/" + repo
}
