// Package client builds the URLs a NuGet gallery exposes for a package version.
package client

import (
	"fmt"
	"strings"

	packageurl "github.com/git-pkgs/packageurl-go"
)

const (
	DefaultGalleryURL       = "https://www.nuget.org"
	DefaultFlatContainerURL = "https://api.nuget.org/v3-flatcontainer"
)

// URLBuilder constructs URLs for a package version.
type URLBuilder interface {
	Registry(name, version string) string
	Download(name, version string) string
	Manifest(name, version string) string
	PURL(name, version string) string
}

// NuGetURLs builds URLs for a NuGet gallery and its flat container.
// Empty fields fall back to nuget.org.
type NuGetURLs struct {
	GalleryURL       string
	FlatContainerURL string
}

func (u *NuGetURLs) gallery() string {
	if u.GalleryURL == "" {
		return DefaultGalleryURL
	}
	return strings.TrimSuffix(u.GalleryURL, "/")
}

func (u *NuGetURLs) flatContainer() string {
	if u.FlatContainerURL == "" {
		return DefaultFlatContainerURL
	}
	return strings.TrimSuffix(u.FlatContainerURL, "/")
}

func (u *NuGetURLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/packages/%s/%s", u.gallery(), name, version)
	}
	return fmt.Sprintf("%s/packages/%s", u.gallery(), name)
}

func (u *NuGetURLs) Download(name, version string) string {
	if version == "" {
		return ""
	}
	// Flat container paths are lowercase
	lower, lowerVersion := strings.ToLower(name), strings.ToLower(version)
	return fmt.Sprintf("%s/%s/%s/%s.%s.nupkg", u.flatContainer(), lower, lowerVersion, lower, lowerVersion)
}

func (u *NuGetURLs) Manifest(name, version string) string {
	if version == "" {
		return ""
	}
	lower, lowerVersion := strings.ToLower(name), strings.ToLower(version)
	return fmt.Sprintf("%s/%s/%s/%s.nuspec", u.flatContainer(), lower, lowerVersion, lower)
}

// Versions returns the flat-container listing of every version of a package.
func (u *NuGetURLs) Versions(name string) string {
	return fmt.Sprintf("%s/%s/index.json", u.flatContainer(), strings.ToLower(name))
}

func (u *NuGetURLs) PURL(name, version string) string {
	return NuGetPURL(name, version)
}

// NuGetPURL returns the Package URL of a NuGet package, with the version
// when one is given.
func NuGetPURL(name, version string) string {
	return packageurl.NewPackageURL("nuget", "", name, version, nil, "").ToString()
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "download", "manifest", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Registry(name, version); v != "" {
		result["registry"] = v
	}
	if v := urls.Download(name, version); v != "" {
		result["download"] = v
	}
	if v := urls.Manifest(name, version); v != "" {
		result["manifest"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
