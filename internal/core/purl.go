package core

import (
	"fmt"

	packageurl "github.com/git-pkgs/packageurl-go"
)

// DependencyFromPURL builds a Dependency from a NuGet Package URL such as
// "pkg:nuget/Newtonsoft.Json@13.0.1". The version, if any, becomes the
// currently installed version.
func DependencyFromPURL(purl string) (Dependency, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return Dependency{}, err
	}
	if p.Type != "nuget" {
		return Dependency{}, fmt.Errorf("PURL %s is not a nuget package", purl)
	}

	name := p.Name
	if p.Namespace != "" {
		name = p.Namespace + "/" + p.Name
	}

	return Dependency{Name: name, Version: p.Version}, nil
}
