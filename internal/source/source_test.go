package source

import "testing"

func TestFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"github project url", "https://github.com/JamesNK/Newtonsoft.Json", "https://github.com/JamesNK/Newtonsoft.Json"},
		{"trailing .git", "git://github.com/serilog/serilog.git", "https://github.com/serilog/serilog"},
		{"ssh style", "git@github.com:dotnet/runtime.git", "https://github.com/dotnet/runtime"},
		{"sentence punctuation", "See https://gitlab.com/group/project. Thanks", "https://gitlab.com/group/project"},
		{"uppercase host", "https://GitHub.com/moq/moq4", "https://github.com/moq/moq4"},
		{"bitbucket", "https://bitbucket.org/team/lib/src", "https://bitbucket.org/team/lib"},
		{"first match wins", "https://www.nuget.org https://github.com/a/first and https://github.com/b/second", "https://github.com/a/first"},
		{"skips sponsors", "https://github.com/sponsors/someone https://github.com/real/repo", "https://github.com/real/repo"},
		{"no match", "https://www.newtonsoft.com/json", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromText(tt.text); got != tt.want {
				t.Errorf("FromText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsRepoURL(t *testing.T) {
	if !IsRepoURL("https://codeberg.org/forgejo/forgejo") {
		t.Error("expected codeberg URL to be a repo URL")
	}
	if IsRepoURL("https://example.com/foo/bar") {
		t.Error("expected example.com URL not to be a repo URL")
	}
}
