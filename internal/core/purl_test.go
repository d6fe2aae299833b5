package core

import "testing"

func TestDependencyFromPURL(t *testing.T) {
	tests := []struct {
		input       string
		wantName    string
		wantVersion string
		wantErr     bool
	}{
		{"pkg:nuget/Newtonsoft.Json", "Newtonsoft.Json", "", false},
		{"pkg:nuget/Newtonsoft.Json@13.0.1", "Newtonsoft.Json", "13.0.1", false},
		{"pkg:nuget/Serilog@3.0.0-dev-02010", "Serilog", "3.0.0-dev-02010", false},

		// Errors
		{"nuget/Newtonsoft.Json", "", "", true}, // missing pkg: prefix
		{"pkg:npm/lodash@4.17.21", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dep, err := DependencyFromPURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("DependencyFromPURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if dep.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", dep.Name, tt.wantName)
			}
			if dep.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", dep.Version, tt.wantVersion)
			}
		})
	}
}
