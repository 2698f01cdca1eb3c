package game

import (
	"testing"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

func TestAllows(t *testing.T) {
	linux := Platform{OS: "linux", Arch: "x86_64", Bits: 64, Version: "6.1.0-13-amd64"}
	osx := Platform{OS: "osx", Arch: "arm64", Bits: 64, Version: "23.1.0"}

	tests := []struct {
		name     string
		platform Platform
		rules    []Rule
		features map[string]bool
		want     bool
	}{
		{"no rules", linux, nil, nil, false},
		{"allow all", linux, []Rule{{Action: "allow"}}, nil, true},
		{"allow osx only on linux", linux, []Rule{{Action: "allow", OS: &OSRule{Name: "osx"}}}, nil, false},
		{"allow osx only on osx", osx, []Rule{{Action: "allow", OS: &OSRule{Name: "osx"}}}, nil, true},
		{"disallow osx", osx, []Rule{{Action: "allow"}, {Action: "disallow", OS: &OSRule{Name: "osx"}}}, nil, false},
		{"disallow wins early", linux, []Rule{{Action: "disallow"}, {Action: "allow"}}, nil, false},
		{"arch mismatch", linux, []Rule{{Action: "allow", OS: &OSRule{Arch: "x86"}}}, nil, false},
		{"version regex", linux, []Rule{{Action: "allow", OS: &OSRule{Name: "linux", Version: `^6\.`}}}, nil, true},
		{"version regex mismatch", osx, []Rule{{Action: "allow", OS: &OSRule{Version: `^10\.5\.`}}}, nil, false},
		{"feature enabled", linux, []Rule{{Action: "allow", Features: map[string]bool{"is_demo_user": true}}}, map[string]bool{"is_demo_user": true}, true},
		{"feature missing", linux, []Rule{{Action: "allow", Features: map[string]bool{"is_demo_user": true}}}, nil, false},
		{"feature false", linux, []Rule{{Action: "allow", Features: map[string]bool{"has_custom_resolution": false}}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.platform.Allows(tt.rules, tt.features)
			if err != nil {
				t.Fatalf("Allows: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllowsInvalid(t *testing.T) {
	p := Platform{OS: "linux"}
	if _, err := p.Allows([]Rule{{Action: "maybe"}}, nil); !mcerrors.Is(err, mcerrors.ErrCodeInvalidMetadata) {
		t.Errorf("bad action: err = %v", err)
	}
	if _, err := p.Allows([]Rule{{Action: "allow", OS: &OSRule{Version: "("}}}, nil); !mcerrors.Is(err, mcerrors.ErrCodeInvalidMetadata) {
		t.Errorf("bad regex: err = %v", err)
	}
}
