package game

import (
	"regexp"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

// Rule is one entry of a metadata "rules" list.
type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OSRule constrains a rule to hosts. Version is a regular expression.
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

// Allows evaluates rules for p. Rules apply in order: a matching "disallow"
// rejects immediately, a matching "allow" accepts unless a later disallow
// matches. No matching rule rejects.
func (p Platform) Allows(rules []Rule, features map[string]bool) (bool, error) {
	allowed := false
	for _, r := range rules {
		match, err := p.matchOS(r.OS)
		if err != nil {
			return false, err
		}
		if !match || !matchFeatures(r.Features, features) {
			continue
		}
		switch r.Action {
		case "disallow":
			return false, nil
		case "allow":
			allowed = true
		default:
			return false, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "rule action must be allow or disallow, got %q", r.Action)
		}
	}
	return allowed, nil
}

func (p Platform) matchOS(r *OSRule) (bool, error) {
	if r == nil {
		return true, nil
	}
	if r.Name != "" && r.Name != p.OS {
		return false, nil
	}
	if r.Arch != "" && r.Arch != p.Arch {
		return false, nil
	}
	if r.Version != "" {
		re, err := regexp.Compile(r.Version)
		if err != nil {
			return false, mcerrors.Wrap(mcerrors.ErrCodeInvalidMetadata, err, "rule os version")
		}
		return re.MatchString(p.Version), nil
	}
	return true, nil
}

func matchFeatures(want, have map[string]bool) bool {
	for name, v := range want {
		if have[name] != v {
			return false
		}
	}
	return true
}
