package game

import (
	"path"
	"strings"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

// LibrarySpecifier is a maven coordinate,
// group:artifact:version[:classifier][@extension].
type LibrarySpecifier struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string // "jar" when unspecified
}

// ParseLibrarySpecifier parses a maven coordinate.
func ParseLibrarySpecifier(s string) (LibrarySpecifier, error) {
	spec := LibrarySpecifier{Extension: "jar"}
	coord := s
	if i := strings.LastIndexByte(coord, '@'); i >= 0 {
		spec.Extension = coord[i+1:]
		coord = coord[:i]
	}
	parts := strings.SplitN(coord, ":", 4)
	if len(parts) < 3 || spec.Extension == "" {
		return LibrarySpecifier{}, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "invalid library specifier %q", s)
	}
	for _, p := range parts {
		if p == "" {
			return LibrarySpecifier{}, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "invalid library specifier %q", s)
		}
	}
	spec.Group, spec.Artifact, spec.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		spec.Classifier = parts[3]
	}
	return spec, nil
}

func (s LibrarySpecifier) String() string {
	var b strings.Builder
	b.WriteString(s.Group + ":" + s.Artifact + ":" + s.Version)
	if s.Classifier != "" {
		b.WriteString(":" + s.Classifier)
	}
	if s.Extension != "" && s.Extension != "jar" {
		b.WriteString("@" + s.Extension)
	}
	return b.String()
}

// FilePath is the repository-relative path with forward slashes, e.g.
// com/mojang/logging/1.1.1/logging-1.1.1.jar.
func (s LibrarySpecifier) FilePath() string {
	name := s.Artifact + "-" + s.Version
	if s.Classifier != "" {
		name += "-" + s.Classifier
	}
	ext := s.Extension
	if ext == "" {
		ext = "jar"
	}
	return path.Join(strings.ReplaceAll(s.Group, ".", "/"), s.Artifact, s.Version, name+"."+ext)
}
