// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/mcinstall/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/mcinstall/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/mcinstall/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Unstamped builds report these values.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies app in HTTP requests, e.g. "mcinstall/v0.3.0".
// Development builds append the commit.
func UserAgent(app string) string {
	if Version == "dev" && Commit != "none" {
		return fmt.Sprintf("%s/dev+%s", app, Commit)
	}
	return app + "/" + Version
}
