// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/librarybuilder/internal/version.Version=v1.0.0"
package version

import "fmt"

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders version, commit and build time on one line.
func String() string {
	return fmt.Sprintf("librarybuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
