package version

import "fmt"

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String formats the build info for the version command.
func String() string {
	return fmt.Sprintf("idscan %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
