// Package version exposes the build version string stamped in at link
// time.
package version

import "fmt"

var (
	// version is set via -ldflags on release builds.
	version = "develop"
	// commit is the short git hash, also set via -ldflags.
	commit = ""
)

// Get returns the full version string.
func Get() string {
	if commit == "" {
		return version
	}

	return fmt.Sprintf("%s-%s", version, commit)
}
