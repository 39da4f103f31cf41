// Package version exposes the build-time version string printed by the
// --version flag.
package version

// Build-time variables (override via -ldflags -X ...).
var (
	Version = "v0.1.0"
	Commit  = ""
)

// String renders the version for CLI output.
func String() string {
	s := Version
	if Commit != "" {
		s += " (" + Commit + ")"
	}
	return s
}
