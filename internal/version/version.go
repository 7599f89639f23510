// Package version provides build-time version information.
package version

// Set at build time with -ldflags "-X curve-plotter/internal/version.Version=..."
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns "v<Version> (<GitCommit>, built <BuildTime>)".
func String() string {
	return "v" + Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
