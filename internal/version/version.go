package version

// Build metadata injected via -ldflags at build time, e.g.
//
//	-X rawplay/internal/version.Version=v0.3.0 -X rawplay/internal/version.GitCommit=$(git rev-parse --short HEAD)
var (
    // Version is the release tag; "dev" for local builds.
    Version = "dev"
    // BuildNumber is a monotonically increasing string set by the build script.
    BuildNumber = "0"
    // GitCommit is the short commit hash if available; may be "unknown".
    GitCommit = "unknown"
)

// String returns a concise version string for logs/CLI.
func String() string {
    if GitCommit == "unknown" || GitCommit == "" {
        return Version + " build " + BuildNumber
    }
    return Version + " build " + BuildNumber + " (" + GitCommit + ")"
}
