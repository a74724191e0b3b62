/*
Package version provides build information for delta-ego.

Values are set via ldflags during build:

	go build -ldflags "-X github.com/khanglvm/delta-ego/internal/version.Version=v0.3.0 \
	  -X github.com/khanglvm/delta-ego/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/delta-ego/internal/version.Date=$(date -u +%Y-%m-%d)"

Unset values leave a "dev" build.
*/
package version

import "runtime"

var (
	// Version is the release tag (e.g., v0.3.0)
	Version = "dev"
	// Commit is the short git commit hash
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// Info is the build information in structured form.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String formats the information for --version output.
func (i Info) String() string {
	if i.Version == "dev" {
		return i.Version + " (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}
