// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/telemetry-lab/stackdiagrams/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/telemetry-lab/stackdiagrams/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/telemetry-lab/stackdiagrams/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/stackdiagrams
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information reported by the preview server.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the stamped build information.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
