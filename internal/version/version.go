// Package version reports the wpactl build stamped in at link time, e.g.
//
//	go build -ldflags "-X github.com/rbright/wpactrl/internal/version.Version=v0.3.0" ./cmd/wpactl
package version

import "runtime"

// Build metadata. Unstamped builds report a dev build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String is the line printed by `wpactl version` and `wpactl --version`.
func String() string {
	return "wpactl " + Version + " (commit=" + Commit + ", date=" + Date + ", go=" + runtime.Version() + ")"
}
