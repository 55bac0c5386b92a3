// Package version carries build metadata stamped in by -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders a single line suitable for `musicrpc version`.
func String() string {
	return fmt.Sprintf("musicrpc %s (commit=%s, date=%s, go=%s, %s/%s)",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
