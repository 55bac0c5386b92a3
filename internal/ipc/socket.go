package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

const (
	socketPrefix    = "discord-ipc-"
	socketSlotCount = 10
	fallbackDir     = "/tmp"
)

// ErrNotFound reports that no socket candidate accepted a connection.
var ErrNotFound = errors.New("could not find discord ipc socket")

// CandidateDirs returns discovery directories in priority order:
// DISCORD_IPC_PATH, TMPDIR, then /tmp. Overrides are used verbatim; unset or
// empty ones are skipped.
func CandidateDirs() []string {
	dirs := make([]string, 0, 3)
	for _, name := range []string{"DISCORD_IPC_PATH", "TMPDIR"} {
		if dir := os.Getenv(name); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return append(dirs, fallbackDir)
}

// SocketCandidates expands dirs into discord-ipc-0..9 paths, in probe order.
func SocketCandidates(dirs []string) []string {
	paths := make([]string, 0, len(dirs)*socketSlotCount)
	for _, dir := range dirs {
		for i := 0; i < socketSlotCount; i++ {
			paths = append(paths, filepath.Join(dir, fmt.Sprintf("%s%d", socketPrefix, i)))
		}
	}
	return paths
}

// Discover connects to the first existing candidate that accepts a connection.
func Discover(ctx context.Context, dirs []string) (net.Conn, string, error) {
	var dialer net.Dialer
	for _, path := range SocketCandidates(dirs) {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		conn, err := dialer.DialContext(ctx, "unix", path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			continue
		}
		return conn, path, nil
	}

	return nil, "", fmt.Errorf("%w (searched %s)", ErrNotFound, strings.Join(dirs, ", "))
}
