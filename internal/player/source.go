package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// stoppedToken is printed by query commands when nothing is playing.
const stoppedToken = "STOPPED"

// Source queries a player once and returns its raw delimited line.
// An empty line means no playback.
type Source interface {
	Query(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(context.Context) (string, error)

func (f SourceFunc) Query(ctx context.Context) (string, error) {
	return f(ctx)
}

// CommandSource runs an external command whose stdout is the raw line.
type CommandSource struct {
	Argv []string
}

func (s CommandSource) Query(ctx context.Context) (string, error) {
	if len(s.Argv) == 0 {
		return "", errors.New("player command must not be empty")
	}

	cmd := exec.CommandContext(ctx, s.Argv[0], s.Argv[1:]...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		trimmed := strings.TrimSpace(stderr.String())
		if trimmed == "" {
			return "", fmt.Errorf("%s failed: %w", s.Argv[0], err)
		}
		return "", fmt.Errorf("%s failed: %w (%s)", s.Argv[0], err, trimmed)
	}

	line := strings.TrimSpace(string(out))
	if line == stoppedToken {
		return "", nil
	}
	return line, nil
}

// Poll queries src once. ok is false when nothing is playing, when the query
// fails, or when the output is malformed; err carries the reason for logging.
func Poll(ctx context.Context, src Source) (Snapshot, bool, error) {
	raw, err := src.Query(ctx)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("query player: %w", err)
	}
	if raw == "" {
		return Snapshot{}, false, nil
	}

	snapshot, err := Parse(raw)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}
