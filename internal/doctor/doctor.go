// Package doctor runs runtime readiness diagnostics for config, the peer socket, and the player.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rbright/musicrpc/internal/config"
	"github.com/rbright/musicrpc/internal/ipc"
	"github.com/rbright/musicrpc/internal/player"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config, socket, and player checks for a loaded config.
// The peer socket is only inspected, never dialed.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}
	checks = append(checks, checkSocket(ipc.CandidateDirs()))
	checks = append(checks, checkPlayer(ctx, cfg.Config.Player)...)
	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	if !cfg.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", cfg.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)}
}

// checkSocket reports the first candidate path that exists as a unix socket.
func checkSocket(dirs []string) Check {
	for _, path := range ipc.SocketCandidates(dirs) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSocket == 0 {
			continue
		}
		return Check{Name: "ipc.socket", Pass: true, Message: fmt.Sprintf("found %s", path)}
	}
	return Check{
		Name:    "ipc.socket",
		Pass:    false,
		Message: fmt.Sprintf("no discord-ipc-[0-9] socket in %s", strings.Join(dirs, ", ")),
	}
}

func checkPlayer(ctx context.Context, cfg config.PlayerConfig) []Check {
	var binary Check
	switch cfg.Backend {
	case config.BackendOsascript:
		binary = checkBinary("osascript", "Apple Music is queried through osascript")
	case config.BackendCommand:
		binary = checkCommand(cfg.Command.Argv, "player.command")
	case config.BackendMPD:
		binary = Check{Name: "mpd", Pass: true, Message: fmt.Sprintf("%s %s", cfg.MPD.Network, cfg.MPD.Address)}
	default:
		return []Check{{Name: "player.backend", Pass: false, Message: fmt.Sprintf("unsupported backend %q", cfg.Backend)}}
	}
	if !binary.Pass {
		return []Check{binary}
	}
	return []Check{binary, checkQuery(ctx, cfg)}
}

// checkQuery polls the player once so query and parse failures surface here
// instead of silently reading as "no playback".
func checkQuery(ctx context.Context, cfg config.PlayerConfig) Check {
	src, err := player.NewSource(cfg)
	if err != nil {
		return Check{Name: "player.query", Pass: false, Message: err.Error()}
	}

	snapshot, ok, err := player.Poll(ctx, src)
	switch {
	case err != nil:
		return Check{Name: "player.query", Pass: false, Message: err.Error()}
	case !ok:
		return Check{Name: "player.query", Pass: true, Message: "no playback"}
	default:
		return Check{Name: "player.query", Pass: true, Message: fmt.Sprintf(
			"%s: %s (%s)", snapshot.State, snapshot.Track, snapshot.Subtitle(),
		)}
	}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}
