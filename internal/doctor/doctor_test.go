package doctor

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/musicrpc/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckConfigMissingFile(t *testing.T) {
	check := checkConfig(config.Loaded{Path: "/nowhere/config.jsonc"})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "using defaults")

	check = checkConfig(config.Loaded{Path: "/etc/config.jsonc", Exists: true})
	require.Contains(t, check.Message, "loaded")
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "player.command")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckSocketFindsListeningSocket(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "discord-ipc-0"), []byte("not a socket"), 0o600))

	listener, err := net.Listen("unix", filepath.Join(dir, "discord-ipc-3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	check := checkSocket([]string{filepath.Join(dir, "missing"), dir})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, filepath.Join(dir, "discord-ipc-3"))
}

func TestCheckSocketMissing(t *testing.T) {
	dir := t.TempDir()

	check := checkSocket([]string{dir})
	require.False(t, check.Pass)
	require.Contains(t, check.Message, dir)
}

func TestRunCommandBackendQueriesPlayer(t *testing.T) {
	binDir := t.TempDir()
	script := "#!/usr/bin/env bash\necho 'Song||Artist||Album||paused||1||2'\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "fake-player"), []byte(script), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("DISCORD_IPC_PATH", t.TempDir())
	t.Setenv("TMPDIR", "")

	cfg := config.Default()
	cfg.Player.Backend = config.BackendCommand
	cfg.Player.Command = config.CommandConfig{Raw: "fake-player", Argv: []string{"fake-player"}}

	report := Run(context.Background(), config.Loaded{Path: "/tmp/config.jsonc", Config: cfg, Exists: true})

	byName := map[string]Check{}
	for _, check := range report.Checks {
		byName[check.Name] = check
	}
	require.True(t, byName["config"].Pass)
	require.Contains(t, byName, "ipc.socket")
	require.True(t, byName["fake-player"].Pass)
	require.True(t, byName["player.query"].Pass)
	require.Equal(t, "paused: Song (Artist • Album)", byName["player.query"].Message)
}

func TestRunCommandBackendReportsMalformedOutput(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "fake-player"), []byte("#!/usr/bin/env bash\necho nonsense\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	cfg := config.Default()
	cfg.Player.Backend = config.BackendCommand
	cfg.Player.Command = config.CommandConfig{Raw: "fake-player", Argv: []string{"fake-player"}}

	checks := checkPlayer(context.Background(), cfg.Player)
	require.Len(t, checks, 2)
	require.False(t, checks[1].Pass)
	require.Contains(t, checks[1].Message, "malformed")
}

func TestCheckPlayerSkipsQueryWhenBinaryMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	checks := checkPlayer(context.Background(), config.Default().Player)
	require.Len(t, checks, 1)
	require.Equal(t, "osascript", checks[0].Name)
	require.False(t, checks[0].Pass)
}

func TestCheckPlayerMPDUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	cfg := config.Default().Player
	cfg.Backend = config.BackendMPD
	cfg.MPD.Address = addr

	checks := checkPlayer(context.Background(), cfg)
	require.Len(t, checks, 2)
	require.True(t, checks[0].Pass)
	require.False(t, checks[1].Pass)
	require.Contains(t, checks[1].Message, "dial mpd")
}
