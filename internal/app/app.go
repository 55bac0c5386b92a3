package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rbright/musicrpc/internal/cli"
	"github.com/rbright/musicrpc/internal/config"
	"github.com/rbright/musicrpc/internal/doctor"
	"github.com/rbright/musicrpc/internal/ipc"
	"github.com/rbright/musicrpc/internal/logging"
	"github.com/rbright/musicrpc/internal/player"
	"github.com/rbright/musicrpc/internal/session"
	"github.com/rbright/musicrpc/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("musicrpc"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("musicrpc"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New(parsed.Verbose)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"backend", cfgLoaded.Config.Player.Backend,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandNow:
		return r.commandNow(ctx, cfgLoaded.Config)
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandNow(ctx context.Context, cfg config.Config) int {
	src, err := player.NewSource(cfg.Player)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	snapshot, ok, err := player.Poll(ctx, src)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintln(r.Stdout, "no playback")
		return 0
	}

	fmt.Fprintf(r.Stdout, "track:    %s\n", snapshot.Track)
	fmt.Fprintf(r.Stdout, "artist:   %s\n", snapshot.Artist)
	fmt.Fprintf(r.Stdout, "album:    %s\n", snapshot.Album)
	fmt.Fprintf(r.Stdout, "state:    %s\n", snapshot.State)
	fmt.Fprintf(r.Stdout, "position: %.1fs / %.1fs\n", snapshot.Position, snapshot.Duration)
	return 0
}

func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	src, err := player.NewSource(cfg.Player)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	dirs := ipc.CandidateDirs()
	client, handshake, err := ipc.Connect(ctx, dirs, cfg.ClientID)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("connect failed", "dirs", dirs, "error", err.Error())
		return 1
	}
	defer func() { _ = client.Close() }()

	logger.Info("connected",
		"socket", client.Path(),
		"opcode", handshake.Opcode.String(),
		"event", handshake.Evt,
	)
	if handshake.IsError() {
		fmt.Fprintf(r.Stderr, "error: handshake rejected: %s\n", handshake.Raw)
		logger.Error("handshake rejected", "response", handshake.Raw)
		return 1
	}
	fmt.Fprintf(r.Stdout, "connected: %s\n", client.Path())

	controller := session.NewController(logger, src, client, cfg)
	result := controller.Run(ctx)
	logSessionResult(logger, result)

	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	return 0
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State.String(),
		"ticks", result.Ticks,
		"announces", result.Announces,
		"clears", result.Clears,
		"peer_errors", result.PeerErrors,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	}

	if result.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}
