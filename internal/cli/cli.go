package cli

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandNow     Command = "now"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandNow:     {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Verbose    bool
	ShowHelp   bool
}

// Parse reads flags anywhere on the line and at most one command.
// No command means run.
func Parse(args []string) (Parsed, error) {
	var (
		parsed      Parsed
		showHelp    bool
		showVersion bool
	)

	fs := flag.NewFlagSet("musicrpc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	fs.BoolVarP(&parsed.Verbose, "verbose", "v", false, "log at debug level")
	fs.BoolVarP(&showHelp, "help", "h", false, "show help")
	fs.BoolVar(&showVersion, "version", false, "show version")

	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}

	rest := fs.Args()
	parsed.Command = CommandRun
	if len(rest) > 0 {
		cmd := Command(rest[0])
		if _, ok := validCommands[cmd]; !ok {
			return Parsed{}, fmt.Errorf("unknown command: %s", rest[0])
		}
		if len(rest) > 1 {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", rest[0])
		}
		parsed.Command = cmd
	}

	switch {
	case showHelp || parsed.Command == CommandHelp:
		parsed.Command = CommandHelp
		parsed.ShowHelp = true
	case showVersion:
		parsed.Command = CommandVersion
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [command]

Commands:
  run       Connect to the chat client and mirror playback (default)
  now       Query the player once and print the parsed snapshot
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/musicrpc/config.jsonc)
  -v, --verbose   Log at debug level
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
