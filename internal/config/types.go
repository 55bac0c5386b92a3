// Package config resolves, parses, validates, and defaults musicrpc configuration.
package config

import "time"

// Player backends.
const (
	BackendOsascript = "osascript"
	BackendCommand   = "command"
	BackendMPD       = "mpd"
)

// Config is the fully materialized runtime configuration used by musicrpc.
type Config struct {
	ClientID     string
	PollInterval time.Duration
	Activity     ActivityConfig
	Player       PlayerConfig
}

// ActivityConfig holds the fixed parts of every announced activity.
type ActivityConfig struct {
	Name       string
	Type       int
	LargeImage string
}

// PlayerConfig selects and configures the playback query source.
type PlayerConfig struct {
	Backend string
	Command CommandConfig
	MPD     MPDConfig
}

// MPDConfig addresses a Music Player Daemon.
type MPDConfig struct {
	Network  string
	Address  string
	Password string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
