package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxActivityType = 5

	// The peer rate-limits SET_ACTIVITY; faster polls only add local work.
	minRecommendedPollInterval = time.Second
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, fmt.Errorf("client_id must not be empty")
	}
	for _, r := range clientID {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("client_id must be numeric")
		}
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval_ms must be > 0")
	}
	if cfg.PollInterval < minRecommendedPollInterval {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"poll_interval_ms=%d is below %d; activity updates may be rate limited",
			cfg.PollInterval.Milliseconds(), minRecommendedPollInterval.Milliseconds(),
		)})
	}

	if strings.TrimSpace(cfg.Activity.Name) == "" {
		return nil, fmt.Errorf("activity.name must not be empty")
	}
	if cfg.Activity.Type < 0 || cfg.Activity.Type > maxActivityType {
		return nil, fmt.Errorf("activity.type must be between 0 and %d", maxActivityType)
	}
	if strings.TrimSpace(cfg.Activity.LargeImage) == "" {
		warnings = append(warnings, Warning{Message: "activity.large_image is empty; no artwork will be shown"})
	}

	switch cfg.Player.Backend {
	case BackendOsascript:
	case BackendCommand:
		if len(cfg.Player.Command.Argv) == 0 {
			return nil, fmt.Errorf("player.command must not be empty when player.backend=command")
		}
	case BackendMPD:
		network := cfg.Player.MPD.Network
		if network != "tcp" && network != "unix" {
			return nil, fmt.Errorf("player.mpd.network must be one of: tcp, unix")
		}
		if strings.TrimSpace(cfg.Player.MPD.Address) == "" {
			return nil, fmt.Errorf("player.mpd.address must not be empty when player.backend=mpd")
		}
	case "":
		return nil, fmt.Errorf("player.backend must not be empty")
	default:
		return nil, fmt.Errorf("player.backend must be one of: osascript, command, mpd")
	}

	if cfg.Player.Backend != BackendCommand && len(cfg.Player.Command.Argv) > 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"player.command is ignored when player.backend=%s", cfg.Player.Backend,
		)})
	}

	return warnings, nil
}
