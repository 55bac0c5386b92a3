package player

import (
	"fmt"

	"github.com/rbright/musicrpc/internal/config"
)

// NewSource selects the query source for the configured backend.
func NewSource(cfg config.PlayerConfig) (Source, error) {
	switch cfg.Backend {
	case config.BackendOsascript:
		return NewAppleMusicSource(), nil
	case config.BackendCommand:
		return CommandSource{Argv: cfg.Command.Argv}, nil
	case config.BackendMPD:
		return MPDSource{
			Network:  cfg.MPD.Network,
			Address:  cfg.MPD.Address,
			Password: cfg.MPD.Password,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported player backend %q", cfg.Backend)
	}
}
