package config

import "time"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		ClientID:     "1470151628547031280",
		PollInterval: 3 * time.Second,
		Activity: ActivityConfig{
			Name:       "Apple Music",
			Type:       2,
			LargeImage: "am_icon_001",
		},
		Player: PlayerConfig{
			Backend: BackendOsascript,
			MPD: MPDConfig{
				Network: "tcp",
				Address: "127.0.0.1:6600",
			},
		},
	}
}
