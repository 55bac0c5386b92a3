// Package player models polled playback snapshots and the sources that produce them.
package player

import (
	"math"
	"time"
)

// State is the closed set of playback states.
type State string

const (
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// ParseState maps a player token to a State. Unrecognized tokens are Stopped.
func ParseState(token string) State {
	switch token {
	case "playing":
		return StatePlaying
	case "paused":
		return StatePaused
	default:
		return StateStopped
	}
}

// Identity is the track key used for change detection; position never participates.
type Identity struct {
	Track  string
	Artist string
	Album  string
}

// Snapshot is one polled observation of player state.
type Snapshot struct {
	Track    string
	Artist   string
	Album    string
	State    State
	Position float64
	Duration float64
}

func (s Snapshot) Identity() Identity {
	return Identity{Track: s.Track, Artist: s.Artist, Album: s.Album}
}

// Subtitle renders "artist • album", or just the artist when album is empty.
func (s Snapshot) Subtitle() string {
	if s.Album == "" {
		return s.Artist
	}
	return s.Artist + " • " + s.Album
}

// Timestamps reconstructs progress-bar start/end in unix seconds.
// ok is false unless the snapshot is Playing.
func (s Snapshot) Timestamps(now time.Time) (start, end int64, ok bool) {
	if s.State != StatePlaying {
		return 0, 0, false
	}
	start = now.Unix() - wholeSeconds(s.Position)
	end = start + wholeSeconds(s.Duration)
	return start, end, true
}

// MaxSeconds bounds positions and durations; it is longer than any track.
const MaxSeconds = 1 << 32

// wholeSeconds floors v and clamps it to [0, MaxSeconds] so the conversion to
// int64 never depends on the platform.
func wholeSeconds(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= MaxSeconds:
		return MaxSeconds
	default:
		return int64(math.Floor(v))
	}
}
