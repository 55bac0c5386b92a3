package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/fhs/gompd/v2/mpd"
)

// MPDSource queries a Music Player Daemon, one connection per query.
type MPDSource struct {
	Network  string
	Address  string
	Password string
}

func (s MPDSource) Query(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client, err := s.dial()
	if err != nil {
		return "", fmt.Errorf("dial mpd %s %s: %w", s.Network, s.Address, err)
	}
	defer client.Close()

	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	status, err := client.Status()
	if err != nil {
		return "", fmt.Errorf("mpd status: %w", err)
	}
	state := mpdState(status["state"])
	if state == StateStopped {
		return "", nil
	}

	song, err := client.CurrentSong()
	if err != nil {
		return "", fmt.Errorf("mpd currentsong: %w", err)
	}
	if len(song) == 0 {
		return "", nil
	}

	title := strings.TrimSpace(song["Title"])
	if title == "" {
		title = strings.TrimSpace(song["file"])
	}

	duration := status["duration"]
	if duration == "" {
		duration = song["duration"]
	}
	if duration == "" {
		duration = song["Time"]
	}

	snapshot := Snapshot{
		Track:  sanitizeField(title),
		Artist: sanitizeField(song["Artist"]),
		Album:  sanitizeField(song["Album"]),
		State:  state,
	}
	if snapshot.Position, err = optionalSeconds(status["elapsed"]); err != nil {
		return "", fmt.Errorf("mpd elapsed: %w", err)
	}
	if snapshot.Duration, err = optionalSeconds(duration); err != nil {
		return "", fmt.Errorf("mpd duration: %w", err)
	}
	return Format(snapshot), nil
}

func (s MPDSource) dial() (*mpd.Client, error) {
	network := s.Network
	if network == "" {
		network = "tcp"
	}
	if s.Password != "" {
		return mpd.DialAuthenticated(network, s.Address, s.Password)
	}
	return mpd.Dial(network, s.Address)
}

// mpdState maps MPD's play/pause/stop onto the player vocabulary.
func mpdState(value string) State {
	switch value {
	case "play":
		return StatePlaying
	case "pause":
		return StatePaused
	default:
		return StateStopped
	}
}

// sanitizeField keeps tag text from splitting the delimited line.
func sanitizeField(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), "|", "¦")
}

func optionalSeconds(value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return parseSeconds(strings.TrimSpace(value))
}
