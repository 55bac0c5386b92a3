package player

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Delimiter separates the six fields of a raw player line.
const Delimiter = "||"

const fieldCount = 6

// ErrMalformed reports a raw player line that cannot be turned into a Snapshot.
var ErrMalformed = errors.New("malformed player output")

// Parse decodes "track||artist||album||state||position||duration".
// Fields beyond the sixth are ignored.
func Parse(raw string) (Snapshot, error) {
	parts := strings.Split(raw, Delimiter)
	if len(parts) < fieldCount {
		return Snapshot{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformed, fieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	position, err := parseSeconds(parts[4])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: position: %w", ErrMalformed, err)
	}
	duration, err := parseSeconds(parts[5])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: duration: %w", ErrMalformed, err)
	}

	return Snapshot{
		Track:    parts[0],
		Artist:   parts[1],
		Album:    parts[2],
		State:    ParseState(parts[3]),
		Position: position,
		Duration: duration,
	}, nil
}

// Format renders a Snapshot in the raw line form accepted by Parse.
func Format(s Snapshot) string {
	return strings.Join([]string{
		s.Track,
		s.Artist,
		s.Album,
		string(s.State),
		strconv.FormatFloat(s.Position, 'f', -1, 64),
		strconv.FormatFloat(s.Duration, 'f', -1, 64),
	}, Delimiter)
}

// parseSeconds accepts "," as a decimal separator.
func parseSeconds(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid seconds value %q", value)
	}
	if v > MaxSeconds {
		return 0, fmt.Errorf("seconds value %q exceeds %d", value, int64(MaxSeconds))
	}
	return v, nil
}
