// Package fsm decides which presence update, if any, each poll requires.
package fsm

import (
	"fmt"

	"github.com/rbright/musicrpc/internal/player"
)

// Action is the IPC call a transition requires.
type Action string

const (
	ActionNone     Action = "none"
	ActionAnnounce Action = "announce"
	ActionClear    Action = "clear"
)

// State is the last announced identity and playback state.
// The zero value is cleared.
type State struct {
	Identity *player.Identity
	Playback *player.State
}

// Cleared reports whether no activity is currently announced.
func (s State) Cleared() bool {
	return s.Identity == nil && s.Playback == nil
}

func (s State) String() string {
	if s.Cleared() {
		return "cleared"
	}
	return fmt.Sprintf("announced(%s / %s / %s, %s)", s.Identity.Track, s.Identity.Artist, s.Identity.Album, *s.Playback)
}

// matches reports whether s already announces snapshot's identity and state.
func (s State) matches(snapshot player.Snapshot) bool {
	if s.Cleared() {
		return false
	}
	return *s.Identity == snapshot.Identity() && *s.Playback == snapshot.State
}

// Input is one poll result: a snapshot, or no playback.
type Input struct {
	Snapshot player.Snapshot
	Present  bool
}

func Observation(snapshot player.Snapshot) Input {
	return Input{Snapshot: snapshot, Present: true}
}

func NoObservation() Input {
	return Input{}
}

// Transition returns the next state and the action needed to reach it.
func Transition(current State, in Input) (State, Action) {
	if !in.Present {
		if current.Cleared() {
			return current, ActionNone
		}
		return State{}, ActionClear
	}

	if current.matches(in.Snapshot) {
		return current, ActionNone
	}
	return announced(in.Snapshot), ActionAnnounce
}

func announced(snapshot player.Snapshot) State {
	identity := snapshot.Identity()
	playback := snapshot.State
	return State{Identity: &identity, Playback: &playback}
}
