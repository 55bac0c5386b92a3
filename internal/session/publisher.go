package session

import (
	"context"
	"time"

	"github.com/rbright/musicrpc/internal/config"
	"github.com/rbright/musicrpc/internal/ipc"
	"github.com/rbright/musicrpc/internal/player"
)

// Publisher pushes presence updates to the peer. *ipc.Client implements it.
type Publisher interface {
	Announce(context.Context, ipc.Activity) (ipc.Response, error)
	Clear(context.Context) (ipc.Response, error)
}

// BuildActivity renders one snapshot as a SET_ACTIVITY activity.
// Timestamps are only attached while playing.
func BuildActivity(snapshot player.Snapshot, fixed config.ActivityConfig, now time.Time) ipc.Activity {
	activity := ipc.Activity{
		Name:    fixed.Name,
		Type:    uint8(fixed.Type),
		Details: snapshot.Track,
		State:   snapshot.Subtitle(),
		Assets:  ipc.Assets{LargeImage: fixed.LargeImage},
	}
	if start, end, ok := snapshot.Timestamps(now); ok {
		activity.Timestamps = &ipc.Timestamps{Start: start, End: end}
	}
	return activity
}
