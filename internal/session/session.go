// Package session runs the poll loop that mirrors player state into presence updates.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/musicrpc/internal/config"
	"github.com/rbright/musicrpc/internal/fsm"
	"github.com/rbright/musicrpc/internal/ipc"
	"github.com/rbright/musicrpc/internal/player"
)

// TickResult describes one poll iteration.
type TickResult struct {
	Action   fsm.Action
	State    fsm.State
	Snapshot player.Snapshot
	Present  bool
	Response ipc.Response
	PollErr  error
}

// Result is the lifecycle summary returned by one Run invocation.
type Result struct {
	State      fsm.State
	Err        error
	Ticks      int
	Announces  int
	Clears     int
	PeerErrors int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Controller owns the engine state and drives one publisher from one source.
type Controller struct {
	logger    *slog.Logger
	source    player.Source
	publisher Publisher
	activity  config.ActivityConfig
	interval  time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	state fsm.State
	stats Result
}

// NewController wires a source and publisher using cfg's activity and interval.
func NewController(logger *slog.Logger, source player.Source, publisher Publisher, cfg config.Config) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = config.Default().PollInterval
	}

	return &Controller{
		logger:    logger,
		source:    source,
		publisher: publisher,
		activity:  cfg.Activity,
		interval:  interval,
		now:       time.Now,
	}
}

// State returns the last committed engine state.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Tick polls once and performs the IPC call the transition requires.
// The engine state only advances once the peer has answered.
func (c *Controller) Tick(ctx context.Context) (TickResult, error) {
	snapshot, present, pollErr := player.Poll(ctx, c.source)
	if err := ctx.Err(); err != nil {
		return TickResult{State: c.State()}, err
	}
	if pollErr != nil {
		c.logger.Debug("player poll failed", "error", pollErr.Error())
	}

	in := fsm.NoObservation()
	if present {
		in = fsm.Observation(snapshot)
	}

	current := c.State()
	next, action := fsm.Transition(current, in)
	result := TickResult{
		Action:   action,
		State:    current,
		Snapshot: snapshot,
		Present:  present,
		PollErr:  pollErr,
	}

	var (
		resp ipc.Response
		err  error
	)
	switch action {
	case fsm.ActionAnnounce:
		resp, err = c.publisher.Announce(ctx, BuildActivity(snapshot, c.activity, c.now()))
	case fsm.ActionClear:
		resp, err = c.publisher.Clear(ctx)
	default:
		c.record(current, action, false)
		return result, nil
	}
	if err != nil {
		c.record(current, fsm.ActionNone, false)
		return result, fmt.Errorf("%s: %w", action, err)
	}

	peerErr := resp.IsError()
	c.record(next, action, peerErr)
	result.State = next
	result.Response = resp

	fields := []any{"action", string(action), "state", next.String()}
	if present {
		fields = append(fields, "playback", string(snapshot.State))
	}
	c.logger.Info("presence updated", fields...)
	if peerErr {
		c.logger.Warn("peer rejected update",
			"action", string(action),
			"opcode", resp.Opcode.String(),
			"response", resp.Raw,
		)
	}
	return result, nil
}

// Run ticks every interval until ctx is cancelled or a tick fails.
// Cancellation is a clean exit; any publisher failure ends the loop.
func (c *Controller) Run(ctx context.Context) Result {
	c.mu.Lock()
	c.stats = Result{StartedAt: time.Now()}
	c.mu.Unlock()

	err := c.loop(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.stats
	result.State = c.state
	result.Err = err
	result.FinishedAt = time.Now()
	return result
}

func (c *Controller) loop(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if _, err := c.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		timer.Reset(c.interval)
	}
}

func (c *Controller) record(next fsm.State, action fsm.Action, peerErr bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = next
	c.stats.Ticks++
	switch action {
	case fsm.ActionAnnounce:
		c.stats.Announces++
	case fsm.ActionClear:
		c.stats.Clears++
	}
	if peerErr {
		c.stats.PeerErrors++
	}
}
