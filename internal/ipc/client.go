package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

var (
	errHandshakeDone    = errors.New("handshake already performed")
	errHandshakePending = errors.New("handshake required before commands")
)

// Client owns one connected peer socket for its whole lifetime.
//
// Reads and writes carry no timeout; a stalled peer blocks the caller until the
// context passed to the current call is cancelled.
type Client struct {
	conn       net.Conn
	path       string
	pid        uint32
	now        func() time.Time
	handshaken bool
}

// NewClient wraps an already-connected socket.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		pid:  uint32(os.Getpid()),
		now:  time.Now,
	}
}

// Connect discovers the peer socket in dirs and performs the handshake.
func Connect(ctx context.Context, dirs []string, clientID string) (*Client, Response, error) {
	conn, path, err := Discover(ctx, dirs)
	if err != nil {
		return nil, Response{}, err
	}

	client := NewClient(conn)
	client.path = path

	resp, err := client.Handshake(ctx, clientID)
	if err != nil {
		_ = conn.Close()
		return nil, Response{}, err
	}
	return client, resp, nil
}

// Path returns the socket path the client was discovered at, if any.
func (c *Client) Path() string {
	return c.path
}

// Handshake sends the v1 handshake and consumes the peer's reply.
func (c *Client) Handshake(ctx context.Context, clientID string) (Response, error) {
	if c.handshaken {
		return Response{}, errHandshakeDone
	}

	payload, err := json.Marshal(Handshake{V: protocolVersion, ClientID: clientID})
	if err != nil {
		return Response{}, fmt.Errorf("encode handshake: %w", err)
	}

	resp, err := c.roundTrip(ctx, OpHandshake, payload)
	if err != nil {
		return Response{}, fmt.Errorf("handshake: %w", err)
	}
	c.handshaken = true
	return resp, nil
}

// Announce replaces the peer's activity.
func (c *Client) Announce(ctx context.Context, activity Activity) (Response, error) {
	return c.setActivity(ctx, &activity)
}

// Clear removes the peer's activity.
func (c *Client) Clear(ctx context.Context) (Response, error) {
	return c.setActivity(ctx, nil)
}

// Close releases the socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) setActivity(ctx context.Context, activity *Activity) (Response, error) {
	if !c.handshaken {
		return Response{}, errHandshakePending
	}

	cmd := Command{
		Cmd:   CommandSetActivity,
		Nonce: strconv.FormatInt(c.now().Unix(), 10),
		Args: CommandArgs{
			PID:      c.pid,
			Activity: activity,
		},
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return Response{}, fmt.Errorf("encode %s: %w", CommandSetActivity, err)
	}

	resp, err := c.roundTrip(ctx, OpFrame, payload)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", CommandSetActivity, err)
	}
	return resp, nil
}

// roundTrip writes one frame and reads exactly one reply frame.
func (c *Client) roundTrip(ctx context.Context, op Opcode, payload []byte) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	// Cancellation expires the deadline so a blocked read or write returns.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := WriteFrame(c.conn, op, payload); err != nil {
		return Response{}, cancelled(ctx, err)
	}

	replyOp, raw, err := ReadFrame(c.conn)
	if err != nil {
		return Response{}, cancelled(ctx, err)
	}
	return decodeResponse(replyOp, raw), nil
}

func cancelled(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
