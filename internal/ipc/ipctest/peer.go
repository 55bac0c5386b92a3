// Package ipctest runs a framed chat-client peer for tests.
package ipctest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/rbright/musicrpc/internal/ipc"
)

// Request is one frame received by the peer.
type Request struct {
	Opcode  ipc.Opcode
	Payload string
}

// Reply is the frame the peer writes back.
type Reply struct {
	Opcode  ipc.Opcode
	Payload []byte
}

// Handler answers frames on the peer side of the protocol.
type Handler interface {
	Handle(context.Context, Request) Reply
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Reply

func (f HandlerFunc) Handle(ctx context.Context, req Request) Reply {
	return f(ctx, req)
}

// ReadyPeer answers a handshake with READY and echoes commands back with their nonce.
var ReadyPeer = HandlerFunc(func(_ context.Context, req Request) Reply {
	if req.Opcode == ipc.OpHandshake {
		payload, _ := json.Marshal(map[string]any{
			"cmd":  "DISPATCH",
			"evt":  ipc.EventReady,
			"data": map[string]any{"v": 1},
		})
		return Reply{Opcode: ipc.OpFrame, Payload: payload}
	}

	var cmd ipc.Command
	if err := json.Unmarshal([]byte(req.Payload), &cmd); err != nil {
		payload, _ := json.Marshal(map[string]any{
			"evt":  ipc.EventError,
			"data": map[string]any{"message": fmt.Sprintf("decode command: %v", err)},
		})
		return Reply{Opcode: ipc.OpFrame, Payload: payload}
	}

	payload, _ := json.Marshal(map[string]any{
		"cmd":   cmd.Cmd,
		"nonce": cmd.Nonce,
		"evt":   nil,
		"data":  cmd.Args.Activity,
	})
	return Reply{Opcode: ipc.OpFrame, Payload: payload}
})

// Serve answers frames on listener until ctx is cancelled or the listener closes.
// Each connection is answered frame by frame until the client disconnects.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()

			stop := context.AfterFunc(ctx, func() { _ = c.Close() })
			defer stop()

			for {
				op, payload, err := ipc.ReadFrame(c)
				if err != nil {
					return
				}
				reply := handler.Handle(ctx, Request{Opcode: op, Payload: payload})
				if err := ipc.WriteFrame(c, reply.Opcode, reply.Payload); err != nil {
					return
				}
			}
		}(conn)
	}
}

// Start serves handler on a unix socket at path for the rest of the test and
// returns every frame the peer receives, in arrival order.
func Start(t testing.TB, path string, handler Handler) <-chan Request {
	t.Helper()

	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen %s: %v", path, err)
	}

	requests := make(chan Request, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, listener, HandlerFunc(func(ctx context.Context, req Request) Reply {
			requests <- req
			return handler.Handle(ctx, req)
		}))
	}()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve peer: %v", err)
		}
	})
	return requests
}
