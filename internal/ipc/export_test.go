package ipc

import "time"

var (
	ErrHandshakeDone    = errHandshakeDone
	ErrHandshakePending = errHandshakePending
)

// SetClock pins the nonce clock of c.
func SetClock(c *Client, now func() time.Time) {
	c.now = now
}
