package ipc

import "encoding/json"

const (
	protocolVersion = 1

	CommandSetActivity = "SET_ACTIVITY"
	EventReady         = "READY"
	EventError         = "ERROR"
)

// Handshake is the opcode-0 payload sent once per connection.
type Handshake struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

// Command is the opcode-1 request envelope.
type Command struct {
	Cmd   string      `json:"cmd"`
	Nonce string      `json:"nonce"`
	Args  CommandArgs `json:"args"`
}

// CommandArgs carries the SET_ACTIVITY arguments. A nil Activity clears presence.
type CommandArgs struct {
	PID      uint32    `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}

// Activity is the rich-presence payload rendered by the peer.
type Activity struct {
	Name       string      `json:"name"`
	Type       uint8       `json:"type"`
	Details    string      `json:"details"`
	State      string      `json:"state"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     Assets      `json:"assets"`
}

// Timestamps drive the peer's progress bar, in unix seconds.
type Timestamps struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type Assets struct {
	LargeImage string `json:"large_image"`
}

// Response is one peer reply, decoded best-effort.
type Response struct {
	Opcode Opcode          `json:"-"`
	Raw    string          `json:"-"`
	Cmd    string          `json:"cmd,omitempty"`
	Evt    string          `json:"evt,omitempty"`
	Nonce  string          `json:"nonce,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// IsError reports whether the peer rejected the request.
func (r Response) IsError() bool {
	return r.Evt == EventError || r.Opcode == OpClose
}

func decodeResponse(op Opcode, raw string) Response {
	resp := Response{}
	_ = json.Unmarshal([]byte(raw), &resp)
	resp.Opcode = op
	resp.Raw = raw
	return resp
}
