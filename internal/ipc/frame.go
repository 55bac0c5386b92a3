package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Opcode tags the purpose of one frame.
type Opcode uint32

const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4
)

const (
	headerSize = 8

	// MaxPayloadSize bounds the payload length accepted from a peer header.
	MaxPayloadSize = 16 << 20
)

// ErrIO marks frame transport failures: short reads/writes, disconnects, bad headers.
var ErrIO = errors.New("ipc i/o failure")

type flusher interface {
	Flush() error
}

// WriteFrame writes one opcode/length header followed by payload.
func WriteFrame(w io.Writer, op Opcode, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: write frame: payload of %d bytes exceeds limit", ErrIO, len(payload))
	}

	buf := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[headerSize:], payload)

	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("%w: write frame: %w", ErrIO, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: write frame: %w", ErrIO, io.ErrShortWrite)
	}

	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: flush frame: %w", ErrIO, err)
		}
	}
	return nil
}

// ReadFrame blocks for exactly one frame and returns its opcode and payload text.
//
// Invalid UTF-8 in the payload is replaced rather than rejected.
func ReadFrame(r io.Reader) (Opcode, string, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, "", fmt.Errorf("%w: read frame header: %w", ErrIO, err)
	}

	op := Opcode(binary.LittleEndian.Uint32(header[0:4]))
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > MaxPayloadSize {
		return 0, "", fmt.Errorf("%w: read frame: payload length %d exceeds limit", ErrIO, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, "", fmt.Errorf("%w: read frame payload (%d bytes): %w", ErrIO, length, err)
	}

	return op, strings.ToValidUTF8(string(payload), "\uFFFD"), nil
}

func (op Opcode) String() string {
	switch op {
	case OpHandshake:
		return "handshake"
	case OpFrame:
		return "frame"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(%d)", uint32(op))
	}
}
