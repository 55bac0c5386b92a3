package ipc

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		op      Opcode
		payload string
	}{
		{name: "handshake", op: OpHandshake, payload: `{"v":1,"client_id":"42"}`},
		{name: "command", op: OpFrame, payload: `{"cmd":"SET_ACTIVITY","nonce":"1","args":{"pid":7}}`},
		{name: "empty payload", op: OpPing, payload: ""},
		{name: "multibyte", op: OpFrame, payload: `{"state":"Artist • Album"}`},
		{name: "large opcode", op: Opcode(0xdeadbeef), payload: "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tc.op, []byte(tc.payload)))
			require.Equal(t, headerSize+len(tc.payload), buf.Len())

			op, payload, err := ReadFrame(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.op, op)
			require.Equal(t, tc.payload, payload)
			require.Zero(t, buf.Len())
		})
	}
}

func TestWriteFrameHeaderIsLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, OpFrame, []byte("abc")))

	require.Equal(t, []byte{1, 0, 0, 0, 3, 0, 0, 0, 'a', 'b', 'c'}, buf.Bytes())
}

func TestWriteFrameFlushesBufferedWriter(t *testing.T) {
	var sink bytes.Buffer
	w := bufio.NewWriter(&sink)

	require.NoError(t, WriteFrame(w, OpHandshake, []byte("{}")))
	require.Equal(t, headerSize+2, sink.Len())
}

func TestWriteFrameShortWriteFails(t *testing.T) {
	err := WriteFrame(shortWriter{}, OpFrame, []byte("payload"))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriteFrameClosedConnectionFails(t *testing.T) {
	client, server := net.Pipe()
	require.NoError(t, server.Close())
	require.NoError(t, client.Close())

	err := WriteFrame(client, OpFrame, []byte("payload"))
	require.ErrorIs(t, err, ErrIO)
}

func TestReadFrameShortHeaderFails(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		_, _ = server.Write([]byte{1, 0, 0, 0})
		_ = server.Close()
	}()

	op, payload, err := ReadFrame(client)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Zero(t, op)
	require.Empty(t, payload)
}

func TestReadFrameShortPayloadFails(t *testing.T) {
	frame := make([]byte, headerSize, headerSize+3)
	binary.LittleEndian.PutUint32(frame[0:4], uint32(OpFrame))
	binary.LittleEndian.PutUint32(frame[4:8], 10)
	frame = append(frame, "abc"...)

	_, payload, err := ReadFrame(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrIO)
	require.Contains(t, err.Error(), "read frame payload")
	require.Empty(t, payload)
}

func TestReadFrameEmptyStreamFails(t *testing.T) {
	_, _, err := ReadFrame(bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	frame := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(frame[4:8], MaxPayloadSize+1)

	_, _, err := ReadFrame(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrIO)
	require.Contains(t, err.Error(), "exceeds limit")
}

func TestReadFrameReplacesInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, OpFrame, []byte{'o', 'k', 0xff, '!'}))

	_, payload, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, "ok�!", payload)
}

func TestReadFrameConsumesExactlyOneFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, OpFrame, []byte("first")))
	require.NoError(t, WriteFrame(&buf, OpClose, []byte("second")))

	_, first, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, "first", first)

	op, second, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, OpClose, op)
	require.Equal(t, "second", second)
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "handshake", OpHandshake.String())
	require.Equal(t, "frame", OpFrame.String())
	require.Equal(t, "opcode(9)", Opcode(9).String())
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}
