// Package remote accepts scroll deltas over TCP from companion clients
// (for example a phone acting as a scroll pad) and feeds them into the
// filter pipeline. Sessions are authenticated and encrypted with a
// pre-shared key.
package remote

import (
	"encoding/binary"
	"io"
)

// FrameSize is the wire size of one delta frame: axis code (u16 LE)
// followed by the signed delta value (s32 LE).
const FrameSize = 6

// Frame is one relative delta reported by a remote client.
type Frame struct {
	Code  uint16
	Value int32
}

// MarshalBinary encodes the frame into its 6-byte wire form.
func (f Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint16(b[0:], f.Code)
	binary.LittleEndian.PutUint32(b[2:], uint32(f.Value))
	return b, nil
}

// UnmarshalBinary decodes a 6-byte wire frame.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return io.ErrUnexpectedEOF
	}
	f.Code = binary.LittleEndian.Uint16(data[0:])
	f.Value = int32(binary.LittleEndian.Uint32(data[2:]))
	return nil
}

// hello is the first encrypted payload a client sends; it lets the server
// fail fast with a clear log line when the keys do not match, instead of
// misreading garbage as deltas.
var hello = []byte{'s', 'n', 'a', 'p', 1}
