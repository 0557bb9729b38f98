package input

import (
	"encoding/binary"
	"io"
)

// RawEventSize is the size of a struct input_event on 64-bit Linux:
// two 8-byte timeval fields, then type (u16), code (u16), value (s32).
const RawEventSize = 24

// MarshalRaw encodes an event into the 24-byte kernel wire format.
// The timestamp fields are left zero; the kernel fills them in on write
// to a uinput device.
func MarshalRaw(e Event) []byte {
	b := make([]byte, RawEventSize)
	binary.LittleEndian.PutUint16(b[16:], e.Type)
	binary.LittleEndian.PutUint16(b[18:], e.Code)
	binary.LittleEndian.PutUint32(b[20:], uint32(e.Value))
	return b
}

// UnmarshalRaw decodes one kernel input_event. The Sync flag is not part
// of the wire format; readers derive it from a following SYN_REPORT.
func UnmarshalRaw(b []byte) (Event, error) {
	if len(b) < RawEventSize {
		return Event{}, io.ErrUnexpectedEOF
	}
	return Event{
		Type:  binary.LittleEndian.Uint16(b[16:]),
		Code:  binary.LittleEndian.Uint16(b[18:]),
		Value: int32(binary.LittleEndian.Uint32(b[20:])),
	}, nil
}
