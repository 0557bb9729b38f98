// Package input defines the event model shared by sources, the snap
// filter and sinks: a Linux-style (type, code, value) triple plus a sync
// flag marking the end of a hardware report.
package input

import "fmt"

// Event types (linux/input-event-codes.h).
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
	EvAbs uint16 = 0x03
)

// Relative axis codes.
const (
	RelX      uint16 = 0x00
	RelY      uint16 = 0x01
	RelHWheel uint16 = 0x06
	RelWheel  uint16 = 0x08
)

// SYN codes.
const (
	SynReport uint16 = 0x00
)

// Event is a single input event. Sync reports whether the event terminates
// a hardware report; sinks emit a SYN_REPORT after events with Sync set.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
	Sync  bool
}

func (e Event) String() string {
	return fmt.Sprintf("type=%#x code=%#x value=%d sync=%t", e.Type, e.Code, e.Value, e.Sync)
}

// relNames maps the relative codes this project cares about to evtest-style
// names for logs and the tap feed.
var relNames = map[uint16]string{
	RelX:      "REL_X",
	RelY:      "REL_Y",
	RelHWheel: "REL_HWHEEL",
	RelWheel:  "REL_WHEEL",
}

// CodeName returns the symbolic name of a relative axis code, or a hex
// rendering for codes it does not know.
func CodeName(code uint16) string {
	if n, ok := relNames[code]; ok {
		return n
	}
	return fmt.Sprintf("%#x", code)
}
