package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/snapscroll/snapscroll/input"
)

// TraceLogger emits one line per event crossing the filter, evtest-style,
// for tuning thresholds by eye.
type TraceLogger interface {
	Event(stage string, ev input.Event)
}

type traceLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTrace creates a TraceLogger. A nil writer yields a no-op logger.
func NewTrace(w io.Writer) TraceLogger {
	return &traceLogger{w: w}
}

// Event logs one event. stage is "in", "out" or "drop".
func (t *traceLogger) Event(stage string, ev input.Event) {
	if t.w == nil {
		return
	}
	line := fmt.Sprintf("%s %-4s %s %+d\n",
		time.Now().Format("15:04:05.000"),
		stage,
		input.CodeName(ev.Code),
		ev.Value)

	t.mu.Lock()
	_, _ = io.WriteString(t.w, line)
	t.mu.Unlock()
}
