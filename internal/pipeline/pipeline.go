// Package pipeline moves events from a source through the snap filter
// into a sink, one report frame at a time.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/snapscroll/snapscroll/input"
	logpkg "github.com/snapscroll/snapscroll/internal/log"
	"github.com/snapscroll/snapscroll/snap"
)

// EventReader is a blocking source of raw events. evdev.Device satisfies it.
type EventReader interface {
	ReadEvent() (input.Event, error)
}

// Sink consumes filtered events. uinput.Device satisfies it.
type Sink interface {
	WriteEvent(input.Event) error
	Sync() error
}

// Pipeline drives one processor instance. All processing happens on the
// calling goroutine; the processor needs no further serialization.
type Pipeline struct {
	Proc   *snap.Processor
	Sink   Sink
	Logger *slog.Logger
	Trace  logpkg.TraceLogger
}

// RunDevice consumes a raw evdev stream. Events are grouped into report
// frames at SYN_REPORT boundaries; the last event of each frame carries
// the sync flag so the sink flushes once per frame.
func (p *Pipeline) RunDevice(ctx context.Context, src EventReader) error {
	frame := make([]input.Event, 0, 8)
	for {
		ev, err := src.ReadEvent()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ev.Type == input.EvSyn {
			if ev.Code == input.SynReport && len(frame) > 0 {
				p.handleFrame(frame)
				frame = frame[:0]
			}
			continue
		}
		frame = append(frame, ev)
	}
}

// ReadFrames groups a raw evdev stream into report frames and delivers
// them on the channel. Used when several sources feed one processor: the
// readers fan in to a frames channel and a single Run call consumes it,
// keeping the processor single-threaded.
func ReadFrames(ctx context.Context, src EventReader, frames chan<- []input.Event) error {
	frame := make([]input.Event, 0, 8)
	for {
		ev, err := src.ReadEvent()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ev.Type == input.EvSyn {
			if ev.Code == input.SynReport && len(frame) > 0 {
				out := make([]input.Event, len(frame))
				copy(out, frame)
				select {
				case frames <- out:
				case <-ctx.Done():
					return nil
				}
				frame = frame[:0]
			}
			continue
		}
		frame = append(frame, ev)
	}
}

// Run consumes whole frames until the channel closes or ctx is done.
func (p *Pipeline) Run(ctx context.Context, frames <-chan []input.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			p.handleFrame(frame)
		}
	}
}

// RunChannel consumes events delivered by value (the remote source).
// Each event is its own report frame.
func (p *Pipeline) RunChannel(ctx context.Context, events <-chan input.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleFrame([]input.Event{ev})
		}
	}
}

func (p *Pipeline) handleFrame(frame []input.Event) {
	flushed := false
	forwarded := false
	for i := range frame {
		ev := &frame[i]
		ev.Sync = i == len(frame)-1
		p.Trace.Event("in", *ev)

		if p.Proc.Process(ev) == snap.VerdictStop {
			p.Trace.Event("drop", *ev)
			continue
		}
		if err := p.Sink.WriteEvent(*ev); err != nil {
			p.Logger.Error("sink write failed", "error", err)
			return
		}
		p.Trace.Event("out", *ev)
		forwarded = true
		flushed = ev.Sync
	}
	// The frame's closing event may have been suppressed while earlier
	// events were forwarded; flush so they are not held back.
	if forwarded && !flushed {
		if err := p.Sink.Sync(); err != nil {
			p.Logger.Error("sink sync failed", "error", err)
		}
	}
}
