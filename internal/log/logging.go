// Package log builds the daemon's slog.Logger and the raw event trace
// writer. Without a log file, non-error levels go to stdout and errors to
// stderr so the two streams can be redirected independently.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace sits below debug; at this level the per-event trace is also
// mirrored to stdout.
const LevelTrace slog.Level = -8

func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout delivers every record to all handlers that accept its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r)
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// band restricts a handler to a half-open level range.
type band struct {
	min, max slog.Level // max is exclusive; use maxLevel for "no upper bound"
	h        slog.Handler
}

const maxLevel slog.Level = 127

func (b band) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= b.min && level < b.max && b.h.Enabled(ctx, level)
}

func (b band) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < b.min || r.Level >= b.max {
		return nil
	}
	return b.h.Handle(ctx, r)
}

func (b band) WithAttrs(attrs []slog.Attr) slog.Handler {
	return band{min: b.min, max: b.max, h: b.h.WithAttrs(attrs)}
}

func (b band) WithGroup(name string) slog.Handler {
	return band{min: b.min, max: b.max, h: b.h.WithGroup(name)}
}

// Setup builds the logger. With a file path the file receives everything
// at the configured level and the console only errors; without one the
// console carries everything, split across stdout/stderr.
func Setup(levelName, file string) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(levelName)

	if file == "" {
		out := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		errs := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})
		h := fanout{
			band{min: level, max: slog.LevelError, h: out},
			band{min: slog.LevelError, max: maxLevel, h: errs},
		}
		return slog.New(h), nil, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	h := fanout{
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}),
		band{min: slog.LevelError, max: maxLevel, h: slog.NewTextHandler(os.Stderr, nil)},
	}
	return slog.New(h), f, nil
}
