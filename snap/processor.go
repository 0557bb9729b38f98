package snap

import (
	"log/slog"
	"time"

	"github.com/snapscroll/snapscroll/input"
)

// Verdict tells the caller what to do with a processed event.
type Verdict uint8

const (
	// VerdictContinue: forward the (possibly rewritten) event downstream.
	VerdictContinue Verdict = iota
	// VerdictStop: the event was consumed; do not forward it.
	VerdictStop
)

// Decision describes what the filter did with one matching event. It is
// delivered to the configured observer for the tap feed and the recorder.
type Decision struct {
	At         time.Time `json:"at"`
	Code       uint16    `json:"code"`
	Raw        int32     `json:"raw"`
	Snapped    int32     `json:"snapped"`
	Detected   Direction `json:"-"`
	Effective  Direction `json:"-"`
	LockActive bool      `json:"locked"`
	Suppressed bool      `json:"suppressed"`
	AbsX       int64     `json:"absX"`
	AbsY       int64     `json:"absY"`
}

// Processor is one classifier instance. It owns all its state and must be
// driven from a single goroutine; events are handled run-to-completion
// with one clock read each.
type Processor struct {
	cfg  Config
	win  window
	lock lockState

	lastEventAt time.Time

	now     func() time.Time
	log     *slog.Logger
	observe func(Decision)
}

// Option configures a Processor at construction.
type Option func(*Processor)

// WithClock overrides the time source. Tests use this to drive the idle
// and duration-lock timers deterministically.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithLogger attaches a logger; snap decisions are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// WithObserver registers a callback invoked after every matching event,
// including suppressed ones. The callback runs on the event path; it must
// not block.
func WithObserver(fn func(Decision)) Option {
	return func(p *Processor) { p.observe = fn }
}

// New builds a Processor. Invalid window sizes are clamped rather than
// rejected; there is nothing else to validate.
func New(cfg Config, opts ...Option) *Processor {
	cfg.normalize()
	p := &Processor{
		cfg: cfg,
		now: time.Now,
		log: slog.New(slog.DiscardHandler),
	}
	p.win.capacity = cfg.RequireNSamples
	for _, o := range opts {
		o(p)
	}
	p.resetAt(p.now())
	return p
}

// Config returns the (normalized) configuration in effect.
func (p *Processor) Config() Config { return p.cfg }

// Reset drops all accumulated state, as if the processor were newly built.
func (p *Processor) Reset() { p.resetAt(p.now()) }

func (p *Processor) resetAt(now time.Time) {
	p.win.reset()
	p.lock.clear()
	p.lastEventAt = now
}

// Process handles one event. Events whose type or code do not match the
// configured axes pass through untouched. Matching events either get
// suppressed (value zeroed, sync cleared, VerdictStop) while signal is
// still accumulating, or have their value rewritten to the snapped
// contribution on their own axis.
func (p *Processor) Process(ev *input.Event) Verdict {
	if ev.Type != p.cfg.EventType {
		return VerdictContinue
	}
	isX := ev.Code == p.cfg.CodeX
	isY := ev.Code == p.cfg.CodeY
	if !isX && !isY {
		return VerdictContinue
	}

	now := p.now()
	if p.cfg.IdleResetTimeout > 0 && now.Sub(p.lastEventAt) >= p.cfg.IdleResetTimeout {
		p.resetAt(now)
	}
	p.lastEventAt = now

	p.lock.expireIfDue(now, p.cfg.LockDuration)

	var dx, dy int32
	if isX {
		dx = ev.Value
	} else {
		dy = ev.Value
	}
	p.win.push(dx, dy)

	raw := ev.Value
	if !p.win.haveEnough(p.cfg.ImmediateSnapThreshold) {
		ev.Value = 0
		ev.Sync = false
		if p.observe != nil {
			p.observe(Decision{
				At: now, Code: ev.Code, Raw: raw, Suppressed: true,
				AbsX: p.win.absX, AbsY: p.win.absY,
			})
		}
		return VerdictStop
	}

	detected := p.classify()
	active := p.lock.active(now, p.cfg.LockDuration)
	decided := detected
	if active {
		decided = p.lock.direction
	}

	var outX, outY int32
	switch decided {
	case DirectionX:
		p.log.Debug("snapping to x axis", "value", p.win.remX)
		outX = p.win.remX
		p.win.remY = 0
	case DirectionY:
		p.log.Debug("snapping to y axis", "value", p.win.remY)
		outY = p.win.remY
		p.win.remX = 0
	case DirectionDiagPlus, DirectionDiagMinus:
		// Detected so the lock can track it, but diagonal scroll has no
		// output representation yet; both axes stay at zero.
		p.log.Debug("diagonal motion detected", "direction", decided.String())
	}

	if isY {
		ev.Value = outY
		p.win.remY = 0
	} else {
		ev.Value = outX
		p.win.remX = 0
	}

	p.lock.update(&p.cfg, detected, decided, active, now)

	if p.observe != nil {
		p.observe(Decision{
			At: now, Code: ev.Code, Raw: raw, Snapped: ev.Value,
			Detected: detected, Effective: decided, LockActive: active,
			AbsX: p.win.absX, AbsY: p.win.absY,
		})
	}
	return VerdictContinue
}

// classify picks a direction from the window's absolute sums. The rules
// run in a fixed order with strict inequalities; ties fall through to the
// next rule and ultimately to DirectionNone.
func (p *Processor) classify() Direction {
	absX, absY := p.win.absX, p.win.absY
	cfg := &p.cfg
	switch {
	case absY*int64(cfg.YThreshold.Den) > absX*int64(cfg.YThreshold.Num):
		return DirectionY
	case absY*int64(cfg.XThreshold.Den) < absX*int64(cfg.XThreshold.Num):
		return DirectionX
	case absX*int64(cfg.XYThreshold.Num) < absY*int64(cfg.XYThreshold.Den) &&
		absY*int64(cfg.XYThreshold.Num) < absX*int64(cfg.XYThreshold.Den):
		if (p.win.remX > 0) == (p.win.remY > 0) {
			return DirectionDiagPlus
		}
		return DirectionDiagMinus
	default:
		return DirectionNone
	}
}
