package snap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapscroll/snapscroll/input"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time               { return c.t }
func (c *fakeClock) advance(d time.Duration)      { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock                    { return &fakeClock{t: time.Unix(1000, 0)} }
func newProc(cfg Config, c *fakeClock) *Processor { return New(cfg, WithClock(c.now)) }

func relEvent(code uint16, value int32) *input.Event {
	return &input.Event{Type: input.EvRel, Code: code, Value: value, Sync: true}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.IdleResetTimeout = 0
	return cfg
}

func TestNonMatchingEventsPassThrough(t *testing.T) {
	p := newProc(testConfig(), newFakeClock())

	ev := &input.Event{Type: input.EvKey, Code: 30, Value: 1, Sync: true}
	assert.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(1), ev.Value)
	assert.True(t, ev.Sync)

	ev = relEvent(input.RelX, 5)
	assert.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(5), ev.Value)
	assert.Zero(t, p.win.count, "pass-through events must not enter the window")
}

func TestSuppressionGate(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 4
	cfg.ImmediateSnapThreshold = 100
	p := newProc(cfg, newFakeClock())

	for i := 0; i < 3; i++ {
		ev := relEvent(input.RelWheel, 1)
		assert.Equal(t, VerdictStop, p.Process(ev), "event %d", i)
		assert.Zero(t, ev.Value)
		assert.False(t, ev.Sync)
	}

	ev := relEvent(input.RelWheel, 1)
	assert.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(4), ev.Value, "snapped value collapses the accumulated remainder")
	assert.True(t, ev.Sync)
}

func TestImmediateSnapBypassesWindow(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 8
	cfg.ImmediateSnapThreshold = 25
	p := newProc(cfg, newFakeClock())

	ev := relEvent(input.RelWheel, 30)
	assert.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(30), ev.Value)
}

func TestDurationLockHysteresis(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 1
	cfg.LockDuration = 500 * time.Millisecond
	clock := newFakeClock()
	p := newProc(cfg, clock)

	// Decide X and start the lock.
	ev := relEvent(input.RelHWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(10), ev.Value)
	assert.Equal(t, DirectionX, p.lock.direction)

	// Within the lock window, instantaneous Y classification is overridden:
	// the vertical event emits nothing while the lock holds X.
	clock.advance(100 * time.Millisecond)
	ev = relEvent(input.RelWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))
	assert.Zero(t, ev.Value)
	assert.Equal(t, DirectionX, p.lock.direction)

	// Mismatching events do not refresh the deadline. 500ms after the
	// lock started it expires and Y motion flows again.
	clock.advance(450 * time.Millisecond)
	ev = relEvent(input.RelWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(10), ev.Value)
	assert.Equal(t, DirectionY, p.lock.direction, "a fresh Y decision starts a new lock")
}

func TestDurationLockRefreshOnMatch(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 1
	cfg.LockDuration = 500 * time.Millisecond
	clock := newFakeClock()
	p := newProc(cfg, clock)

	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))
	deadline := p.lock.expiresAt

	// A redundant X classification pushes the deadline forward.
	clock.advance(300 * time.Millisecond)
	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))
	assert.Equal(t, deadline.Add(300*time.Millisecond), p.lock.expiresAt)

	// Still locked 700ms after the original deadline would have passed.
	clock.advance(400 * time.Millisecond)
	ev := relEvent(input.RelWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))
	assert.Zero(t, ev.Value)
}

func TestCountLockDecrementAndRelease(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 1
	cfg.LockForNextNEvents = 3
	p := newProc(cfg, newFakeClock())

	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))
	require.Equal(t, 3, p.lock.eventsRemaining)

	// Three consecutive mismatches release on the third.
	for i, wantRemaining := range []int{2, 1, 0} {
		ev := relEvent(input.RelWheel, 10)
		require.Equal(t, VerdictContinue, p.Process(ev))
		assert.Zero(t, ev.Value, "event %d still held to X", i)
		assert.Equal(t, wantRemaining, p.lock.eventsRemaining)
	}
	assert.Equal(t, DirectionNone, p.lock.direction)

	ev := relEvent(input.RelWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))
	assert.Equal(t, int32(10), ev.Value, "released lock lets Y flow")
}

func TestCountLockResetOnMatch(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 1
	cfg.LockForNextNEvents = 3
	p := newProc(cfg, newFakeClock())

	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))
	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelWheel, 10)))
	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelWheel, 10)))
	assert.Equal(t, 1, p.lock.eventsRemaining)

	// A matching event restores the full count.
	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))
	assert.Equal(t, 3, p.lock.eventsRemaining)
}

func TestCombinedLocksDoNotDecrementOnMismatch(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 1
	cfg.LockDuration = 500 * time.Millisecond
	cfg.LockForNextNEvents = 3
	clock := newFakeClock()
	p := newProc(cfg, clock)

	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))
	require.Equal(t, 3, p.lock.eventsRemaining)

	// With the duration timer configured alongside the count timer,
	// mismatching events leave the count untouched.
	for i := 0; i < 5; i++ {
		clock.advance(10 * time.Millisecond)
		require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelWheel, 10)))
	}
	assert.Equal(t, 3, p.lock.eventsRemaining)
	assert.Equal(t, DirectionX, p.lock.direction)

	// Expiry of the duration timer releases everything at once.
	clock.advance(time.Second)
	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelWheel, 10)))
	assert.Equal(t, DirectionY, p.lock.direction)
}

func TestIdleResetBehavesLikeFirstEvent(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 4
	cfg.ImmediateSnapThreshold = 100
	cfg.IdleResetTimeout = 200 * time.Millisecond
	cfg.LockForNextNEvents = 3
	clock := newFakeClock()
	p := newProc(cfg, clock)

	for i := 0; i < 3; i++ {
		clock.advance(10 * time.Millisecond)
		p.Process(relEvent(input.RelWheel, 1))
	}
	require.Equal(t, 3, p.win.count)

	// The gap wipes the window; the next event is a first event again
	// and gets suppressed instead of completing the old window.
	clock.advance(250 * time.Millisecond)
	ev := relEvent(input.RelWheel, 1)
	assert.Equal(t, VerdictStop, p.Process(ev))
	assert.Equal(t, 1, p.win.count)
	assert.Equal(t, DirectionNone, p.lock.direction)
	assert.Equal(t, int32(1), p.win.remY)
}

func TestRemainderClearing(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 2
	cfg.ImmediateSnapThreshold = 100
	p := newProc(cfg, newFakeClock())

	// One small X event, then a dominant Y event completing the window.
	require.Equal(t, VerdictStop, p.Process(relEvent(input.RelHWheel, 1)))
	ev := relEvent(input.RelWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))

	assert.Equal(t, int32(10), ev.Value)
	assert.Zero(t, p.win.remY, "emitting axis remainder cleared exactly")
	assert.Zero(t, p.win.remX, "a Y snap drops the orthogonal remainder")
}

func TestLockedCrossAxisEventEmitsNothing(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 1
	cfg.LockDuration = 500 * time.Millisecond
	clock := newFakeClock()
	p := newProc(cfg, clock)

	require.Equal(t, VerdictContinue, p.Process(relEvent(input.RelHWheel, 10)))

	// Locked to X, a vertical event is forwarded with a zero value and
	// its remainder is dropped rather than carried over.
	clock.advance(50 * time.Millisecond)
	ev := relEvent(input.RelWheel, 7)
	require.Equal(t, VerdictContinue, p.Process(ev))
	assert.Zero(t, ev.Value)
	assert.Zero(t, p.win.remY)
	assert.Equal(t, DirectionX, p.lock.direction)
}

func TestDiagonalEmitsNothingButLocks(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 2
	cfg.ImmediateSnapThreshold = 100
	cfg.LockForNextNEvents = 2
	p := newProc(cfg, newFakeClock())

	// Equal motion on both axes lands in the diagonal band.
	require.Equal(t, VerdictStop, p.Process(relEvent(input.RelHWheel, 10)))
	ev := relEvent(input.RelWheel, 10)
	require.Equal(t, VerdictContinue, p.Process(ev))

	assert.Zero(t, ev.Value, "diagonal motion has no output representation")
	assert.Equal(t, DirectionDiagPlus, p.lock.direction, "but it participates in lock bookkeeping")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		absX, absY int64
		remX, remY int32
		want       Direction
	}{
		{name: "pure vertical", absY: 10, remY: 10, want: DirectionY},
		{name: "pure horizontal", absX: 10, remX: 10, want: DirectionX},
		{name: "vertical dominance", absX: 4, absY: 9, remY: 9, want: DirectionY},
		{name: "horizontal dominance", absX: 9, absY: 4, remX: 9, want: DirectionX},
		{name: "diagonal same sign", absX: 10, absY: 10, remX: 5, remY: 5, want: DirectionDiagPlus},
		{name: "diagonal opposite sign", absX: 10, absY: 10, remX: 5, remY: -5, want: DirectionDiagMinus},
		{name: "ambiguous dead zone", absX: 10, absY: 14, remY: 14, want: DirectionNone},
		{name: "no motion at all", want: DirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testConfig())
			p.win.absX, p.win.absY = tt.absX, tt.absY
			p.win.remX, p.win.remY = tt.remX, tt.remY
			assert.Equal(t, tt.want, p.classify())
		})
	}
}

func TestClassifyTiesFallThrough(t *testing.T) {
	// With 1/1 thresholds everywhere, exact equality matches no rule:
	// the inequalities are strict, so ties land in the dead zone.
	cfg := testConfig()
	cfg.XThreshold = Ratio{Num: 1, Den: 1}
	cfg.YThreshold = Ratio{Num: 1, Den: 1}
	cfg.XYThreshold = Ratio{Num: 1, Den: 1}
	p := New(cfg)
	p.win.absX, p.win.absY = 10, 10
	assert.Equal(t, DirectionNone, p.classify())
}

func TestObserverSeesSuppressedAndEmitted(t *testing.T) {
	cfg := testConfig()
	cfg.RequireNSamples = 2
	cfg.ImmediateSnapThreshold = 100

	var got []Decision
	clock := newFakeClock()
	p := New(cfg, WithClock(clock.now), WithObserver(func(d Decision) { got = append(got, d) }))

	p.Process(relEvent(input.RelWheel, 1))
	p.Process(relEvent(input.RelWheel, 2))

	require.Len(t, got, 2)
	assert.True(t, got[0].Suppressed)
	assert.Equal(t, int32(1), got[0].Raw)
	assert.False(t, got[1].Suppressed)
	assert.Equal(t, int32(2), got[1].Raw)
	assert.Equal(t, int32(3), got[1].Snapped)
	assert.Equal(t, DirectionY, got[1].Effective)
}

func BenchmarkProcess(b *testing.B) {
	cfg := testConfig()
	cfg.RequireNSamples = 8
	cfg.LockDuration = 250 * time.Millisecond
	p := New(cfg)
	ev := relEvent(input.RelWheel, 3)
	for b.Loop() {
		ev.Type = input.EvRel
		ev.Code = input.RelWheel
		ev.Value = 3
		ev.Sync = true
		p.Process(ev)
	}
}
