package snap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/snapscroll/snapscroll/input"
)

// maxWindowSamples caps the ring buffer; RequireNSamples is clamped to it.
const maxWindowSamples = 64

// Ratio is a rational threshold. Comparisons are done by
// cross-multiplication so no division (and no floating point) is involved.
type Ratio struct {
	Num uint32
	Den uint32
}

func (r Ratio) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// MarshalText renders the ratio as "num/den" for config files.
func (r Ratio) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText parses "num/den". A bare integer is accepted as "n/1".
func (r *Ratio) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 32)
	if err != nil {
		return fmt.Errorf("ratio %q: %w", s, err)
	}
	d := uint64(1)
	if found {
		d, err = strconv.ParseUint(strings.TrimSpace(den), 10, 32)
		if err != nil {
			return fmt.Errorf("ratio %q: %w", s, err)
		}
	}
	r.Num = uint32(n)
	r.Den = uint32(d)
	return nil
}

// Config holds the filter tuning, fixed at construction time.
//
// The three threshold ratios carve the abs-sum plane into regions:
// Y wins when absY*YThreshold.Den > absX*YThreshold.Num, X wins when
// absY*XThreshold.Den < absX*XThreshold.Num, and the motion counts as
// diagonal when both ratios sit inside the XYThreshold band. Anything
// else is ambiguous and emits nothing.
type Config struct {
	XThreshold  Ratio `help:"X wins when absX*num exceeds absY*den" default:"1/2"`
	YThreshold  Ratio `help:"Y wins when absY*den exceeds absX*num" default:"2/1"`
	XYThreshold Ratio `help:"Band (num/den .. den/num) treated as diagonal" default:"3/4"`

	RequireNSamples        int   `help:"Events to accumulate before a direction decision" default:"8"`
	ImmediateSnapThreshold int64 `help:"Accumulated magnitude that decides immediately, skipping the sample window" default:"25"`

	LockDuration       time.Duration `help:"Hold a decided axis for this long; 0 disables" default:"0"`
	LockForNextNEvents int           `help:"Hold a decided axis for this many further events; 0 disables" default:"0"`
	IdleResetTimeout   time.Duration `help:"Pause after which all accumulated state is dropped; 0 disables" default:"500ms"`

	EventType uint16 `help:"Event type to act on" default:"2"`
	CodeX     uint16 `help:"Horizontal axis code" default:"6"`
	CodeY     uint16 `help:"Vertical axis code" default:"8"`
}

// DefaultConfig returns the tuning used when nothing is configured:
// 2x dominance per axis, an eight-sample window and a 500ms idle reset,
// acting on REL_HWHEEL/REL_WHEEL.
func DefaultConfig() Config {
	return Config{
		XThreshold:             Ratio{Num: 1, Den: 2},
		YThreshold:             Ratio{Num: 2, Den: 1},
		XYThreshold:            Ratio{Num: 3, Den: 4},
		RequireNSamples:        8,
		ImmediateSnapThreshold: 25,
		IdleResetTimeout:       500 * time.Millisecond,
		EventType:              input.EvRel,
		CodeX:                  input.RelHWheel,
		CodeY:                  input.RelWheel,
	}
}

// normalize clamps values that are preconditions rather than tuning.
// RequireNSamples must be at least 1 (ring indexing) and no more than
// the compile-time buffer size.
func (c *Config) normalize() {
	if c.RequireNSamples < 1 {
		c.RequireNSamples = 1
	}
	if c.RequireNSamples > maxWindowSamples {
		c.RequireNSamples = maxWindowSamples
	}
	if c.LockDuration < 0 {
		c.LockDuration = 0
	}
	if c.LockForNextNEvents < 0 {
		c.LockForNextNEvents = 0
	}
	if c.IdleResetTimeout < 0 {
		c.IdleResetTimeout = 0
	}
}
