package snap

// sample is one event's contribution; the axis the event did not report
// on is zero.
type sample struct {
	dx int32
	dy int32
}

// window is a fixed-capacity ring of the most recent samples with
// incrementally maintained per-axis absolute sums and signed remainders.
// No allocation happens after construction; the backing array is sized
// at the compile-time maximum and only the first capacity slots are used.
type window struct {
	samples  [maxWindowSamples]sample
	head     int
	count    int
	capacity int

	// absX/absY are the sums of |dx|/|dy| over the samples currently in
	// the ring. Kept in int64 so no realistic input can overflow them.
	absX int64
	absY int64

	// remX/remY accumulate signed motion not yet attributed to an axis.
	// Cleared per axis when that axis's snapped value is emitted.
	remX int32
	remY int32
}

func (w *window) reset() {
	for i := range w.samples[:w.capacity] {
		w.samples[i] = sample{}
	}
	w.head = 0
	w.count = 0
	w.absX = 0
	w.absY = 0
	w.remX = 0
	w.remY = 0
}

// push records one event's delta. When the ring is full the sample under
// the write cursor is evicted first, keeping the absolute sums exact.
func (w *window) push(dx, dy int32) {
	if w.count >= w.capacity {
		old := w.samples[w.head]
		w.absX -= abs64(old.dx)
		w.absY -= abs64(old.dy)
	} else {
		w.count++
	}
	w.samples[w.head] = sample{dx: dx, dy: dy}
	w.absX += abs64(dx)
	w.absY += abs64(dy)
	w.remX += dx
	w.remY += dy
	w.head = (w.head + 1) % w.capacity
}

// haveEnough reports whether a direction decision may be made: either the
// window has filled once since the last reset, or a single axis already
// accumulated more than the immediate-snap threshold (strict).
func (w *window) haveEnough(immediateSnapThreshold int64) bool {
	return w.count >= w.capacity ||
		w.absX > immediateSnapThreshold ||
		w.absY > immediateSnapThreshold
}

func abs64(v int32) int64 {
	if v < 0 {
		return -int64(v)
	}
	return int64(v)
}
