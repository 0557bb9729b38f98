package snap

import "time"

// lockState holds a decided direction across events. The duration timer
// and the event-count timer are independent fields rather than variants;
// both can be armed at once and are expired/decremented under separate
// rules.
type lockState struct {
	direction       Direction
	expiresAt       time.Time
	eventsRemaining int
}

func (l *lockState) clear() {
	l.direction = DirectionNone
	l.expiresAt = time.Time{}
	l.eventsRemaining = 0
}

// expireIfDue releases the lock entirely when the duration deadline has
// passed, regardless of the event-count timer. Runs before classification.
func (l *lockState) expireIfDue(now time.Time, lockDuration time.Duration) {
	if l.direction == DirectionNone || lockDuration <= 0 || l.expiresAt.IsZero() {
		return
	}
	if !now.Before(l.expiresAt) {
		l.clear()
	}
}

// active reports whether the lock currently overrides classification.
func (l *lockState) active(now time.Time, lockDuration time.Duration) bool {
	if lockDuration > 0 && l.direction != DirectionNone && l.expiresAt.After(now) {
		return true
	}
	return l.eventsRemaining > 0
}

// update applies the post-decision transition for one event. detected is
// the direction the classifier just computed, decided the direction that
// was actually emitted (the held one while the lock was active).
//
// A matching detection re-arms every configured timer. A mismatch only
// consumes the event-count timer when duration locking is not configured;
// with both configured, only expiry or a matching refresh changes state.
func (l *lockState) update(cfg *Config, detected, decided Direction, wasActive bool, now time.Time) {
	durationLock := cfg.LockDuration > 0
	countLock := cfg.LockForNextNEvents > 0

	if !durationLock && !countLock {
		l.clear()
		return
	}

	if wasActive {
		if detected != DirectionNone && detected == l.direction {
			if durationLock {
				l.expiresAt = now.Add(cfg.LockDuration)
			}
			if countLock {
				l.eventsRemaining = cfg.LockForNextNEvents
			}
			return
		}
		if !durationLock && l.eventsRemaining > 0 {
			l.eventsRemaining--
			if l.eventsRemaining == 0 {
				l.direction = DirectionNone
			}
		}
		return
	}

	if decided == DirectionNone {
		return
	}
	if durationLock {
		l.direction = decided
		l.expiresAt = now.Add(cfg.LockDuration)
		l.eventsRemaining = 0
	}
	if countLock {
		l.direction = decided
		l.eventsRemaining = cfg.LockForNextNEvents
	}
}
