package exercise

import "time"

// Debounce timing defaults.
const (
	// HoldToConfirm is how long a gesture must be continuously held before
	// it fires.
	HoldToConfirm = 1500 * time.Millisecond
	// ReleaseToReset is how long a gesture must be continuously released
	// before the next hold is accepted, once a release has been required.
	ReleaseToReset = 500 * time.Millisecond
)

// Debouncer turns a noisy per-frame boolean into a single confirmed event.
// A gesture fires once after being continuously true for the hold duration;
// any false reading before that discards the partial hold. After
// RequireRelease is called, all true readings are ignored until the signal
// has been continuously false for the release duration.
//
// Debouncer is purely a function of the input stream and the supplied
// clock; it performs no side effects.
type Debouncer struct {
	holdDuration    time.Duration
	releaseDuration time.Duration

	holding       bool
	holdStart     time.Time
	confirmed     bool
	resetRequired bool
	releasing     bool
	releaseStart  time.Time
}

// NewDebouncer creates a Debouncer with the default hold and release times.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		holdDuration:    HoldToConfirm,
		releaseDuration: ReleaseToReset,
	}
}

// Update feeds one frame's predicate value. It returns true exactly once
// per qualifying hold, at the moment the hold duration elapses.
func (d *Debouncer) Update(active bool, now time.Time) bool {
	if d.resetRequired {
		if active {
			d.releasing = false
			return false
		}
		if !d.releasing {
			d.releasing = true
			d.releaseStart = now
			return false
		}
		if now.Sub(d.releaseStart) >= d.releaseDuration {
			d.resetRequired = false
			d.releasing = false
		}
		return false
	}

	if !active {
		// No partial credit: a single false reading discards the hold.
		d.holding = false
		d.confirmed = false
		return false
	}

	if !d.holding {
		d.holding = true
		d.holdStart = now
		return false
	}

	if d.confirmed {
		return false
	}

	if now.Sub(d.holdStart) >= d.holdDuration {
		d.confirmed = true
		return true
	}
	return false
}

// RequireRelease makes the debouncer ignore the gesture until it has been
// visibly released for the release duration. Callers invoke this after
// acting on a confirmed event.
func (d *Debouncer) RequireRelease() {
	d.resetRequired = true
	d.releasing = false
	d.holding = false
	d.confirmed = false
}

// Reset clears all debouncer state, including a pending release requirement.
func (d *Debouncer) Reset() {
	d.holding = false
	d.confirmed = false
	d.resetRequired = false
	d.releasing = false
}
