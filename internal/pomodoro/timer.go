// Package pomodoro implements the work/break interval timer that drives
// exercise breaks. The timer cycles Work -> Break; entering Break is the
// signal to start an exercise session, and finishing (or skipping) the
// break returns to Work.
package pomodoro

import (
	"context"
	"sync"
	"time"
)

// Phase is the current interval of the timer.
type Phase string

const (
	PhaseIdle  Phase = "idle"
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// Config holds timer configuration.
type Config struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
	// TargetReps is the number of reps that ends a break early.
	TargetReps int
}

// DefaultConfig returns the default timer configuration.
func DefaultConfig() Config {
	return Config{
		WorkDuration:  25 * time.Minute,
		BreakDuration: 5 * time.Minute,
		TargetReps:    10,
	}
}

// Timer is the Pomodoro interval state machine. Transitions happen in
// Tick, which takes an explicit time so tests can drive the clock.
type Timer struct {
	mu         sync.Mutex
	config     Config
	phase      Phase
	phaseStart time.Time
	paused     bool
	pausedAt   time.Time

	// OnPhaseChange is called after every phase transition, without the
	// timer lock held.
	OnPhaseChange func(phase Phase)
}

// NewTimer creates a timer in the idle phase.
func NewTimer(config Config) *Timer {
	return &Timer{
		config: config,
		phase:  PhaseIdle,
	}
}

// Phase returns the current phase.
func (t *Timer) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Remaining returns the time left in the current phase. It is zero
// when the timer is idle.
func (t *Timer) Remaining(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(now)
}

func (t *Timer) remainingLocked(now time.Time) time.Duration {
	var total time.Duration
	switch t.phase {
	case PhaseWork:
		total = t.config.WorkDuration
	case PhaseBreak:
		total = t.config.BreakDuration
	default:
		return 0
	}
	if t.paused {
		now = t.pausedAt
	}
	left := total - now.Sub(t.phaseStart)
	if left < 0 {
		return 0
	}
	return left
}

// Paused reports whether the timer is paused.
func (t *Timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// TargetReps returns the configured break rep target.
func (t *Timer) TargetReps() int {
	return t.config.TargetReps
}

// Start begins a work interval. Starting an already-running timer
// restarts the current phase's clock without re-announcing the phase,
// so downstream phase handlers fire once per actual transition.
func (t *Timer) Start(now time.Time) {
	t.mu.Lock()
	changed := t.phase == PhaseIdle
	if changed {
		t.phase = PhaseWork
	}
	t.phaseStart = now
	t.paused = false
	phase := t.phase
	t.mu.Unlock()

	if changed {
		t.notify(phase)
	}
}

// Pause freezes the remaining time. A no-op when idle or already paused.
func (t *Timer) Pause(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == PhaseIdle || t.paused {
		return
	}
	t.paused = true
	t.pausedAt = now
}

// Resume continues a paused timer, preserving the remaining time.
func (t *Timer) Resume(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	t.phaseStart = t.phaseStart.Add(now.Sub(t.pausedAt))
	t.paused = false
}

// Skip ends the current phase immediately and advances to the next one.
func (t *Timer) Skip(now time.Time) {
	t.mu.Lock()
	if t.phase == PhaseIdle {
		t.mu.Unlock()
		return
	}
	phase := t.advanceLocked(now)
	t.mu.Unlock()

	t.notify(phase)
}

// Stop returns the timer to idle.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.phase == PhaseIdle {
		t.mu.Unlock()
		return
	}
	t.phase = PhaseIdle
	t.paused = false
	t.mu.Unlock()

	t.notify(PhaseIdle)
}

// Tick advances the state machine to the given time, transitioning when
// the current phase has elapsed. It returns the phase after the tick.
func (t *Timer) Tick(now time.Time) Phase {
	t.mu.Lock()
	if t.phase == PhaseIdle || t.paused {
		phase := t.phase
		t.mu.Unlock()
		return phase
	}
	if t.remainingLocked(now) > 0 {
		phase := t.phase
		t.mu.Unlock()
		return phase
	}
	phase := t.advanceLocked(now)
	t.mu.Unlock()

	t.notify(phase)
	return phase
}

func (t *Timer) advanceLocked(now time.Time) Phase {
	switch t.phase {
	case PhaseWork:
		t.phase = PhaseBreak
	case PhaseBreak:
		t.phase = PhaseWork
	}
	t.phaseStart = now
	t.paused = false
	return t.phase
}

func (t *Timer) notify(phase Phase) {
	if t.OnPhaseChange != nil {
		t.OnPhaseChange(phase)
	}
}

// Run ticks the timer every second until the context is cancelled.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Tick(now)
		}
	}
}
