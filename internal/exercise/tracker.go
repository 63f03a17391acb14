package exercise

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// SitHoldDuration is how long the user must stay inside the sitting zone
// before the bottom of a repetition is confirmed.
const SitHoldDuration = 300 * time.Millisecond

// State is a phase of the sit-to-stand repetition cycle.
type State string

const (
	StateStanding   State = "standing"
	StateGoingDown  State = "going_down"
	StateHoldingSit State = "holding_sit"
	StateSitting    State = "sitting"
	StateGoingUp    State = "going_up"
)

// Tracker counts sit-to-stand repetitions against a calibrated reference
// pair. It advances through the five-state cycle Standing -> GoingDown ->
// HoldingSit -> Sitting -> GoingUp -> Standing; a repetition is counted
// exactly once per full cycle that passed through a confirmed Sitting
// state. Frames without a hip height hold the current state.
//
// Process runs on the pipeline goroutine; Reset, Scores and the other
// accessors arrive from HTTP and tray goroutines. A mutex guards the
// cycle state, and callbacks fire after the lock is released so they may
// call back in.
type Tracker struct {
	cal    *Calibration
	audio  Announcer
	photos PhotoTaker

	mu       sync.Mutex
	state    State
	repCount int

	// Per-rep extrema on the calibrated travel axis (0 = sitting
	// reference, 1 = standing reference).
	minProgress float64
	maxProgress float64

	holdStart         time.Time
	sittingPhotoTaken bool

	lastScore int
	scores    []int

	// OnRep is invoked after each completed repetition.
	OnRep func(count, score int)
	// OnStateChange is invoked after every state transition.
	OnStateChange func(state State)
}

// NewTracker creates a Tracker using cal. audio and photos may be nil.
func NewTracker(cal *Calibration, audio Announcer, photos PhotoTaker) *Tracker {
	return &Tracker{
		cal:    cal,
		audio:  audio,
		photos: photos,
		state:  StateStanding,
	}
}

// State returns the current cycle phase.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RepCount returns the number of repetitions completed this session.
func (t *Tracker) RepCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repCount
}

// LastScore returns the quality score of the most recent repetition.
func (t *Tracker) LastScore() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastScore
}

// Scores returns the quality scores of all repetitions this session.
func (t *Tracker) Scores() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, len(t.scores))
	copy(out, t.scores)
	return out
}

// Reset starts a fresh session: the count returns to zero and the cycle
// restarts from Standing.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.repCount = 0
	t.lastScore = 0
	t.scores = nil
	t.sittingPhotoTaken = false
	changed := t.state != StateStanding
	t.state = StateStanding
	t.mu.Unlock()

	if changed && t.OnStateChange != nil {
		t.OnStateChange(StateStanding)
	}
}

// Process feeds one frame while an exercise session is active. Frames
// arriving before calibration, or without a hip height, are absorbed
// without a state change.
func (t *Tracker) Process(snap *pose.Snapshot, now time.Time) {
	if !t.cal.IsCalibrated() {
		return
	}
	hipY, ok := snap.HipY()
	if !ok {
		return
	}
	p := t.cal.Progress(hipY)

	t.mu.Lock()
	var (
		entered  State
		changed  bool
		beep     bool
		photoRep int
		photoPos PhotoPosition
		photo    bool
		repNum   int
		repScore int
		repDone  bool
	)
	enter := func(s State) {
		if t.state != s {
			t.state = s
			entered = s
			changed = true
		}
	}

	switch t.state {
	case StateStanding:
		if p < Hysteresis {
			t.minProgress = p
			t.maxProgress = p
			t.sittingPhotoTaken = false
			enter(StateGoingDown)
		}

	case StateGoingDown:
		t.minProgress = math.Min(t.minProgress, p)
		if p <= 1-Hysteresis {
			t.holdStart = now
			enter(StateHoldingSit)
		} else if p >= Hysteresis {
			// Stood back up before reaching the bottom: no rep.
			enter(StateStanding)
		}

	case StateHoldingSit:
		t.minProgress = math.Min(t.minProgress, p)
		if p > 1-Hysteresis {
			enter(StateGoingDown)
		} else if now.Sub(t.holdStart) >= SitHoldDuration {
			enter(StateSitting)
			beep = true
			if !t.sittingPhotoTaken {
				t.sittingPhotoTaken = true
				photo = true
				photoRep = t.repCount + 1
				photoPos = PhotoSitting
			}
		}

	case StateSitting:
		t.minProgress = math.Min(t.minProgress, p)
		if p > 1-Hysteresis {
			t.maxProgress = p
			enter(StateGoingUp)
		}

	case StateGoingUp:
		t.maxProgress = math.Max(t.maxProgress, p)
		if p >= Hysteresis {
			repScore = Score(t.minProgress, t.maxProgress)
			t.repCount++
			repNum = t.repCount
			t.lastScore = repScore
			t.scores = append(t.scores, repScore)
			repDone = true
			photo = true
			photoRep = repNum
			photoPos = PhotoStanding
			enter(StateStanding)
		} else if p <= 1-Hysteresis {
			// Dropped back down: the bottom must be held again.
			t.holdStart = now
			enter(StateHoldingSit)
		}
	}
	t.mu.Unlock()

	if beep && t.audio != nil {
		t.audio.Beep()
	}
	if repDone && t.audio != nil {
		t.audio.SpeakAfterCurrent(fmt.Sprintf("%d, %d percent", repNum, repScore))
	}
	if photo && t.photos != nil {
		t.photos.RequestPhoto(photoRep, photoPos)
	}
	if repDone {
		if t.OnRep != nil {
			t.OnRep(repNum, repScore)
		}
		log.Printf("Rep %d completed with score %d", repNum, repScore)
	}
	if changed && t.OnStateChange != nil {
		t.OnStateChange(entered)
	}
}
