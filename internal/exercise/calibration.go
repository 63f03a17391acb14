package exercise

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// Hysteresis is the fraction of the calibrated travel range a user must
// cover before the opposite zone registers. The sitting and standing zones
// each extend only (1-Hysteresis) of the range past their extremum, so
// postural jitter near the midpoint never triggers a transition.
const Hysteresis = 0.85

// Calibration holds the two reference hip heights learned by a completed
// calibration pass. The zero value is not calibrated. Safe for concurrent
// use: the pipeline goroutine reads it while HTTP handlers clear or
// replace it.
type Calibration struct {
	mu           sync.RWMutex
	sittingHipY  float64
	standingHipY float64
	calibrated   bool
}

// Set records a reference pair and marks the record calibrated. Equal
// values are rejected since they leave no travel range.
func (c *Calibration) Set(sittingHipY, standingHipY float64) error {
	if sittingHipY == standingHipY {
		return fmt.Errorf("calibration: sitting and standing hip heights are equal (%.3f)", sittingHipY)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sittingHipY = sittingHipY
	c.standingHipY = standingHipY
	c.calibrated = true
	return nil
}

// Clear invalidates the record. Clearing an already-clear record is a no-op.
func (c *Calibration) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sittingHipY = 0
	c.standingHipY = 0
	c.calibrated = false
}

// IsCalibrated reports whether both references are set.
func (c *Calibration) IsCalibrated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calibrated
}

// Values returns the stored reference pair.
func (c *Calibration) Values() (sittingHipY, standingHipY float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sittingHipY, c.standingHipY
}

// Progress maps a hip height onto the calibrated travel axis: 0 at the
// sitting reference, 1 at the standing reference. Values outside [0,1]
// indicate travel beyond a calibrated extremum. The mapping is independent
// of which extremum has the numerically larger coordinate.
func (c *Calibration) Progress(hipY float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.progressLocked(hipY)
}

func (c *Calibration) progressLocked(hipY float64) float64 {
	return (hipY - c.sittingHipY) / (c.standingHipY - c.sittingHipY)
}

// InSittingZone reports whether hipY is within the hysteresis zone around
// the sitting reference. Always false before calibration.
func (c *Calibration) InSittingZone(hipY float64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.calibrated {
		return false
	}
	return c.progressLocked(hipY) <= 1-Hysteresis
}

// InStandingZone reports whether hipY is within the hysteresis zone around
// the standing reference. Always false before calibration.
func (c *Calibration) InStandingZone(hipY float64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.calibrated {
		return false
	}
	return c.progressLocked(hipY) >= Hysteresis
}

// PositionPercent returns the user's position between the calibrated
// extrema as 0-100, clamped. Returns 0 and false before calibration.
func (c *Calibration) PositionPercent(hipY float64) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.calibrated {
		return 0, false
	}
	return clamp01(c.progressLocked(hipY)) * 100, true
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// CalibrationState is a state of the calibration protocol.
type CalibrationState string

const (
	CalibrationNotCalibrated   CalibrationState = "not_calibrated"
	CalibrationWaitingForReady CalibrationState = "waiting_for_ready"
	CalibrationWaitingForSit   CalibrationState = "waiting_for_sit"
	CalibrationWaitingForStand CalibrationState = "waiting_for_stand"
	CalibrationDone            CalibrationState = "calibrated"
)

// Calibrator drives the user through the two-phase calibration protocol.
// Each step is advanced by one debounced hands-on-hips gesture carrying a
// valid hip height. A pass in progress never touches the active Calibration
// until it completes; cancelling mid-pass leaves the previous calibration
// (and its persisted values) intact.
//
// Process runs on the pipeline goroutine while Start, Cancel and Clear
// arrive from HTTP and tray goroutines; a mutex guards the pass state.
// Callbacks fire after the lock is released and may call back in.
type Calibrator struct {
	cal       *Calibration
	store     CalibrationStore
	audio     Announcer
	debouncer *Debouncer

	mu             sync.Mutex
	state          CalibrationState
	pendingSitting float64

	// OnStateChange is invoked after every state transition.
	OnStateChange func(state CalibrationState)
	// OnMessage is invoked with each user-facing instruction.
	OnMessage func(message string)
}

// NewCalibrator creates a Calibrator operating on cal. store and audio may
// be nil, in which case persistence and speech are skipped.
func NewCalibrator(cal *Calibration, store CalibrationStore, audio Announcer) *Calibrator {
	state := CalibrationNotCalibrated
	if cal.IsCalibrated() {
		state = CalibrationDone
	}
	return &Calibrator{
		cal:       cal,
		store:     store,
		audio:     audio,
		debouncer: NewDebouncer(),
		state:     state,
	}
}

// State returns the current calibration state.
func (c *Calibrator) State() CalibrationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether a calibration pass is in progress.
func (c *Calibrator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return activeState(c.state)
}

func activeState(s CalibrationState) bool {
	switch s {
	case CalibrationWaitingForReady, CalibrationWaitingForSit, CalibrationWaitingForStand:
		return true
	}
	return false
}

// Start begins a fresh calibration pass. A previously valid calibration
// remains in force until the new pass completes.
func (c *Calibrator) Start() {
	c.mu.Lock()
	c.debouncer.Reset()
	c.pendingSitting = 0
	c.state = CalibrationWaitingForReady
	c.mu.Unlock()

	c.notifyState(CalibrationWaitingForReady)
	c.say("Calibration started. Put your hands on your hips and hold to begin.")
	log.Println("Calibration pass started")
}

// Cancel aborts an in-progress pass, discarding partial values. It is safe
// to call in any state.
func (c *Calibrator) Cancel() {
	c.mu.Lock()
	if !activeState(c.state) {
		c.mu.Unlock()
		return
	}
	c.debouncer.Reset()
	c.pendingSitting = 0
	next := CalibrationNotCalibrated
	if c.cal.IsCalibrated() {
		next = CalibrationDone
	}
	c.state = next
	c.mu.Unlock()

	c.notifyState(next)
	c.say("Calibration cancelled.")
	log.Println("Calibration pass cancelled")
}

// Clear invalidates the active calibration and removes the persisted pair.
// Calling it repeatedly is idempotent.
func (c *Calibrator) Clear() error {
	c.mu.Lock()
	c.cal.Clear()
	c.pendingSitting = 0
	c.debouncer.Reset()
	c.state = CalibrationNotCalibrated
	c.mu.Unlock()

	c.notifyState(CalibrationNotCalibrated)
	if c.store != nil {
		if err := c.store.ClearCalibration(); err != nil {
			return fmt.Errorf("clear calibration: %w", err)
		}
	}
	return nil
}

// Load restores a previously persisted calibration, if one exists and is
// valid. Called once at startup.
func (c *Calibrator) Load() error {
	if c.store == nil {
		return nil
	}
	sitting, standing, ok, err := c.store.LoadCalibration()
	if err != nil {
		return fmt.Errorf("load calibration: %w", err)
	}
	if !ok {
		return nil
	}
	if err := c.cal.Set(sitting, standing); err != nil {
		return err
	}
	c.mu.Lock()
	c.state = CalibrationDone
	c.mu.Unlock()

	c.notifyState(CalibrationDone)
	log.Printf("Loaded calibration: sitting=%.3f standing=%.3f", sitting, standing)
	return nil
}

// Process feeds one frame to the active calibration pass. Frames arriving
// outside a pass are ignored. A confirmed gesture whose frame has no hip
// height is ignored: the state holds and the user repeats the gesture.
func (c *Calibrator) Process(snap *pose.Snapshot, now time.Time) {
	c.mu.Lock()
	if !activeState(c.state) {
		c.mu.Unlock()
		return
	}

	if !c.debouncer.Update(snap.HandsOnHips(), now) {
		c.mu.Unlock()
		return
	}

	hipY, ok := snap.HipY()
	if !ok {
		c.mu.Unlock()
		log.Println("Calibration gesture confirmed without hip position; ignoring")
		return
	}

	var (
		next     CalibrationState
		message  string
		beep     bool
		sitting  float64
		standing float64
		done     bool
	)
	switch c.state {
	case CalibrationWaitingForReady:
		c.debouncer.RequireRelease()
		beep = true
		next = CalibrationWaitingForSit
		message = "Sit down, then hold your hands on your hips."

	case CalibrationWaitingForSit:
		c.pendingSitting = hipY
		c.debouncer.RequireRelease()
		beep = true
		next = CalibrationWaitingForStand
		message = "Stand up, then hold your hands on your hips."

	case CalibrationWaitingForStand:
		if err := c.cal.Set(c.pendingSitting, hipY); err != nil {
			// Same height for both references: restart the sit step.
			log.Printf("Calibration rejected: %v", err)
			c.debouncer.RequireRelease()
			next = CalibrationWaitingForSit
			message = "Positions were too similar. Sit down and try again."
			break
		}
		c.pendingSitting = 0
		c.debouncer.Reset()
		sitting, standing = c.cal.Values()
		done = true
		beep = true
		next = CalibrationDone
		message = "Calibration complete. You are ready to exercise."
	}
	c.state = next
	c.mu.Unlock()

	if done {
		c.persist(sitting, standing)
	}
	if beep {
		c.audioBeep()
	}
	c.notifyState(next)
	c.say(message)
	if done {
		log.Printf("Calibration complete: sitting=%.3f standing=%.3f", sitting, standing)
	}
}

func (c *Calibrator) persist(sittingHipY, standingHipY float64) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveCalibration(sittingHipY, standingHipY); err != nil {
		log.Printf("Failed to persist calibration: %v", err)
	}
}

func (c *Calibrator) notifyState(state CalibrationState) {
	if c.OnStateChange != nil {
		c.OnStateChange(state)
	}
}

func (c *Calibrator) say(message string) {
	if c.OnMessage != nil {
		c.OnMessage(message)
	}
	if c.audio != nil {
		c.audio.SpeakNow(message)
	}
}

func (c *Calibrator) audioBeep() {
	if c.audio != nil {
		c.audio.Beep()
	}
}
