// Package exercise implements the pose-stream interpretation engine:
// gesture debouncing, the calibration state machine, the sit-to-stand
// repetition tracker, threshold counters for the simpler exercises, and
// rep-quality scoring.
package exercise

import (
	"errors"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// ErrNotCalibrated is returned when an operation needs a calibrated
// hip-height pair and none exists.
var ErrNotCalibrated = errors.New("not calibrated")

// Exercise identifies one of the supported break exercises.
type Exercise string

const (
	SitToStand   Exercise = "sit_to_stand"
	JumpingJacks Exercise = "jumping_jacks"
	Squats       Exercise = "squats"
	ArmRaises    Exercise = "arm_raises"
)

// Predicate returns the per-frame boolean the threshold counter watches for
// this exercise. Sit-to-stand is tracked by the Tracker instead and has no
// counter predicate. Jumping jacks and arm raises share ArmsRaised.
func (e Exercise) Predicate(s *pose.Snapshot) bool {
	switch e {
	case JumpingJacks, ArmRaises:
		return s.ArmsRaised()
	case Squats:
		return s.IsSquatting()
	default:
		return false
	}
}

// DisplayName returns a human-readable name for announcements and menus.
func (e Exercise) DisplayName() string {
	switch e {
	case SitToStand:
		return "Sit to Stand"
	case JumpingJacks:
		return "Jumping Jacks"
	case Squats:
		return "Squats"
	case ArmRaises:
		return "Arm Raises"
	default:
		return string(e)
	}
}

// Announcer is the fire-and-forget audio feedback sink. Implementations
// must never block the caller.
type Announcer interface {
	// SpeakNow interrupts any current speech and speaks text.
	SpeakNow(text string)
	// SpeakAfterCurrent queues text to play after current speech finishes.
	SpeakAfterCurrent(text string)
	// Beep plays a short confirmation tone immediately.
	Beep()
}

// PhotoPosition tags a requested photo with the extremum it captures.
type PhotoPosition string

const (
	PhotoSitting  PhotoPosition = "sitting"
	PhotoStanding PhotoPosition = "standing"
)

// PhotoTaker receives fire-and-forget photo capture requests. The engine
// never waits for or receives the captured image.
type PhotoTaker interface {
	RequestPhoto(rep int, position PhotoPosition)
}

// CalibrationStore persists the calibrated hip-height pair across restarts.
type CalibrationStore interface {
	SaveCalibration(sittingHipY, standingHipY float64) error
	// LoadCalibration returns ok=false when no valid pair is stored.
	LoadCalibration() (sittingHipY, standingHipY float64, ok bool, err error)
	ClearCalibration() error
}
