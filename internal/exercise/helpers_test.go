package exercise

import (
	"time"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// t0 is an arbitrary base time for deterministic clock arithmetic.
var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// snapAt returns a snapshot with both hips at hipY and nothing else.
func snapAt(hipY float64) *pose.Snapshot {
	return &pose.Snapshot{
		Confidence: 0.9,
		Joints: map[pose.Joint]pose.Point{
			pose.LeftHip:  {X: 0.46, Y: hipY},
			pose.RightHip: {X: 0.54, Y: hipY},
		},
	}
}

// snapHandsOnHips returns a snapshot with wrists resting on hips at hipY.
func snapHandsOnHips(hipY float64) *pose.Snapshot {
	s := snapAt(hipY)
	s.Joints[pose.LeftWrist] = pose.Point{X: 0.45, Y: hipY + 0.01}
	s.Joints[pose.RightWrist] = pose.Point{X: 0.55, Y: hipY + 0.01}
	return s
}

// snapNoHips returns a snapshot with no joints at all.
func snapNoHips() *pose.Snapshot {
	return &pose.Snapshot{Confidence: 0.9, Joints: map[pose.Joint]pose.Point{}}
}

type fakeAnnouncer struct {
	spoken []string
	queued []string
	beeps  int
}

func (f *fakeAnnouncer) SpeakNow(text string)          { f.spoken = append(f.spoken, text) }
func (f *fakeAnnouncer) SpeakAfterCurrent(text string) { f.queued = append(f.queued, text) }
func (f *fakeAnnouncer) Beep()                         { f.beeps++ }

type photoRequest struct {
	rep      int
	position PhotoPosition
}

type fakePhotos struct {
	requests []photoRequest
}

func (f *fakePhotos) RequestPhoto(rep int, position PhotoPosition) {
	f.requests = append(f.requests, photoRequest{rep: rep, position: position})
}

type fakeCalibrationStore struct {
	sitting  float64
	standing float64
	stored   bool
	saves    int
	clears   int
}

func (f *fakeCalibrationStore) SaveCalibration(sittingHipY, standingHipY float64) error {
	f.sitting = sittingHipY
	f.standing = standingHipY
	f.stored = true
	f.saves++
	return nil
}

func (f *fakeCalibrationStore) LoadCalibration() (float64, float64, bool, error) {
	return f.sitting, f.standing, f.stored, nil
}

func (f *fakeCalibrationStore) ClearCalibration() error {
	f.sitting = 0
	f.standing = 0
	f.stored = false
	f.clears++
	return nil
}

// calibrated returns a Calibration with the worked-example references:
// sitting at 0.70, standing at 0.30 (image coordinates, y grows downward).
func calibrated() *Calibration {
	cal := &Calibration{}
	if err := cal.Set(0.70, 0.30); err != nil {
		panic(err)
	}
	return cal
}

// holdGesture feeds hands-on-hips frames every interval until the debounced
// confirmation should have fired, then returns the time after the last
// frame.
func holdGesture(c *Calibrator, hipY float64, start time.Time) time.Time {
	now := start
	for i := 0; i < 20; i++ {
		c.Process(snapHandsOnHips(hipY), now)
		now = now.Add(100 * time.Millisecond)
	}
	return now
}

// releaseGesture feeds frames without the gesture long enough to satisfy
// the release requirement.
func releaseGesture(c *Calibrator, hipY float64, start time.Time) time.Time {
	now := start
	for i := 0; i < 10; i++ {
		c.Process(snapAt(hipY), now)
		now = now.Add(100 * time.Millisecond)
	}
	return now
}
