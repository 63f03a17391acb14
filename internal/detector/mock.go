package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// MockDetector is a test implementation of the Detector interface. It
// replays a scripted sequence of snapshots, one per Detect call.
type MockDetector struct {
	mu        sync.Mutex
	snapshots []*pose.Snapshot
	index     int
	loop      bool
	err       error
}

// NewMockDetector creates a MockDetector with no scripted snapshots;
// Detect returns nil until a script is set.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetScript sets the snapshot sequence Detect replays. With loop set the
// sequence repeats; otherwise the last snapshot is held.
func (m *MockDetector) SetScript(snapshots []*pose.Snapshot, loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = snapshots
	m.index = 0
	m.loop = loop
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted snapshot or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*pose.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.snapshots) == 0 {
		return nil, nil
	}

	if m.index >= len(m.snapshots) {
		if m.loop {
			m.index = 0
		} else {
			return m.snapshots[len(m.snapshots)-1], nil
		}
	}

	snap := m.snapshots[m.index]
	m.index++
	return snap, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// StandingSnapshot returns a snapshot of a person standing upright with
// arms at the sides, hips at the given height.
func StandingSnapshot(hipY float64) *pose.Snapshot {
	return &pose.Snapshot{
		Confidence: 0.95,
		Joints: map[pose.Joint]pose.Point{
			pose.Nose:          {X: 0.50, Y: hipY - 0.35},
			pose.LeftShoulder:  {X: 0.44, Y: hipY - 0.23},
			pose.RightShoulder: {X: 0.56, Y: hipY - 0.23},
			pose.LeftElbow:     {X: 0.42, Y: hipY - 0.11},
			pose.RightElbow:    {X: 0.58, Y: hipY - 0.11},
			pose.LeftWrist:     {X: 0.36, Y: hipY + 0.12},
			pose.RightWrist:    {X: 0.64, Y: hipY + 0.12},
			pose.LeftHip:       {X: 0.46, Y: hipY},
			pose.RightHip:      {X: 0.54, Y: hipY},
			pose.LeftKnee:      {X: 0.46, Y: hipY + 0.20},
			pose.RightKnee:     {X: 0.54, Y: hipY + 0.20},
			pose.LeftAnkle:     {X: 0.46, Y: hipY + 0.37},
			pose.RightAnkle:    {X: 0.54, Y: hipY + 0.37},
		},
	}
}

// HandsOnHipsSnapshot returns a standing snapshot with the wrists resting
// on the hips, at the given hip height.
func HandsOnHipsSnapshot(hipY float64) *pose.Snapshot {
	snap := StandingSnapshot(hipY)
	snap.Joints[pose.LeftWrist] = pose.Point{X: 0.45, Y: hipY + 0.01}
	snap.Joints[pose.RightWrist] = pose.Point{X: 0.55, Y: hipY + 0.01}
	return snap
}
