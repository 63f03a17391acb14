// Package pose defines the body pose snapshot produced per processed frame
// and the boolean predicates derived from it.
package pose

import "math"

// Joint identifies a named body keypoint.
type Joint string

// Body joints following the MediaPipe pose-landmarker naming.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          Joint = "nose"
	LeftShoulder  Joint = "left_shoulder"
	RightShoulder Joint = "right_shoulder"
	LeftElbow     Joint = "left_elbow"
	RightElbow    Joint = "right_elbow"
	LeftWrist     Joint = "left_wrist"
	RightWrist    Joint = "right_wrist"
	LeftHip       Joint = "left_hip"
	RightHip      Joint = "right_hip"
	LeftKnee      Joint = "left_knee"
	RightKnee     Joint = "right_knee"
	LeftAnkle     Joint = "left_ankle"
	RightAnkle    Joint = "right_ankle"
)

// Predicate thresholds, in normalized image coordinates (y grows downward).
const (
	// MinJointConfidence is the per-joint score below which a joint is
	// omitted from a snapshot.
	MinJointConfidence = 0.3
	// HandsOnHipsMaxDist is the maximum wrist-to-hip distance for the
	// hands-on-hips gesture.
	HandsOnHipsMaxDist = 0.15
	// SquatMaxHipKneeGap is the maximum vertical hip-to-knee gap while
	// squatting (hips dropped to knee height).
	SquatMaxHipKneeGap = 0.10
	// StandingMinHipKneeGap is the minimum vertical hip-to-knee gap for an
	// upright stance.
	StandingMinHipKneeGap = 0.15
)

// Point is a 2D normalized coordinate in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is the output of the pose extractor for one frame. Joints with a
// per-joint score below MinJointConfidence are absent from the map. A
// Snapshot is immutable once built; predicates are recomputed on each call.
type Snapshot struct {
	Joints     map[Joint]Point `json:"joints"`
	Confidence float64         `json:"confidence"`
}

func (s *Snapshot) joint(j Joint) (Point, bool) {
	p, ok := s.Joints[j]
	return p, ok
}

// HipY returns the average of the left and right hip Y coordinates. The
// second return is false when either hip joint is missing.
func (s *Snapshot) HipY() (float64, bool) {
	l, lok := s.joint(LeftHip)
	r, rok := s.joint(RightHip)
	if !lok || !rok {
		return 0, false
	}
	return (l.Y + r.Y) / 2, true
}

// ArmsRaised reports whether both wrists are above the nose.
func (s *Snapshot) ArmsRaised() bool {
	nose, ok := s.joint(Nose)
	if !ok {
		return false
	}
	lw, lok := s.joint(LeftWrist)
	rw, rok := s.joint(RightWrist)
	if !lok || !rok {
		return false
	}
	return lw.Y < nose.Y && rw.Y < nose.Y
}

// HandsOnHips reports whether both wrists rest near the same-side hip.
func (s *Snapshot) HandsOnHips() bool {
	lw, ok1 := s.joint(LeftWrist)
	rw, ok2 := s.joint(RightWrist)
	lh, ok3 := s.joint(LeftHip)
	rh, ok4 := s.joint(RightHip)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return distance(lw, lh) < HandsOnHipsMaxDist && distance(rw, rh) < HandsOnHipsMaxDist
}

// IsSquatting reports whether the hips have dropped to knee height.
func (s *Snapshot) IsSquatting() bool {
	hipY, kneeY, ok := s.hipKneeY()
	if !ok {
		return false
	}
	return kneeY-hipY < SquatMaxHipKneeGap
}

// IsStanding reports whether the body is upright: hips well above knees and
// knees above ankles. All six lower-body joints must be present.
func (s *Snapshot) IsStanding() bool {
	hipY, kneeY, ok := s.hipKneeY()
	if !ok {
		return false
	}
	la, lok := s.joint(LeftAnkle)
	ra, rok := s.joint(RightAnkle)
	if !lok || !rok {
		return false
	}
	ankleY := (la.Y + ra.Y) / 2
	return kneeY-hipY >= StandingMinHipKneeGap && ankleY > kneeY
}

// hipKneeY returns the average hip and knee Y coordinates, or ok=false when
// any of the four joints is missing.
func (s *Snapshot) hipKneeY() (hipY, kneeY float64, ok bool) {
	hipY, hok := s.HipY()
	lk, lok := s.joint(LeftKnee)
	rk, rok := s.joint(RightKnee)
	if !hok || !lok || !rok {
		return 0, 0, false
	}
	return hipY, (lk.Y + rk.Y) / 2, true
}

// distance is the Euclidean distance between two points.
func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
