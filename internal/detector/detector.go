// Package detector provides body pose extraction from camera frames.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// Detector defines the interface for pose extraction implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected pose
	// snapshot. Returns nil if no person is detected.
	Detect(frame *gocv.Mat) (*pose.Snapshot, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose extraction.
type Config struct {
	// MinConfidence is the minimum overall detection confidence (0.0-1.0)
	// below which a frame yields no snapshot.
	MinConfidence float64

	// MinJointConfidence is the per-joint score below which a joint is
	// omitted from the snapshot.
	MinJointConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:      0.5,
		MinJointConfidence: pose.MinJointConfidence,
	}
}
