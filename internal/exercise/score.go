package exercise

import "math"

// Score computes the 0-100 quality score for one repetition from the
// per-rep extrema on the calibrated travel axis. minProgress is the extreme
// reached toward the sitting reference (0 means the reference was reached,
// negative means it was passed); maxProgress is the extreme toward the
// standing reference (1 means reached). The score is 100 only when both
// calibrated extrema were reached in the same repetition, and degrades
// linearly with shortfall in either direction.
func Score(minProgress, maxProgress float64) int {
	sittingScore := math.Max(0, 1-minProgress)
	standingScore := math.Max(0, maxProgress)
	return int(math.Round(clamp01((sittingScore+standingScore)/2) * 100))
}
