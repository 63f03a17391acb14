package exercise

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]int{80, 90, 100})

	if s.Reps != 3 {
		t.Errorf("expected 3 reps, got %d", s.Reps)
	}
	if math.Abs(s.MeanScore-90) > 1e-9 {
		t.Errorf("expected mean 90, got %f", s.MeanScore)
	}
	if s.BestScore != 100 {
		t.Errorf("expected best 100, got %d", s.BestScore)
	}
	if math.Abs(s.StdDev-10) > 1e-9 {
		t.Errorf("expected stddev 10, got %f", s.StdDev)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Errorf("expected zero summary for an empty session, got %+v", s)
	}
}

func TestSummarize_SingleRep(t *testing.T) {
	s := Summarize([]int{70})
	if s.Reps != 1 || s.MeanScore != 70 || s.StdDev != 0 {
		t.Errorf("unexpected summary for a single rep: %+v", s)
	}
}
