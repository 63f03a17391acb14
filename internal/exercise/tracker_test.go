package exercise

import (
	"testing"
	"time"
)

// run feeds a sequence of hip heights at 100ms intervals and returns the
// time after the last frame.
func run(tr *Tracker, hipYs []float64, start time.Time) time.Time {
	now := start
	for _, y := range hipYs {
		tr.Process(snapAt(y), now)
		now = now.Add(100 * time.Millisecond)
	}
	return now
}

// repeat returns a slice of n copies of y.
func repeat(y float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = y
	}
	return out
}

func TestTracker_PerfectRepScoresHundred(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	var reps []int
	var scores []int
	tr.OnRep = func(count, score int) {
		reps = append(reps, count)
		scores = append(scores, score)
	}

	seq := append(repeat(0.30, 3), 0.45, 0.60) // leave standing zone, descend
	seq = append(seq, repeat(0.70, 6)...)      // bottom, held well past 0.3s
	seq = append(seq, 0.55, 0.40)              // ascend
	seq = append(seq, repeat(0.30, 3)...)      // back to standing
	run(tr, seq, t0)

	if len(reps) != 1 {
		t.Fatalf("expected exactly 1 rep, got %d", len(reps))
	}
	if reps[0] != 1 {
		t.Errorf("expected rep number 1, got %d", reps[0])
	}
	if scores[0] != 100 {
		t.Errorf("expected score 100 for a full-range rep, got %d", scores[0])
	}
	if tr.State() != StateStanding {
		t.Errorf("expected to finish in standing, got %s", tr.State())
	}
}

func TestTracker_ShallowDipNeverCounts(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	counted := 0
	tr.OnRep = func(count, score int) { counted++ }

	// Dips only to 0.55, well short of the sitting zone, then returns.
	seq := append(repeat(0.30, 3), 0.45, 0.55, 0.55, 0.55, 0.45)
	seq = append(seq, repeat(0.30, 3)...)
	run(tr, seq, t0)

	if counted != 0 {
		t.Errorf("expected no reps for a shallow dip, got %d", counted)
	}
	if tr.State() != StateStanding {
		t.Errorf("expected to return to standing, got %s", tr.State())
	}
}

func TestTracker_BounceAtBottomRestartsHold(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	counted := 0
	tr.OnRep = func(count, score int) { counted++ }

	// Touches the sitting zone for two frames (0.2s), bounces out before
	// the hold elapses, then sits properly.
	seq := append(repeat(0.30, 3), 0.50, 0.70, 0.70, 0.55, 0.70)
	seq = append(seq, repeat(0.70, 5)...)
	seq = append(seq, 0.50)
	seq = append(seq, repeat(0.30, 3)...)
	run(tr, seq, t0)

	if counted != 1 {
		t.Errorf("expected exactly 1 rep, got %d", counted)
	}
}

func TestTracker_SlowRiseFallbackRestartsHold(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	counted := 0
	tr.OnRep = func(count, score int) { counted++ }

	// Rises out of the sitting zone but falls back in before reaching the
	// standing zone; the bottom must be held again before the rep can
	// complete.
	seq := append(repeat(0.30, 3), 0.50)
	seq = append(seq, repeat(0.70, 5)...) // confirmed sit
	seq = append(seq, 0.55, 0.45, 0.60)   // partial rise, fall back
	seq = append(seq, repeat(0.70, 5)...) // held again
	seq = append(seq, 0.50)
	seq = append(seq, repeat(0.30, 3)...)
	run(tr, seq, t0)

	if counted != 1 {
		t.Errorf("expected exactly 1 rep, got %d", counted)
	}
}

func TestTracker_AbortBeforeSittingZone(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	var states []State
	tr.OnStateChange = func(s State) { states = append(states, s) }

	// Leaves standing, then steps straight back into the standing zone.
	run(tr, []float64{0.30, 0.50, 0.32}, t0)

	want := []State{StateGoingDown, StateStanding}
	if len(states) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], states[i])
		}
	}
}

func TestTracker_PartialRangeDegradesScore(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	var scores []int
	tr.OnRep = func(count, score int) { scores = append(scores, score) }

	// Reaches the sitting reference but stops rising at 0.34, i.e. 10% of
	// the range short of the standing reference. Entering the standing
	// zone at progress 0.90 completes the rep with maxProgress 0.90.
	seq := append(repeat(0.30, 3), 0.50)
	seq = append(seq, repeat(0.70, 6)...)
	seq = append(seq, 0.50)
	seq = append(seq, repeat(0.34, 3)...)
	run(tr, seq, t0)

	if len(scores) != 1 {
		t.Fatalf("expected 1 rep, got %d", len(scores))
	}
	// sittingScore 1.0, standingScore 0.90 -> 95.
	if scores[0] != 95 {
		t.Errorf("expected score 95, got %d", scores[0])
	}
}

func TestTracker_PhotosAndAudioPerRep(t *testing.T) {
	audio := &fakeAnnouncer{}
	photos := &fakePhotos{}
	tr := NewTracker(calibrated(), audio, photos)

	seq := append(repeat(0.30, 3), 0.50)
	seq = append(seq, repeat(0.70, 6)...)
	seq = append(seq, 0.50)
	seq = append(seq, repeat(0.30, 3)...)
	run(tr, seq, t0)

	if audio.beeps != 1 {
		t.Errorf("expected 1 beep at the confirmed sit, got %d", audio.beeps)
	}
	if len(audio.queued) != 1 || audio.queued[0] != "1, 100 percent" {
		t.Errorf("expected queued announcement %q, got %v", "1, 100 percent", audio.queued)
	}
	if len(photos.requests) != 2 {
		t.Fatalf("expected 2 photo requests, got %d", len(photos.requests))
	}
	if photos.requests[0] != (photoRequest{rep: 1, position: PhotoSitting}) {
		t.Errorf("unexpected first photo request: %+v", photos.requests[0])
	}
	if photos.requests[1] != (photoRequest{rep: 1, position: PhotoStanding}) {
		t.Errorf("unexpected second photo request: %+v", photos.requests[1])
	}
}

func TestTracker_SittingPhotoOncePerRep(t *testing.T) {
	photos := &fakePhotos{}
	tr := NewTracker(calibrated(), nil, photos)

	// Sit is confirmed, the user half-rises, falls back and re-confirms
	// the sit: still only one sitting photo for the rep.
	seq := append(repeat(0.30, 3), 0.50)
	seq = append(seq, repeat(0.70, 5)...)
	seq = append(seq, 0.55, 0.45, 0.60)
	seq = append(seq, repeat(0.70, 5)...)
	seq = append(seq, 0.50)
	seq = append(seq, repeat(0.30, 3)...)
	run(tr, seq, t0)

	sitting := 0
	for _, r := range photos.requests {
		if r.position == PhotoSitting {
			sitting++
		}
	}
	if sitting != 1 {
		t.Errorf("expected exactly 1 sitting photo, got %d", sitting)
	}
}

func TestTracker_MultipleReps(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	rep := append(repeat(0.30, 3), 0.50)
	rep = append(rep, repeat(0.70, 6)...)
	rep = append(rep, 0.50)
	rep = append(rep, repeat(0.30, 3)...)

	now := t0
	for i := 0; i < 3; i++ {
		now = run(tr, rep, now)
	}

	if tr.RepCount() != 3 {
		t.Errorf("expected 3 reps, got %d", tr.RepCount())
	}
	if len(tr.Scores()) != 3 {
		t.Errorf("expected 3 recorded scores, got %d", len(tr.Scores()))
	}
}

func TestTracker_RequiresCalibration(t *testing.T) {
	tr := NewTracker(&Calibration{}, nil, nil)

	run(tr, []float64{0.30, 0.50, 0.70, 0.70, 0.70, 0.70, 0.50, 0.30}, t0)

	if tr.RepCount() != 0 {
		t.Errorf("expected no reps without calibration, got %d", tr.RepCount())
	}
	if tr.State() != StateStanding {
		t.Errorf("expected state to hold at standing, got %s", tr.State())
	}
}

func TestTracker_MissingHipsHoldState(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	// Descend into the sit, then lose the hips for a stretch: the state
	// holds and the rep completes once the signal returns.
	counted := 0
	tr.OnRep = func(count, score int) { counted++ }

	now := run(tr, append(repeat(0.30, 3), 0.50), t0)
	now = run(tr, repeat(0.70, 6), now)
	for i := 0; i < 5; i++ {
		tr.Process(snapNoHips(), now)
		now = now.Add(100 * time.Millisecond)
	}
	if tr.State() != StateSitting {
		t.Fatalf("expected state to hold at sitting, got %s", tr.State())
	}
	run(tr, append([]float64{0.50}, repeat(0.30, 3)...), now)

	if counted != 1 {
		t.Errorf("expected the rep to complete after the signal returned, got %d", counted)
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	rep := append(repeat(0.30, 3), 0.50)
	rep = append(rep, repeat(0.70, 6)...)
	rep = append(rep, 0.50)
	rep = append(rep, repeat(0.30, 3)...)
	run(tr, rep, t0)

	tr.Reset()
	if tr.RepCount() != 0 || len(tr.Scores()) != 0 {
		t.Error("expected reset to clear the session")
	}
	if tr.State() != StateStanding {
		t.Errorf("expected standing after reset, got %s", tr.State())
	}
}

// Session teardown reads the tracker from inside the rep callback (the
// target-reached path ends the session and summarizes the scores), so the
// callbacks must be able to call back in without deadlocking.
func TestTracker_CallbacksReadBackIn(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	var scoresSeen []int
	tr.OnRep = func(count, score int) {
		scoresSeen = tr.Scores()
		if got := tr.RepCount(); got != count {
			t.Errorf("RepCount() inside callback = %d, want %d", got, count)
		}
	}
	tr.OnStateChange = func(s State) {
		if got := tr.State(); got != s {
			t.Errorf("State() inside callback = %s, want %s", got, s)
		}
	}

	rep := append(repeat(0.30, 3), 0.50)
	rep = append(rep, repeat(0.70, 6)...)
	rep = append(rep, 0.50)
	rep = append(rep, repeat(0.30, 3)...)
	run(tr, rep, t0)

	if len(scoresSeen) != 1 || scoresSeen[0] != 100 {
		t.Errorf("expected callback to observe scores [100], got %v", scoresSeen)
	}
}

// The pipeline goroutine feeds frames while HTTP handlers poll the
// accessors; both must be safe to run at once.
func TestTracker_ConcurrentAccessors(t *testing.T) {
	tr := NewTracker(calibrated(), nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			tr.State()
			tr.RepCount()
			tr.LastScore()
			tr.Scores()
		}
	}()

	rep := append(repeat(0.30, 3), 0.50)
	rep = append(rep, repeat(0.70, 6)...)
	rep = append(rep, 0.50)
	rep = append(rep, repeat(0.30, 3)...)

	now := t0
	for i := 0; i < 3; i++ {
		now = run(tr, rep, now)
	}
	<-done

	if tr.RepCount() != 3 {
		t.Errorf("expected 3 reps, got %d", tr.RepCount())
	}
}
