package pomodoro

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		WorkDuration:  10 * time.Minute,
		BreakDuration: 2 * time.Minute,
		TargetReps:    5,
	}
}

func TestTimer_StartsIdle(t *testing.T) {
	tm := NewTimer(testConfig())

	if tm.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %s", tm.Phase())
	}
	if got := tm.Remaining(t0); got != 0 {
		t.Errorf("expected zero remaining when idle, got %v", got)
	}
	if tm.Tick(t0.Add(time.Hour)) != PhaseIdle {
		t.Error("idle timer should not advance on tick")
	}
}

func TestTimer_WorkToBreakCycle(t *testing.T) {
	tm := NewTimer(testConfig())
	var phases []Phase
	tm.OnPhaseChange = func(p Phase) { phases = append(phases, p) }

	tm.Start(t0)
	if tm.Phase() != PhaseWork {
		t.Fatalf("expected work, got %s", tm.Phase())
	}
	if got := tm.Remaining(t0.Add(4 * time.Minute)); got != 6*time.Minute {
		t.Errorf("remaining = %v, want 6m", got)
	}

	// Work elapses, break begins.
	if got := tm.Tick(t0.Add(10 * time.Minute)); got != PhaseBreak {
		t.Fatalf("expected break after work elapses, got %s", got)
	}
	if got := tm.Remaining(t0.Add(11 * time.Minute)); got != time.Minute {
		t.Errorf("break remaining = %v, want 1m", got)
	}

	// Break elapses, work begins again.
	if got := tm.Tick(t0.Add(12 * time.Minute)); got != PhaseWork {
		t.Fatalf("expected work after break elapses, got %s", got)
	}

	want := []Phase{PhaseWork, PhaseBreak, PhaseWork}
	if len(phases) != len(want) {
		t.Fatalf("phase changes = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase change %d = %s, want %s", i, phases[i], want[i])
		}
	}
}

func TestTimer_StartWhileRunningRestartsClockSilently(t *testing.T) {
	tm := NewTimer(testConfig())
	var phases []Phase
	tm.OnPhaseChange = func(p Phase) { phases = append(phases, p) }

	tm.Start(t0)
	tm.Skip(t0.Add(time.Minute)) // into the break

	// A second Start mid-break restarts the break clock but must not
	// re-announce the phase; a repeated announcement would open a second
	// exercise session on top of the running one.
	tm.Start(t0.Add(90 * time.Second))

	if tm.Phase() != PhaseBreak {
		t.Fatalf("expected break, got %s", tm.Phase())
	}
	if got := tm.Remaining(t0.Add(90 * time.Second)); got != 2*time.Minute {
		t.Errorf("remaining = %v, want full break of 2m", got)
	}
	want := []Phase{PhaseWork, PhaseBreak}
	if len(phases) != len(want) {
		t.Fatalf("phase changes = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase change %d = %s, want %s", i, phases[i], want[i])
		}
	}
}

func TestTimer_StartClearsPause(t *testing.T) {
	tm := NewTimer(testConfig())
	tm.Start(t0)
	tm.Pause(t0.Add(time.Minute))

	tm.Start(t0.Add(2 * time.Minute))
	if tm.Paused() {
		t.Error("expected start to clear the pause")
	}
	if got := tm.Remaining(t0.Add(2 * time.Minute)); got != 10*time.Minute {
		t.Errorf("remaining = %v, want full work of 10m", got)
	}
}

func TestTimer_TickBeforeElapseHoldsPhase(t *testing.T) {
	tm := NewTimer(testConfig())
	tm.Start(t0)

	if got := tm.Tick(t0.Add(9 * time.Minute)); got != PhaseWork {
		t.Errorf("expected work, got %s", got)
	}
}

func TestTimer_PauseResume(t *testing.T) {
	tm := NewTimer(testConfig())
	tm.Start(t0)

	tm.Pause(t0.Add(3 * time.Minute))
	if !tm.Paused() {
		t.Fatal("expected paused")
	}

	// Time passes while paused; remaining is frozen.
	if got := tm.Remaining(t0.Add(30 * time.Minute)); got != 7*time.Minute {
		t.Errorf("paused remaining = %v, want 7m", got)
	}
	if got := tm.Tick(t0.Add(30 * time.Minute)); got != PhaseWork {
		t.Errorf("paused timer should not advance, got %s", got)
	}

	tm.Resume(t0.Add(30 * time.Minute))
	if tm.Paused() {
		t.Fatal("expected resumed")
	}
	if got := tm.Remaining(t0.Add(31 * time.Minute)); got != 6*time.Minute {
		t.Errorf("resumed remaining = %v, want 6m", got)
	}
}

func TestTimer_PauseWhenIdleIsNoop(t *testing.T) {
	tm := NewTimer(testConfig())

	tm.Pause(t0)
	if tm.Paused() {
		t.Error("idle timer should not pause")
	}
	tm.Resume(t0)
	if tm.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %s", tm.Phase())
	}
}

func TestTimer_Skip(t *testing.T) {
	tm := NewTimer(testConfig())
	tm.Start(t0)

	tm.Skip(t0.Add(time.Minute))
	if tm.Phase() != PhaseBreak {
		t.Fatalf("expected break after skip, got %s", tm.Phase())
	}
	if got := tm.Remaining(t0.Add(time.Minute)); got != 2*time.Minute {
		t.Errorf("break remaining = %v, want 2m", got)
	}

	tm.Skip(t0.Add(90 * time.Second))
	if tm.Phase() != PhaseWork {
		t.Errorf("expected work after second skip, got %s", tm.Phase())
	}
}

func TestTimer_SkipWhenIdleIsNoop(t *testing.T) {
	tm := NewTimer(testConfig())
	var changes int
	tm.OnPhaseChange = func(Phase) { changes++ }

	tm.Skip(t0)
	if tm.Phase() != PhaseIdle || changes != 0 {
		t.Errorf("skip on idle timer should be a no-op, phase=%s changes=%d", tm.Phase(), changes)
	}
}

func TestTimer_Stop(t *testing.T) {
	tm := NewTimer(testConfig())
	var phases []Phase
	tm.OnPhaseChange = func(p Phase) { phases = append(phases, p) }

	tm.Start(t0)
	tm.Stop()

	if tm.Phase() != PhaseIdle {
		t.Errorf("expected idle after stop, got %s", tm.Phase())
	}
	if len(phases) != 2 || phases[1] != PhaseIdle {
		t.Errorf("phase changes = %v, want [work idle]", phases)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.WorkDuration != 25*time.Minute {
		t.Errorf("work duration = %v, want 25m", cfg.WorkDuration)
	}
	if cfg.BreakDuration != 5*time.Minute {
		t.Errorf("break duration = %v, want 5m", cfg.BreakDuration)
	}
	if cfg.TargetReps <= 0 {
		t.Errorf("target reps = %d, want positive", cfg.TargetReps)
	}
}
