// Package app orchestrates the Movedoro pipeline: camera frames flow
// through motion gating and pose detection into the calibration and
// exercise state machines, and results fan out to audio, persistence,
// and the event stream.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llermaly/movedoro-sub001/internal/audio"
	"github.com/llermaly/movedoro-sub001/internal/capture"
	"github.com/llermaly/movedoro-sub001/internal/detector"
	"github.com/llermaly/movedoro-sub001/internal/exercise"
	"github.com/llermaly/movedoro-sub001/internal/pomodoro"
	"github.com/llermaly/movedoro-sub001/internal/pose"
	"github.com/llermaly/movedoro-sub001/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a person is moving.
	ActiveFPS = 15
	// IdleTimeoutMs is how long without motion before dropping back to idle.
	IdleTimeoutMs = 2000
)

// Mode is what the pose stream is currently driving.
type Mode string

const (
	ModeIdle        Mode = "idle"
	ModeCalibrating Mode = "calibrating"
	ModeTracking    Mode = "tracking"
)

// Event is a state change broadcast to observers (tray, websocket hub).
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
	PhotoDir     string
	Timer        pomodoro.Config
	// Audio overrides the default speaker; used by tests.
	Audio exercise.Announcer
}

// App wires the capture, detection, exercise, and persistence layers
// together and runs the frame-processing pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	audio    exercise.Announcer
	photos   *capture.PhotoTaker
	timer    *pomodoro.Timer

	calibration *exercise.Calibration
	calibrator  *exercise.Calibrator
	tracker     *exercise.Tracker
	counter     *exercise.Counter

	mu              sync.RWMutex
	mode            Mode
	stopCh          chan struct{}
	sessionID       string
	sessionExercise exercise.Exercise

	// OnEvent is invoked for every broadcast event, without internal
	// locks held.
	OnEvent func(evt Event)
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0
	}

	speaker := config.Audio
	if speaker == nil {
		speaker = audio.NewSpeaker()
	}

	camera := capture.NewCamera(config.CameraID)
	photos, err := capture.NewPhotoTaker(camera, config.PhotoDir)
	if err != nil {
		return nil, err
	}

	calibration := &exercise.Calibration{}

	a := &App{
		config:      config,
		camera:      camera,
		motion:      capture.NewMotionDetector(config.MotionThresh),
		audio:       speaker,
		photos:      photos,
		timer:       pomodoro.NewTimer(config.Timer),
		calibration: calibration,
		calibrator:  exercise.NewCalibrator(calibration, config.Store.Settings(), speaker),
		tracker:     exercise.NewTracker(calibration, speaker, photos),
		mode:        ModeIdle,
	}

	// Try MediaPipe first, fall back to scripted snapshots so the rest of
	// the app still runs without the Python service.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.calibrator.OnStateChange = func(state exercise.CalibrationState) {
		a.emit(Event{Type: "calibration_state", Payload: map[string]interface{}{
			"state": string(state),
		}})
		// Leaving an active pass, by completion or by a clear, returns
		// the pipeline to idle.
		if state == exercise.CalibrationDone || state == exercise.CalibrationNotCalibrated {
			a.setMode(ModeIdle)
		}
	}
	a.calibrator.OnMessage = func(message string) {
		a.emit(Event{Type: "calibration_message", Payload: map[string]interface{}{
			"message": message,
		}})
	}

	a.tracker.OnRep = a.handleRep
	a.tracker.OnStateChange = func(state exercise.State) {
		a.emit(Event{Type: "exercise_state", Payload: map[string]interface{}{
			"state": string(state),
		}})
	}

	a.photos.OnSaved = a.handlePhotoSaved

	a.timer.OnPhaseChange = a.handlePhaseChange

	if err := a.calibrator.Load(); err != nil {
		log.Printf("Failed to load calibration: %v", err)
	}

	return a, nil
}

// Mode returns the current pipeline mode.
func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Timer returns the Pomodoro timer.
func (a *App) Timer() *pomodoro.Timer {
	return a.timer
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Calibrator returns the calibration state machine.
func (a *App) Calibrator() *exercise.Calibrator {
	return a.calibrator
}

// Tracker returns the sit-to-stand repetition tracker.
func (a *App) Tracker() *exercise.Tracker {
	return a.tracker
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// StartCalibration begins an interactive calibration pass. Any running
// exercise session keeps its state but stops receiving frames.
func (a *App) StartCalibration() {
	a.calibrator.Start()
	a.setMode(ModeCalibrating)
}

// CancelCalibration aborts an in-progress calibration pass, keeping any
// previously stored calibration.
func (a *App) CancelCalibration() {
	a.calibrator.Cancel()
	a.setMode(ModeIdle)
}

// StartExercise begins a tracked exercise session. Sit-to-stand requires
// a prior calibration; the threshold-counted exercises do not.
func (a *App) StartExercise(ex exercise.Exercise, now time.Time) error {
	if ex == exercise.SitToStand && !a.calibration.IsCalibrated() {
		return exercise.ErrNotCalibrated
	}

	sess := &store.Session{
		ID:        uuid.NewString(),
		Exercise:  string(ex),
		StartedAt: now,
	}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return err
	}

	a.mu.Lock()
	a.sessionID = sess.ID
	a.sessionExercise = ex
	a.tracker.Reset()
	if ex == exercise.SitToStand {
		a.counter = nil
	} else {
		a.counter = exercise.NewCounter(ex, a.audio)
		a.counter.OnRep = a.handleCount
	}
	a.mode = ModeTracking
	a.mu.Unlock()

	a.audio.SpeakNow("Break time. " + ex.DisplayName() + ".")
	a.emit(Event{Type: "session_started", Payload: map[string]interface{}{
		"session_id": sess.ID,
		"exercise":   string(ex),
	}})
	return nil
}

// StopExercise ends the current exercise session, writing the summary to
// the session row. A no-op when no session is active.
func (a *App) StopExercise(now time.Time) error {
	a.mu.Lock()
	sessionID := a.sessionID
	ex := a.sessionExercise
	a.sessionID = ""
	a.mode = ModeIdle
	counter := a.counter
	a.counter = nil
	a.mu.Unlock()

	if sessionID == "" {
		return nil
	}

	var repCount int
	var meanScore float64
	if ex == exercise.SitToStand {
		summary := exercise.Summarize(a.tracker.Scores())
		repCount = summary.Reps
		meanScore = summary.MeanScore
	} else if counter != nil {
		repCount = counter.RepCount()
	}

	if err := a.config.Store.Sessions().Finish(sessionID, now, repCount, meanScore); err != nil {
		return err
	}

	a.emit(Event{Type: "session_finished", Payload: map[string]interface{}{
		"session_id": sessionID,
		"rep_count":  repCount,
		"mean_score": meanScore,
	}})
	return nil
}

// processSnapshot routes one pose snapshot to whichever state machine the
// current mode selects. Nil snapshots (no person detected) are dropped.
func (a *App) processSnapshot(snap *pose.Snapshot, now time.Time) {
	if snap == nil {
		return
	}

	a.mu.RLock()
	mode := a.mode
	counter := a.counter
	a.mu.RUnlock()

	switch mode {
	case ModeCalibrating:
		a.calibrator.Process(snap, now)
	case ModeTracking:
		if counter != nil {
			counter.Process(snap)
		} else {
			a.tracker.Process(snap, now)
		}
	}
}

func (a *App) handleRep(count, score int) {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()

	if sessionID != "" {
		if err := a.config.Store.Sessions().AddRep(sessionID, count, score); err != nil {
			log.Printf("Failed to record rep %d: %v", count, err)
		}
	}

	a.emit(Event{Type: "rep_completed", Payload: map[string]interface{}{
		"count": count,
		"score": score,
	}})

	a.checkTarget(count)
}

func (a *App) handleCount(count int) {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()

	if sessionID != "" {
		if err := a.config.Store.Sessions().AddRep(sessionID, count, 0); err != nil {
			log.Printf("Failed to record rep %d: %v", count, err)
		}
	}

	a.emit(Event{Type: "rep_completed", Payload: map[string]interface{}{
		"count": count,
	}})

	a.checkTarget(count)
}

// checkTarget ends the break early once the rep target is reached.
func (a *App) checkTarget(count int) {
	target := a.timer.TargetReps()
	if target > 0 && count >= target && a.timer.Phase() == pomodoro.PhaseBreak {
		a.audio.SpeakAfterCurrent("Target reached. Back to work.")
		a.timer.Skip(time.Now())
	}
}

func (a *App) handlePhotoSaved(id string, rep int, position exercise.PhotoPosition, path string) {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()

	err := a.config.Store.Photos().Create(&store.Photo{
		ID:        id,
		SessionID: sessionID,
		RepNumber: rep,
		Position:  string(position),
		Path:      path,
	})
	if err != nil {
		log.Printf("Failed to record photo %s: %v", id, err)
	}
}

func (a *App) handlePhaseChange(phase pomodoro.Phase) {
	a.emit(Event{Type: "timer", Payload: map[string]interface{}{
		"phase": string(phase),
	}})

	switch phase {
	case pomodoro.PhaseBreak:
		ex := exercise.SitToStand
		if !a.calibration.IsCalibrated() {
			ex = exercise.Squats
		}
		if err := a.StartExercise(ex, time.Now()); err != nil {
			log.Printf("Failed to start exercise session: %v", err)
		}
	case pomodoro.PhaseWork, pomodoro.PhaseIdle:
		if err := a.StopExercise(time.Now()); err != nil {
			log.Printf("Failed to finish exercise session: %v", err)
		}
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	if a.mode == mode {
		a.mu.Unlock()
		return
	}
	a.mode = mode
	a.mu.Unlock()

	a.emit(Event{Type: "mode_changed", Payload: map[string]interface{}{
		"mode": string(mode),
	}})
}

func (a *App) emit(evt Event) {
	if a.OnEvent != nil {
		a.OnEvent(evt)
	}
}

// Start opens the camera and begins the frame-processing pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Processing pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()

	a.timer.Stop()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	if closer, ok := a.audio.(interface{ Close() }); ok {
		closer.Close()
	}

	log.Println("Processing pipeline stopped")
}
