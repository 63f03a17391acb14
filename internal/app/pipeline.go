package app

import (
	"log"
	"time"
)

// runPipeline is the frame-processing loop. It throttles the camera with
// motion detection: idle frame rate while the scene is still, active
// frame rate while the user moves. Every sampled frame in active mode
// goes through pose detection and into processSnapshot.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			a.timer.Tick(now)

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = now
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if now.Sub(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// The state machines only need frames while calibrating or
			// tracking, and only when someone is in front of the camera.
			if a.Mode() == ModeIdle || (!activeMode && a.Mode() != ModeCalibrating) {
				frame.Close()
				continue
			}

			d := a.Detector()
			if d == nil {
				frame.Close()
				continue
			}

			snap, err := d.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting pose: %v", err)
				continue
			}

			a.processSnapshot(snap, now)
		}
	}
}
