// Package tray provides the macOS system tray interface for Movedoro.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onStartPause func()
	onSkip       func()
	onCalibrate  func()
	onReport     func()
	onQuit       func()
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuTimer      *systray.MenuItem
	menuStartPause *systray.MenuItem
	menuReps       *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnStartPause sets the callback for the start/pause menu item.
func (t *Tray) OnStartPause(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStartPause = fn
}

// OnSkip sets the callback for the skip menu item.
func (t *Tray) OnSkip(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSkip = fn
}

// OnCalibrate sets the callback for the calibrate menu item.
func (t *Tray) OnCalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCalibrate = fn
}

// OnReport sets the callback for the report menu item.
func (t *Tray) OnReport(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReport = fn
}

// OnQuit sets the callback to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Movedoro")
	systray.SetTooltip("Movedoro exercise breaks")

	t.menuTimer = systray.AddMenuItem("Timer: idle", "Current timer phase")
	t.menuTimer.Disable()
	t.menuReps = systray.AddMenuItem("Reps: 0", "Reps this break")
	t.menuReps.Disable()
	systray.AddSeparator()

	t.menuStartPause = systray.AddMenuItem("Start Timer", "Start or pause the timer")
	menuSkip := systray.AddMenuItem("Skip Phase", "Skip to the next phase")
	systray.AddSeparator()

	menuCalibrate := systray.AddMenuItem("Calibrate...", "Run the sit-to-stand calibration")
	menuReport := systray.AddMenuItem("Open Report...", "Open the session report in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Movedoro")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuStartPause.ClickedCh:
				t.invoke(&t.onStartPause)
			case <-menuSkip.ClickedCh:
				t.invoke(&t.onSkip)
			case <-menuCalibrate.ClickedCh:
				t.invoke(&t.onCalibrate)
			case <-menuReport.ClickedCh:
				t.invoke(&t.onReport)
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// invoke runs a registered callback, reading it under the lock.
func (t *Tray) invoke(fn *func()) {
	t.mu.RLock()
	callback := *fn
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetTimer updates the timer display in the menu and the start/pause label.
func (t *Tray) SetTimer(phase, remaining string, running bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuTimer != nil {
		t.menuTimer.SetTitle("Timer: " + phase + " " + remaining)
	}
	if t.menuStartPause != nil {
		if running {
			t.menuStartPause.SetTitle("Pause Timer")
		} else {
			t.menuStartPause.SetTitle("Start Timer")
		}
	}
}

// SetReps updates the rep counter display in the menu. scored is false
// for counter exercises, which have no per-rep quality score; the
// percentage is omitted rather than shown as zero.
func (t *Tray) SetReps(count, score int, scored bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuReps != nil {
		t.menuReps.SetTitle(formatReps(count, score, scored))
	}
}

func formatReps(count, score int, scored bool) string {
	if !scored || count == 0 {
		return fmt.Sprintf("Reps: %d", count)
	}
	return fmt.Sprintf("Reps: %d (last %d%%)", count, score)
}
