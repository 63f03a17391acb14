package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/llermaly/movedoro-sub001/internal/app"
	"github.com/llermaly/movedoro-sub001/internal/pomodoro"
	"github.com/llermaly/movedoro-sub001/internal/server"
	"github.com/llermaly/movedoro-sub001/internal/store"
	"github.com/llermaly/movedoro-sub001/internal/tray"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		cameraID   = flag.Int("camera", 0, "camera device ID")
		workMins   = flag.Int("work", 25, "work interval in minutes")
		breakMins  = flag.Int("break", 5, "break interval in minutes")
		targetReps = flag.Int("reps", 10, "rep target that ends a break early")
	)
	flag.Parse()

	fmt.Println("Movedoro - exercise breaks for your Pomodoro")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".movedoro")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "movedoro.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a, err := app.New(app.Config{
		Store:    st,
		CameraID: *cameraID,
		PhotoDir: filepath.Join(dataDir, "photos"),
		Timer: pomodoro.Config{
			WorkDuration:  time.Duration(*workMins) * time.Minute,
			BreakDuration: time.Duration(*breakMins) * time.Minute,
			TargetReps:    *targetReps,
		},
	})
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	srv := server.New(server.Config{
		StaticDir: findWebDir(),
		Store:     st,
		App:       a,
	})

	t := tray.New()

	a.OnEvent = func(evt app.Event) {
		srv.Hub().Publish(evt)
		switch evt.Type {
		case "rep_completed":
			count, _ := evt.Payload["count"].(int)
			score, scored := evt.Payload["score"].(int)
			t.SetReps(count, score, scored)
		case "timer":
			updateTrayTimer(t, a)
		}
	}

	t.OnStartPause(func() {
		now := time.Now()
		timer := a.Timer()
		switch {
		case timer.Phase() == pomodoro.PhaseIdle:
			timer.Start(now)
		case timer.Paused():
			timer.Resume(now)
		default:
			timer.Pause(now)
		}
		updateTrayTimer(t, a)
	})
	t.OnSkip(func() {
		a.Timer().Skip(time.Now())
	})
	t.OnCalibrate(func() {
		a.StartCalibration()
	})
	t.OnReport(func() {
		openBrowser("http://localhost" + *addr + "/report")
	})
	t.OnQuit(func() {
		a.Stop()
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	go func() {
		log.Printf("Starting server on %s", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Keep the tray timer display current.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			updateTrayTimer(t, a)
		}
	}()

	// Blocks until Quit is chosen from the menu.
	t.Run()
}

func updateTrayTimer(t *tray.Tray, a *app.App) {
	timer := a.Timer()
	now := time.Now()
	remaining := timer.Remaining(now).Round(time.Second).String()
	if timer.Phase() == pomodoro.PhaseIdle {
		remaining = ""
	}
	running := timer.Phase() != pomodoro.PhaseIdle && !timer.Paused()
	t.SetTimer(string(timer.Phase()), remaining, running)
}

func openBrowser(url string) {
	if err := exec.Command("open", url).Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".movedoro", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
