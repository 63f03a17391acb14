// Package audio provides the spoken-feedback and beep notification sink.
// All entry points are fire-and-forget: the frame-processing path is never
// blocked by playback.
package audio

import (
	"context"
	"log"
	"os/exec"
	"sync"
)

// queueSize bounds the number of pending queued announcements. Overflowing
// announcements are dropped rather than blocking the caller.
const queueSize = 16

// beepSound is the system sound played for confirmation tones.
const beepSound = "/System/Library/Sounds/Tink.aiff"

// speakFunc performs one utterance; it returns when playback finishes or
// the context is cancelled.
type speakFunc func(ctx context.Context, text string) error

// Speaker serializes speech on a single worker goroutine. SpeakNow cancels
// whatever is playing and speaks next; SpeakAfterCurrent queues behind the
// current utterance.
type Speaker struct {
	speak speakFunc
	beep  func()

	now    chan string
	queue  chan string
	closed chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSpeaker creates a Speaker backed by the macOS `say` and `afplay`
// commands and starts its worker.
func NewSpeaker() *Speaker {
	return newSpeaker(speakCommand, beepCommand)
}

func newSpeaker(speak speakFunc, beep func()) *Speaker {
	s := &Speaker{
		speak:  speak,
		beep:   beep,
		now:    make(chan string, 1),
		queue:  make(chan string, queueSize),
		closed: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// SpeakNow interrupts any current speech and speaks text next.
func (s *Speaker) SpeakNow(text string) {
	s.interrupt()

	// Replace any pending immediate utterance.
	for {
		select {
		case s.now <- text:
			return
		case <-s.now:
		case <-s.closed:
			return
		}
	}
}

// SpeakAfterCurrent queues text to play after current speech finishes.
// The announcement is dropped if the queue is full.
func (s *Speaker) SpeakAfterCurrent(text string) {
	select {
	case s.queue <- text:
	default:
		log.Printf("Speech queue full, dropping announcement: %q", text)
	}
}

// Beep plays a short confirmation tone without touching the speech queue.
func (s *Speaker) Beep() {
	go s.beep()
}

// Close stops the worker. Pending queued announcements are discarded.
func (s *Speaker) Close() {
	close(s.closed)
	s.interrupt()
	s.wg.Wait()
}

func (s *Speaker) run() {
	defer s.wg.Done()
	for {
		// Immediate utterances win over queued ones.
		select {
		case <-s.closed:
			return
		case text := <-s.now:
			s.play(text)
			continue
		default:
		}

		select {
		case <-s.closed:
			return
		case text := <-s.now:
			s.play(text)
		case text := <-s.queue:
			s.play(text)
		}
	}
}

func (s *Speaker) play(text string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if err := s.speak(ctx, text); err != nil && ctx.Err() == nil {
		log.Printf("Speech failed: %v", err)
	}

	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()
	cancel()
}

func (s *Speaker) interrupt() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
}

func speakCommand(ctx context.Context, text string) error {
	return exec.CommandContext(ctx, "say", text).Run()
}

func beepCommand() {
	if err := exec.Command("afplay", beepSound).Run(); err != nil {
		log.Printf("Beep failed: %v", err)
	}
}
