package exercise

import (
	"fmt"
	"sync"

	"github.com/llermaly/movedoro-sub001/internal/pose"
)

// Counter counts repetitions for the single-predicate exercises (jumping
// jacks, squats, arm raises). No calibration and no hysteresis: a rep is
// counted on every true-to-false transition of the exercise predicate, and
// never on the rising edge. Process runs on the pipeline goroutine while
// RepCount is read from HTTP and tray goroutines; the OnRep callback fires
// without the lock held.
type Counter struct {
	exercise Exercise
	audio    Announcer

	mu       sync.Mutex
	prev     bool
	repCount int

	// OnRep is invoked after each counted repetition.
	OnRep func(count int)
}

// NewCounter creates a Counter for the given exercise. audio may be nil.
func NewCounter(exercise Exercise, audio Announcer) *Counter {
	return &Counter{exercise: exercise, audio: audio}
}

// Exercise returns the exercise this counter is configured for.
func (c *Counter) Exercise() Exercise { return c.exercise }

// RepCount returns the number of repetitions counted this session.
func (c *Counter) RepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repCount
}

// Reset restarts the count for a new session.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repCount = 0
	c.prev = false
}

// Process feeds one frame. Sustained true has no effect until the
// predicate returns to false.
func (c *Counter) Process(snap *pose.Snapshot) {
	active := c.exercise.Predicate(snap)

	c.mu.Lock()
	counted := c.prev && !active
	if counted {
		c.repCount++
	}
	count := c.repCount
	c.prev = active
	c.mu.Unlock()

	if counted {
		if c.audio != nil {
			c.audio.SpeakAfterCurrent(fmt.Sprintf("%d", count))
		}
		if c.OnRep != nil {
			c.OnRep(count)
		}
	}
}
