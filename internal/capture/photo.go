package capture

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/llermaly/movedoro-sub001/internal/exercise"
)

// PhotoTaker saves break photos at repetition extrema. Requests are
// fire-and-forget: the frame is grabbed and written on a separate
// goroutine so the processing loop never waits on disk or camera I/O.
type PhotoTaker struct {
	camera Camera
	dir    string

	// OnSaved is invoked after a photo has been written to disk.
	OnSaved func(id string, rep int, position exercise.PhotoPosition, path string)
}

// NewPhotoTaker creates a PhotoTaker writing JPEGs under dir, creating the
// directory if needed.
func NewPhotoTaker(camera Camera, dir string) (*PhotoTaker, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create photo directory: %w", err)
	}
	return &PhotoTaker{camera: camera, dir: dir}, nil
}

// RequestPhoto captures and saves a photo for the given repetition.
// Implements the exercise.PhotoTaker contract.
func (p *PhotoTaker) RequestPhoto(rep int, position exercise.PhotoPosition) {
	go p.capture(rep, position)
}

func (p *PhotoTaker) capture(rep int, position exercise.PhotoPosition) {
	frame, err := p.camera.ReadFrame()
	if err != nil {
		log.Printf("Photo capture failed for rep %d (%s): %v", rep, position, err)
		return
	}
	defer frame.Close()

	id := uuid.NewString()
	path := filepath.Join(p.dir, fmt.Sprintf("rep%03d_%s_%s.jpg", rep, position, id[:8]))

	if ok := gocv.IMWrite(path, *frame); !ok {
		log.Printf("Failed to write photo %s", path)
		return
	}

	log.Printf("Saved %s photo for rep %d: %s", position, rep, path)
	if p.OnSaved != nil {
		p.OnSaved(id, rep, position, path)
	}
}
