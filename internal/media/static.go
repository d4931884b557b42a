package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// Static is an in-process Source that always serves the same frame. It
// stands in for the kiosk camera in development and tests.
type Static struct {
	mu      sync.Mutex
	frame   []byte
	started bool
}

// NewStatic builds a static source around one JPEG frame.
func NewStatic(frame []byte) *Static {
	return &Static{frame: frame}
}

// Start claims the source.
func (s *Static) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	return nil
}

// Stop releases the source.
func (s *Static) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

// Frame returns the configured frame.
func (s *Static) Frame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	if len(s.frame) == 0 {
		return nil, ErrNoFrame
	}
	return s.frame, nil
}

// PlaceholderFrame renders a small gray JPEG for static sources that were
// not given a real image.
func PlaceholderFrame() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}); err != nil {
		return nil
	}
	return buf.Bytes()
}
