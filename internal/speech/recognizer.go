// Package speech turns one spoken utterance into text. Recognition is
// delegated to a hosted transcription service; the kiosk microphone
// supplies the audio clip.
package speech

import (
	"context"
	"errors"
)

// ErrNoSpeech reports a recording the service could not find words in.
var ErrNoSpeech = errors.New("no speech detected")

// Transcript is one finished recognition result.
type Transcript struct {
	Text       string
	Confidence float64
}

// AudioSource records a single clip on demand.
type AudioSource interface {
	NextClip(ctx context.Context) ([]byte, error)
}

// Recognizer captures one utterance and transcribes it.
type Recognizer interface {
	Listen(ctx context.Context) (Transcript, error)
}
