package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Whisper transcribes kiosk recordings with the OpenAI audio API.
type Whisper struct {
	client   *openai.Client
	source   AudioSource
	language string
}

// NewWhisper builds a recognizer over the given microphone. Callers pass
// option.WithAPIKey; tests add option.WithBaseURL to point at a mock.
func NewWhisper(source AudioSource, language string, opts ...option.RequestOption) *Whisper {
	client := openai.NewClient(opts...)
	return &Whisper{
		client:   &client,
		source:   source,
		language: language,
	}
}

// Listen records one clip and returns its transcript.
func (w *Whisper) Listen(ctx context.Context) (Transcript, error) {
	clip, err := w.source.NextClip(ctx)
	if err != nil {
		return Transcript{}, fmt.Errorf("record clip: %w", err)
	}
	if len(clip) == 0 {
		return Transcript{}, errors.New("empty recording")
	}

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(clip), "clip.wav", "audio/wav"),
	}
	if w.language != "" {
		params.Language = openai.String(w.language)
	}

	result, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return Transcript{}, ErrNoSpeech
	}
	return Transcript{Text: text, Confidence: 1}, nil
}
