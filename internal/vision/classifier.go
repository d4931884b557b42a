// Package vision confirms a human face is present in a captured still
// before the attendance flow may proceed. Detection is delegated to a
// hosted model; every implementation answers with the same tiny verdict
// and the flow gates on the exact FaceDetectedMessage literal.
package vision

import (
	"context"
	_ "embed"
)

const (
	// FaceDetectedMessage is the only message value that opens the gate.
	FaceDetectedMessage = "Face detected"
	// StatusSuccess marks a verdict the classifier actually produced, as
	// opposed to a transport or service failure surfaced as an error.
	StatusSuccess = "success"
)

//go:embed prompts/face_detect.txt
var faceDetectPrompt string

// Result is the classifier verdict.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FaceDetected reports whether the verdict opens the gate.
func (r Result) FaceDetected() bool {
	return r.Status == StatusSuccess && r.Message == FaceDetectedMessage
}

// Classifier decides whether an image shows a clearly visible human face.
type Classifier interface {
	Detect(ctx context.Context, image []byte) (Result, error)
}
