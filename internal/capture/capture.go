// Package capture drives the kiosk attendance workflow: camera on, grab
// a still, confirm a face, take a spoken name, write the record. The
// whole session lives in one explicit state value, and collaborators are
// injected so the workflow runs the same against live services or test
// fakes.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/shubham852v/ai-attendance/internal/record"
)

// State is the single active phase of the capture workflow.
type State string

const (
	StateIdle         State = "idle"           // no stream, no pending work
	StateCameraActive State = "camera_active"  // live preview running
	StateCaptured     State = "captured"       // still held, not yet classified
	StateReadyForName State = "ready_for_name" // face confirmed, waiting for a name
	StateListening    State = "listening"      // speech session running
	StateLogging      State = "logging"        // record write in flight
)

var (
	// ErrInvalidState rejects an action whose preconditions the current
	// state does not meet.
	ErrInvalidState = errors.New("action not available in this state")
	// ErrBusy rejects any action while an outbound call is in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrVoiceUnsupported reports that no speech recognizer is configured.
	ErrVoiceUnsupported = errors.New("voice input not supported")
	// ErrClassifierUnavailable reports that no classifier is configured.
	ErrClassifierUnavailable = errors.New("classifier not configured")
)

// RecordWriter stores one attendance record per call. *record.Service
// satisfies it; tests substitute fakes.
type RecordWriter interface {
	Log(ctx context.Context, personName, image, loggedBy string) (record.Record, error)
}

// Config tunes the controller.
type Config struct {
	// CallTimeout bounds each outbound call (classification, recognition,
	// record write). Expiry rolls the session back exactly like a failed
	// call.
	CallTimeout time.Duration
	// MessageTTL is how long a status message stays visible in snapshots.
	MessageTTL time.Duration
}

// Snapshot is the controller state a UI renders. Messages are ephemeral
// and disappear from snapshots once their display interval has passed.
type Snapshot struct {
	State        State  `json:"state"`
	Busy         bool   `json:"busy"`
	Image        string `json:"image,omitempty"`
	FaceDetected bool   `json:"face_detected"`
	Name         string `json:"recognized_name,omitempty"`
	Message      string `json:"message,omitempty"`
}
