package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shubham852v/ai-attendance/internal/media"
	"github.com/shubham852v/ai-attendance/internal/metrics"
	"github.com/shubham852v/ai-attendance/internal/speech"
	"github.com/shubham852v/ai-attendance/internal/vision"
)

// Controller owns one capture session at a time: the camera stream, at
// most one pending still, the face-detected gate, and at most one
// pending name. A mutex serializes state access; the busy marker keeps
// at most one outbound call in flight and blocks Retake while it runs.
type Controller struct {
	source     media.Source
	classifier vision.Classifier
	recognizer speech.Recognizer
	records    RecordWriter

	callTimeout time.Duration
	messageTTL  time.Duration

	mu           sync.Mutex
	state        State
	busy         bool
	image        string // JPEG data URI of the held still
	faceDetected bool
	name         string
	message      string
	messageUntil time.Time
}

// New builds a controller. classifier and recognizer may be nil when the
// matching service is not configured; the affected actions then fail
// with a clear message instead of crashing.
func New(source media.Source, classifier vision.Classifier, recognizer speech.Recognizer, records RecordWriter, cfg Config) *Controller {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.MessageTTL <= 0 {
		cfg.MessageTTL = 4 * time.Second
	}
	return &Controller{
		source:      source,
		classifier:  classifier,
		recognizer:  recognizer,
		records:     records,
		callTimeout: cfg.CallTimeout,
		messageTTL:  cfg.MessageTTL,
		state:       StateIdle,
	}
}

// Snapshot returns the current session state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.message != "" && time.Now().After(c.messageUntil) {
		c.message = ""
	}
	return Snapshot{
		State:        c.state,
		Busy:         c.busy,
		Image:        c.image,
		FaceDetected: c.faceDetected,
		Name:         c.name,
		Message:      c.message,
	}
}

// StartCamera opens the live preview. Only valid in Idle; a device
// failure leaves the session in Idle with a message.
func (c *Controller) StartCamera(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("start camera from %s: %w", c.state, ErrInvalidState)
	}
	c.busy = true
	c.mu.Unlock()

	err := c.restartCamera(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.setMessage("Could not access webcam")
		observe("start_camera", "error")
		return fmt.Errorf("start camera: %w", err)
	}
	c.state = StateCameraActive
	observe("start_camera", "ok")
	return nil
}

// CaptureImage grabs the current frame, holds it as a data URI, and
// releases the camera. If no frame has arrived yet the preview keeps
// running and the user may try again.
func (c *Controller) CaptureImage(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != StateCameraActive {
		c.mu.Unlock()
		return fmt.Errorf("capture from %s: %w", c.state, ErrInvalidState)
	}
	c.busy = true
	c.mu.Unlock()

	frame, err := c.source.Frame()
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.busy = false
		c.setMessage("Camera not ready yet")
		observe("capture_image", "error")
		return fmt.Errorf("grab frame: %w", err)
	}
	// the preview is done once a still is held
	if err := c.source.Stop(); err != nil {
		log.Printf("release camera after capture: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.image = vision.EncodeDataURI(frame)
	c.faceDetected = false
	c.state = StateCaptured
	observe("capture_image", "ok")
	return nil
}

// ProcessImage sends the held still to the classifier. A positive
// verdict clears any stale name and opens the gate; any other verdict
// surfaces the returned message and stays in Captured so the user may
// re-attempt or retake.
func (c *Controller) ProcessImage(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != StateCaptured {
		c.mu.Unlock()
		return fmt.Errorf("classify from %s: %w", c.state, ErrInvalidState)
	}
	if c.classifier == nil {
		c.setMessage("Image classifier is not configured")
		c.mu.Unlock()
		return ErrClassifierUnavailable
	}
	img := c.image
	c.busy = true
	c.mu.Unlock()

	verdict, err := c.classify(ctx, img)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		metrics.ClassifierVerdicts.WithLabelValues("error").Inc()
		c.setMessage("Image processing failed")
		observe("process_image", "error")
		return fmt.Errorf("classify image: %w", err)
	}
	c.setMessage(verdict.Message)
	if !verdict.FaceDetected() {
		metrics.ClassifierVerdicts.WithLabelValues("no_face").Inc()
		observe("process_image", "ok")
		return nil
	}
	metrics.ClassifierVerdicts.WithLabelValues("face").Inc()
	c.name = "" // a name heard for an earlier image must not survive
	c.faceDetected = true
	c.state = StateReadyForName
	observe("process_image", "ok")
	return nil
}

// StartVoiceInput runs one speech recognition session and, on a final
// transcript, immediately writes the attendance record as part of the
// same transition. A recognition error discards the partial name and
// returns to ReadyForName; a write failure keeps the image and the gate
// so voice input can simply be retried.
func (c *Controller) StartVoiceInput(ctx context.Context, subject string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != StateReadyForName {
		c.mu.Unlock()
		return fmt.Errorf("voice input from %s: %w", c.state, ErrInvalidState)
	}
	if c.recognizer == nil {
		c.setMessage("Voice input is not supported on this kiosk")
		c.mu.Unlock()
		return ErrVoiceUnsupported
	}
	img := c.image
	c.busy = true
	c.state = StateListening
	c.mu.Unlock()

	listenCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	transcript, err := c.recognizer.Listen(listenCtx)
	cancel()

	name := strings.TrimSpace(transcript.Text)
	if err == nil && name == "" {
		err = speech.ErrNoSpeech
	}
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.busy = false
		c.state = StateReadyForName
		c.name = ""
		if errors.Is(err, speech.ErrNoSpeech) {
			c.setMessage("No speech detected")
		} else {
			c.setMessage("Voice recognition failed")
		}
		observe("voice_input", "error")
		return fmt.Errorf("listen for name: %w", err)
	}

	// final transcript received: store the name and log it in the same
	// transition, with no separate confirmation step
	c.mu.Lock()
	c.name = name
	c.state = StateLogging
	c.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	rec, err := c.records.Log(writeCtx, name, img, subject)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.name = ""
	if err != nil {
		c.state = StateReadyForName
		c.setMessage("Could not save attendance")
		observe("voice_input", "error")
		return fmt.Errorf("write record: %w", err)
	}
	c.faceDetected = false
	c.state = StateCaptured // the still stays visible until an explicit retake
	c.setMessage("Attendance logged for " + rec.PersonName)
	observe("voice_input", "ok")
	return nil
}

// Retake discards the held still, the pending name, and the gate, then
// restarts the camera. It is blocked while any outbound call is in
// flight so an in-flight response never lands in a discarded session.
func (c *Controller) Retake(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	switch c.state {
	case StateIdle, StateCaptured, StateReadyForName:
	default:
		c.mu.Unlock()
		return fmt.Errorf("retake from %s: %w", c.state, ErrInvalidState)
	}
	c.image = ""
	c.name = ""
	c.faceDetected = false
	c.state = StateIdle
	c.busy = true
	c.mu.Unlock()

	err := c.restartCamera(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.setMessage("Could not access webcam")
		observe("retake", "error")
		return fmt.Errorf("restart camera: %w", err)
	}
	c.state = StateCameraActive
	observe("retake", "ok")
	return nil
}

// Close releases the camera so no stream outlives the controller.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.state = StateIdle
	c.image = ""
	c.name = ""
	c.faceDetected = false
	c.mu.Unlock()
	return c.source.Stop()
}

// restartCamera routes every start through stop-then-start so a stale
// stream can never outlive a new one.
func (c *Controller) restartCamera(ctx context.Context) error {
	if err := c.source.Stop(); err != nil {
		log.Printf("stop camera before restart: %v", err)
	}
	startCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.source.Start(startCtx)
}

// classify decodes the held still and asks the classifier for a verdict
// within the call timeout.
func (c *Controller) classify(ctx context.Context, dataURI string) (vision.Result, error) {
	raw, err := vision.DecodeDataURI(dataURI)
	if err != nil {
		return vision.Result{}, fmt.Errorf("decode still: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.classifier.Detect(callCtx, raw)
}

// setMessage records an ephemeral status message; callers hold c.mu.
func (c *Controller) setMessage(msg string) {
	c.message = msg
	c.messageUntil = time.Now().Add(c.messageTTL)
}

func observe(action, outcome string) {
	metrics.CaptureActions.WithLabelValues(action, outcome).Inc()
}
