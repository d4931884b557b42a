// Package media provides the kiosk's camera and microphone feeds. The
// default transport is MQTT: the kiosk device streams JPEG frames and
// voice clips on its topics and accepts on/off commands, so the service
// owns the capture lifecycle without touching hardware directly.
package media

import (
	"context"
	"errors"
)

var (
	ErrAlreadyStarted = errors.New("source already started")
	ErrNotStarted     = errors.New("source not started")
	ErrNoFrame        = errors.New("no frame available yet")
)

// Source is a live camera feed. At most one consumer holds a started
// source; starting twice without stopping is rejected.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	// Frame returns the most recent still. It does not wait: before the
	// first frame arrives it reports ErrNoFrame.
	Frame() ([]byte, error)
}

// Topic layout per kiosk. The device publishes frames and clips; the
// service publishes commands and greetings.
func FrameTopic(kioskID string) string     { return "kiosk/" + kioskID + "/camera/frames" }
func CameraCmdTopic(kioskID string) string { return "kiosk/" + kioskID + "/camera/cmd" }
func ClipTopic(kioskID string) string      { return "kiosk/" + kioskID + "/voice/clips" }
func VoiceCmdTopic(kioskID string) string  { return "kiosk/" + kioskID + "/voice/cmd" }
func GreetingTopic(kioskID string) string  { return "kiosk/" + kioskID + "/greetings" }
