package media

import (
	"context"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connect dials the MQTT broker the kiosk devices talk to.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Camera is a Source backed by the kiosk camera topics. Start subscribes
// to the frame stream and turns the device camera on; Stop does the
// reverse. The latest received frame wins.
type Camera struct {
	client   mqtt.Client
	frames   string
	cmd      string
	commands bool

	mu      sync.Mutex
	frame   []byte
	started bool
}

// NewCamera builds a camera source for one kiosk. When commands is false
// the device is assumed to stream continuously and no on/off messages
// are published.
func NewCamera(client mqtt.Client, kioskID string, commands bool) *Camera {
	return &Camera{
		client:   client,
		frames:   FrameTopic(kioskID),
		cmd:      CameraCmdTopic(kioskID),
		commands: commands,
	}
}

// Start opens the frame stream.
func (c *Camera) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.frame = nil
	c.mu.Unlock()

	if err := waitToken(ctx, c.client.Subscribe(c.frames, 0, c.onFrame)); err != nil {
		c.reset()
		return err
	}
	if c.commands {
		if err := waitToken(ctx, c.client.Publish(c.cmd, 0, false, []byte("on"))); err != nil {
			c.client.Unsubscribe(c.frames)
			c.reset()
			return err
		}
	}
	return nil
}

// Stop closes the frame stream and turns the device camera off.
func (c *Camera) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	defer c.reset()

	if c.commands {
		if token := c.client.Publish(c.cmd, 0, false, []byte("off")); token.Wait() && token.Error() != nil {
			log.Printf("camera off command failed: %v", token.Error())
		}
	}
	if token := c.client.Unsubscribe(c.frames); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Frame returns the most recent still from the stream.
func (c *Camera) Frame() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil, ErrNotStarted
	}
	if c.frame == nil {
		return nil, ErrNoFrame
	}
	return c.frame, nil
}

func (c *Camera) onFrame(_ mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	buf := make([]byte, len(payload))
	copy(buf, payload)

	c.mu.Lock()
	if c.started {
		c.frame = buf
	}
	c.mu.Unlock()
}

func (c *Camera) reset() {
	c.mu.Lock()
	c.started = false
	c.frame = nil
	c.mu.Unlock()
}

// Mic yields voice clips recorded by the kiosk. Each NextClip asks the
// device to record once and waits for the resulting clip; the payload is
// a self-contained audio file the transcription service accepts.
type Mic struct {
	client mqtt.Client
	clips  string
	cmd    string

	mu         sync.Mutex
	subscribed bool
	ch         chan []byte
}

// NewMic builds a microphone source for one kiosk.
func NewMic(client mqtt.Client, kioskID string) *Mic {
	return &Mic{
		client: client,
		clips:  ClipTopic(kioskID),
		cmd:    VoiceCmdTopic(kioskID),
		ch:     make(chan []byte, 1),
	}
}

// NextClip triggers one recording and returns its audio bytes.
func (m *Mic) NextClip(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	if !m.subscribed {
		if err := waitToken(ctx, m.client.Subscribe(m.clips, 0, m.onClip)); err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.subscribed = true
	}
	m.mu.Unlock()

	// drop a stale clip left over from an aborted session
	select {
	case <-m.ch:
	default:
	}

	if err := waitToken(ctx, m.client.Publish(m.cmd, 0, false, []byte("listen"))); err != nil {
		return nil, err
	}

	select {
	case clip := <-m.ch:
		return clip, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Mic) onClip(_ mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	buf := make([]byte, len(payload))
	copy(buf, payload)

	select {
	case m.ch <- buf:
	default:
	}
}
