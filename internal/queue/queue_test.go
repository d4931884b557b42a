package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	if err := q.Publish(ctx, RecordLogged("rec-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ch, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	select {
	case msg := <-ch:
		if msg.Type != TypeRecordLogged {
			t.Errorf("expected type %s, got %s", TypeRecordLogged, msg.Type)
		}
		if string(msg.Body) != "rec-1" {
			t.Errorf("expected body rec-1, got %s", msg.Body)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Publish(ctx, RecordLogged("rec-1")); err == nil {
		t.Fatal("expected error publishing to full queue with cancelled context")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: "record.logged", Body: []byte("abc|with|pipes")}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != msg.Type {
		t.Errorf("type mismatch: %s vs %s", got.Type, msg.Type)
	}
	if string(got.Body) != string(msg.Body) {
		t.Errorf("body mismatch: %s vs %s", got.Body, msg.Body)
	}
}

func TestDeserializeWithoutType(t *testing.T) {
	got, err := deserialize("no-separator-here")
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != "" {
		t.Errorf("expected empty type, got %s", got.Type)
	}
	if string(got.Body) != "no-separator-here" {
		t.Errorf("expected body preserved, got %s", got.Body)
	}
}
