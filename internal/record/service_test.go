package record

import (
	"context"
	"testing"
	"time"

	"github.com/shubham852v/ai-attendance/internal/queue"
)

func TestLogValidates(t *testing.T) {
	svc := NewService(testRepo(t), nil)
	ctx := context.Background()

	if _, err := svc.Log(ctx, "", "data:,x", "op"); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := svc.Log(ctx, "   ", "data:,x", "op"); err == nil {
		t.Error("expected error for whitespace name")
	}
	if _, err := svc.Log(ctx, "Alice", "", "op"); err == nil {
		t.Error("expected error for missing image")
	}

	if got, err := svc.List(ctx, "", 10, 0); err != nil || len(got) != 0 {
		t.Errorf("rejected writes must not reach the store: %v %d", err, len(got))
	}
}

func TestLogTrimsName(t *testing.T) {
	svc := NewService(testRepo(t), nil)

	rec, err := svc.Log(context.Background(), "  Alice  ", "data:,x", "op")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if rec.PersonName != "Alice" {
		t.Errorf("expected trimmed name, got %q", rec.PersonName)
	}
}

func TestLogPublishesEvent(t *testing.T) {
	q := queue.NewInMemory(4)
	svc := NewService(testRepo(t), q)

	rec, err := svc.Log(context.Background(), "Alice", "data:,x", "op")
	if err != nil {
		t.Fatalf("log: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case msg := <-msgs:
		if msg.Type != queue.TypeRecordLogged {
			t.Errorf("unexpected type %q", msg.Type)
		}
		if string(msg.Body) != rec.ID {
			t.Errorf("expected record id body, got %q", msg.Body)
		}
	case <-ctx.Done():
		t.Fatal("no event published")
	}
}

func TestListDay(t *testing.T) {
	svc := NewService(testRepo(t), nil)
	ctx := context.Background()

	if _, err := svc.Log(ctx, "Alice", "data:,x", "op"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, err := svc.Log(ctx, "Bob", "data:,x", "op"); err != nil {
		t.Fatalf("log: %v", err)
	}

	today, err := svc.ListDay(ctx, "")
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	if len(today) != 2 {
		t.Errorf("expected 2 records for today, got %d", len(today))
	}

	past, err := svc.ListDay(ctx, "2001-01-02")
	if err != nil {
		t.Fatalf("list past day: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("expected no records on a past day, got %d", len(past))
	}

	if _, err := svc.ListDay(ctx, "not-a-day"); err == nil {
		t.Error("expected error for malformed day")
	}
}
