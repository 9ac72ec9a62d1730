package notify

import (
	"context"
	"testing"
	"time"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("sess-1", 4)
	defer cancel()

	otherCh, otherCancel := hub.Subscribe("sess-2", 4)
	defer otherCancel()

	event := domain.LiveEvent{SessionID: "sess-1", Seq: 1, Type: domain.EventTypeSighting}
	hub.EventAppended(context.Background(), event)

	select {
	case got := <-ch:
		if got.Seq != 1 {
			t.Fatalf("seq = %d, want 1", got.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case got := <-otherCh:
		t.Fatalf("unexpected event for other session: %+v", got)
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("sess-1", 1)
	defer cancel()

	hub.EventAppended(context.Background(), domain.LiveEvent{SessionID: "sess-1", Seq: 1, Type: domain.EventTypeSighting})
	hub.EventAppended(context.Background(), domain.LiveEvent{SessionID: "sess-1", Seq: 2, Type: domain.EventTypeSighting})

	got := <-ch
	if got.Seq != 1 {
		t.Fatalf("seq = %d, want 1", got.Seq)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected second event to be dropped, got %+v", extra)
	default:
	}
}

func TestHubNeverDropsDistress(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("sess-1", 1)
	defer cancel()

	hub.EventAppended(context.Background(), domain.LiveEvent{SessionID: "sess-1", Seq: 1, Type: domain.EventTypeSighting})
	hub.EventAppended(context.Background(), domain.LiveEvent{SessionID: "sess-1", Seq: 2, Type: domain.EventTypeDistress})

	first := <-ch
	if first.Seq != 1 {
		t.Fatalf("first seq = %d, want 1", first.Seq)
	}

	select {
	case got := <-ch:
		if !got.Distress() {
			t.Fatalf("expected distress event, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for distress event")
	}
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("sess-1", 1)

	cancel()
	cancel()

	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed after cancel")
	}

	// Appending after cancel must not panic or deliver.
	hub.EventAppended(context.Background(), domain.LiveEvent{SessionID: "sess-1", Seq: 1, Type: domain.EventTypeSighting})
}

func TestMultiFansOut(t *testing.T) {
	var calls int
	n := Multi(
		NotifierFunc(func(ctx context.Context, event domain.LiveEvent) { calls++ }),
		nil,
		NotifierFunc(func(ctx context.Context, event domain.LiveEvent) { calls++ }),
	)
	n.EventAppended(context.Background(), domain.LiveEvent{SessionID: "sess-1"})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
