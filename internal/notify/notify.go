// Package notify fans live events out to in-process subscribers. The hub sits
// behind the engine's append path: every stored event is offered to the
// session's subscribers exactly once, best effort.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

// Notifier receives events after they are durably appended to the feed.
type Notifier interface {
	EventAppended(ctx context.Context, event domain.LiveEvent)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event domain.LiveEvent)

// EventAppended calls f.
func (f NotifierFunc) EventAppended(ctx context.Context, event domain.LiveEvent) {
	if f != nil {
		f(ctx, event)
	}
}

// subscriber is one live feed consumer attached to a session.
type subscriber struct {
	ch chan domain.LiveEvent
}

// Hub delivers appended events to per-session subscriber channels. Delivery
// is non-blocking: when a subscriber's buffer is full the event is dropped
// for that subscriber, except distress events, which are handed off to a
// goroutine so they always arrive.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*subscriber]struct{})}
}

// Subscribe attaches a consumer to a session feed. The returned cancel
// function detaches the consumer and closes its channel; it is safe to call
// more than once.
func (h *Hub) Subscribe(sessionID string, buffer int) (<-chan domain.LiveEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscriber{ch: make(chan domain.LiveEvent, buffer)}

	h.mu.Lock()
	subs, ok := h.sessions[sessionID]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.sessions[sessionID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.sessions[sessionID]; ok {
				delete(subs, sub)
				if len(subs) == 0 {
					delete(h.sessions, sessionID)
				}
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// EventAppended fans the event out to the session's subscribers.
func (h *Hub) EventAppended(ctx context.Context, event domain.LiveEvent) {
	if h == nil {
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.sessions[event.SessionID]))
	for sub := range h.sessions[event.SessionID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- event:
		default:
			if !event.Distress() {
				continue
			}
			// Distress must not be dropped; deliver it off the append path.
			go func(sub *subscriber) {
				defer func() {
					// The subscriber may cancel while the send is in flight.
					_ = recover()
				}()
				select {
				case sub.ch <- event:
				case <-ctx.Done():
				}
			}(sub)
		}
	}
}

// LogNotifier writes appended events to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs every appended event.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// EventAppended logs the appended event.
func (n *LogNotifier) EventAppended(ctx context.Context, event domain.LiveEvent) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.LogAttrs(ctx, slog.LevelInfo, "live event appended",
		slog.String("session_id", event.SessionID),
		slog.Uint64("seq", event.Seq),
		slog.String("type", string(event.Type)),
		slog.String("origin", event.Origin),
	)
}

// Multi fans one notification out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, event domain.LiveEvent) {
		for _, n := range notifiers {
			if n != nil {
				n.EventAppended(ctx, event)
			}
		}
	})
}
