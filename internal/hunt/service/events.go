package service

import (
	"context"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

// AppendEventInput describes a caller-originated live event (sightings,
// distress signals, organizer announcements).
type AppendEventInput struct {
	SessionID  string
	Type       domain.LiveEventType
	Origin     string // participant id; empty means system
	Payload    any
	Visibility domain.EventVisibility
}

// AppendEvent appends a caller-originated event to the session feed. The
// append is durable before it returns; subscribers are notified afterwards.
func (s *HuntService) AppendEvent(ctx context.Context, input AppendEventInput) (domain.LiveEvent, error) {
	if !input.Type.IsValid() {
		return domain.LiveEvent{}, apperrors.WithMetadata(apperrors.CodeEventInvalidType,
			"live event type is not supported",
			map[string]string{"type": string(input.Type)})
	}
	if _, err := s.getSession(ctx, input.SessionID); err != nil {
		return domain.LiveEvent{}, err
	}

	unlock := s.locks.lock(input.SessionID)
	defer unlock()

	return s.emitEvent(ctx, input.SessionID, input.Type, input.Origin, input.Payload, input.Visibility)
}

// ListEventsSince returns events with Seq greater than afterSeq in ascending
// order, capped at limit (zero or less means no cap). A viewer scope of
// VisibilityEveryone hides organizer-only events; distress events are never
// hidden from any viewer. Calling again with the last seen sequence number
// resumes without gaps or duplicates.
func (s *HuntService) ListEventsSince(ctx context.Context, sessionID string, afterSeq uint64, limit int, viewer domain.EventVisibility) ([]domain.LiveEvent, error) {
	events, err := s.stores.Events.ListEventsSince(ctx, sessionID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if viewer != domain.VisibilityEveryone {
		return events, nil
	}

	// Filter into a fresh slice; the store may hand out a slice whose backing
	// array it still owns.
	filtered := make([]domain.LiveEvent, 0, len(events))
	for _, event := range events {
		if event.Visibility == domain.VisibilityOrganizersOnly && !event.Distress() {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered, nil
}
