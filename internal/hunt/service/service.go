// Package service implements the group-hunt coordination engine. One
// HuntService composes the session lifecycle, participant registry, stand
// assignment, drive phases, live event feed, and harvest ledger on top of the
// storage interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/id"
	"github.com/wieslogic/jagdlog/internal/notify"
	"github.com/wieslogic/jagdlog/internal/storage"
)

// Stores groups the storage interfaces the engine consumes.
type Stores struct {
	Sessions     storage.SessionStore
	Participants storage.ParticipantStore
	Stands       storage.StandStore
	Assignments  storage.AssignmentStore
	Drives       storage.DriveStore
	Events       storage.EventStore
	Harvests     storage.HarvestStore
}

// HuntService coordinates one or more hunt sessions. All mutating operations
// that touch session-wide shared state serialize on a per-session lock, so
// the exclusivity invariants hold under arbitrary concurrent callers.
type HuntService struct {
	stores      Stores
	clock       func() time.Time
	idGenerator func() (string, error)
	notifier    notify.Notifier
	locks       sessionLocks
}

// Option configures a HuntService.
type Option func(*HuntService)

// WithClock overrides the service clock, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *HuntService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides the identifier generator, mainly for tests.
func WithIDGenerator(idGenerator func() (string, error)) Option {
	return func(s *HuntService) {
		if idGenerator != nil {
			s.idGenerator = idGenerator
		}
	}
}

// WithNotifier attaches the notifier invoked after every durable event append.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *HuntService) {
		s.notifier = notifier
	}
}

// New creates a HuntService backed by the provided stores.
func New(stores Stores, opts ...Option) *HuntService {
	svc := &HuntService{
		stores:      stores,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// emitEvent appends a live event and notifies subscribers. Callers that
// mutate shared session state must already hold the session lock; the append
// is the last write of the operation so the feed reflects committed state.
func (s *HuntService) emitEvent(ctx context.Context, sessionID string, typ domain.LiveEventType, origin string, payload any, visibility domain.EventVisibility) (domain.LiveEvent, error) {
	data, err := domain.EncodePayload(payload)
	if err != nil {
		return domain.LiveEvent{}, fmt.Errorf("encode event payload: %w", err)
	}

	eventID, err := s.idGenerator()
	if err != nil {
		return domain.LiveEvent{}, fmt.Errorf("generate event id: %w", err)
	}
	if visibility == domain.VisibilityUnspecified {
		visibility = domain.VisibilityEveryone
	}
	if origin == "" {
		origin = domain.SystemOrigin
	}

	stored, err := s.stores.Events.AppendEvent(ctx, domain.LiveEvent{
		ID:          eventID,
		SessionID:   sessionID,
		Type:        typ,
		Timestamp:   s.clock().UTC(),
		Origin:      origin,
		PayloadJSON: data,
		Visibility:  visibility,
	})
	if err != nil {
		return domain.LiveEvent{}, fmt.Errorf("append event: %w", err)
	}

	if s.notifier != nil {
		s.notifier.EventAppended(ctx, stored)
	}
	return stored, nil
}

// getSession loads a session, mapping missing records to the engine taxonomy.
func (s *HuntService) getSession(ctx context.Context, sessionID string) (domain.HuntSession, error) {
	session, err := s.stores.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.HuntSession{}, mapStorageErr(err, "session")
	}
	return session, nil
}

// mapStorageErr translates storage sentinels into engine errors.
func mapStorageErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return apperrors.Wrap(apperrors.CodeNotFound, entity+" not found", err)
	default:
		return err
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
