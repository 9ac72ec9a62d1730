package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/storage"
)

// CreateSession creates a new hunt session in PLANNED status. Creation alone
// emits no live event; the feed starts with the first transition.
func (s *HuntService) CreateSession(ctx context.Context, input domain.CreateSessionInput) (domain.HuntSession, error) {
	session, err := domain.CreateSession(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.HuntSession{}, mapSessionInputErr(err)
	}
	if err := s.stores.Sessions.PutSession(ctx, session); err != nil {
		return domain.HuntSession{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// GetSession fetches a session by ID.
func (s *HuntService) GetSession(ctx context.Context, sessionID string) (domain.HuntSession, error) {
	return s.getSession(ctx, sessionID)
}

// ActivateSession transitions a session from PLANNED to ACTIVE. Activation
// requires at least one confirmed registrant.
func (s *HuntService) ActivateSession(ctx context.Context, sessionID string) (domain.HuntSession, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return domain.HuntSession{}, err
	}
	if !session.Status.CanTransitionTo(domain.SessionStatusActive) {
		return domain.HuntSession{}, apperrors.WithMetadata(apperrors.CodeSessionInvalidTransition,
			"session can only be activated from planned status",
			map[string]string{"status": session.Status.String()})
	}

	confirmed, err := s.countConfirmed(ctx, sessionID)
	if err != nil {
		return domain.HuntSession{}, err
	}
	if confirmed == 0 {
		return domain.HuntSession{}, apperrors.New(apperrors.CodeSessionNoConfirmedRegistrant,
			"session needs at least one confirmed registrant before activation")
	}

	return s.transition(ctx, session, domain.SessionStatusActive)
}

// CompleteSession transitions a session from ACTIVE to COMPLETED. The
// transition fails closed while a drive is still running; callers end drives
// explicitly first.
func (s *HuntService) CompleteSession(ctx context.Context, sessionID string) (domain.HuntSession, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return domain.HuntSession{}, err
	}
	if !session.Status.CanTransitionTo(domain.SessionStatusCompleted) {
		return domain.HuntSession{}, apperrors.WithMetadata(apperrors.CodeSessionInvalidTransition,
			"session can only be completed from active status",
			map[string]string{"status": session.Status.String()})
	}

	if _, err := s.stores.Drives.GetRunningDrive(ctx, sessionID); err == nil {
		return domain.HuntSession{}, apperrors.New(apperrors.CodeDriveStillRunning,
			"end the running drive before completing the session")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return domain.HuntSession{}, fmt.Errorf("check running drive: %w", err)
	}

	return s.transition(ctx, session, domain.SessionStatusCompleted)
}

// transition persists the status change and emits the system event. The
// caller holds the session lock and has already validated the move.
func (s *HuntService) transition(ctx context.Context, session domain.HuntSession, target domain.SessionStatus) (domain.HuntSession, error) {
	from := session.Status
	session.Status = target
	session.UpdatedAt = s.clock().UTC()
	if err := s.stores.Sessions.PutSession(ctx, session); err != nil {
		return domain.HuntSession{}, fmt.Errorf("store session: %w", err)
	}

	if _, err := s.emitEvent(ctx, session.ID, domain.EventTypeSessionStatusChanged, domain.SystemOrigin,
		domain.SessionStatusChangedPayload{
			FromStatus: from.String(),
			ToStatus:   target.String(),
		}, domain.VisibilityEveryone); err != nil {
		return domain.HuntSession{}, err
	}
	return session, nil
}

func (s *HuntService) countConfirmed(ctx context.Context, sessionID string) (int, error) {
	participants, err := s.stores.Participants.ListParticipants(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("list participants: %w", err)
	}
	confirmed := 0
	for _, p := range participants {
		if p.Registration.Status == domain.RegistrationStatusConfirmed {
			confirmed++
		}
	}
	return confirmed, nil
}

// requireMutable rejects mutating operations once the session completed.
func requireMutable(session domain.HuntSession) error {
	if session.Status == domain.SessionStatusCompleted {
		return apperrors.New(apperrors.CodeSessionCompleted, "session is completed and accepts no further changes")
	}
	return nil
}

// getMutableSession re-reads the session and rejects completed ones. Mutating
// operations call it after taking the session lock so a completion racing the
// pre-lock read cannot slip a write onto a completed session.
func (s *HuntService) getMutableSession(ctx context.Context, sessionID string) (domain.HuntSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return domain.HuntSession{}, err
	}
	if err := requireMutable(session); err != nil {
		return domain.HuntSession{}, err
	}
	return session, nil
}

func mapSessionInputErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptySessionName):
		return apperrors.Wrap(apperrors.CodeSessionNameEmpty, err.Error(), err)
	case errors.Is(err, domain.ErrEmptyTerritoryID):
		return apperrors.Wrap(apperrors.CodeSessionTerritoryEmpty, err.Error(), err)
	case errors.Is(err, domain.ErrEmptyOrganizerID):
		return apperrors.Wrap(apperrors.CodeSessionOrganizerEmpty, err.Error(), err)
	case errors.Is(err, domain.ErrInvalidMaxParticipants):
		return apperrors.Wrap(apperrors.CodeSessionInvalidCapacity, err.Error(), err)
	case errors.Is(err, domain.ErrTimetableOutOfOrder):
		return apperrors.Wrap(apperrors.CodeSessionTimetableOutOfOrder, err.Error(), err)
	default:
		return err
	}
}
