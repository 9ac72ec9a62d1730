package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

// RegisterParticipant registers a person for a session. When the registrant
// arrives already confirmed (organizer pre-invites), confirmation counts
// against the session capacity.
func (s *HuntService) RegisterParticipant(ctx context.Context, input domain.CreateParticipantInput) (domain.Participant, error) {
	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return domain.Participant{}, err
	}

	unlock := s.locks.lock(session.ID)
	defer unlock()

	participant, err := domain.CreateParticipant(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Participant{}, mapParticipantInputErr(err)
	}

	if participant.Registration.Status == domain.RegistrationStatusConfirmed {
		if err := s.checkCapacity(ctx, session); err != nil {
			return domain.Participant{}, err
		}
	}

	if err := s.stores.Participants.PutParticipant(ctx, participant); err != nil {
		return domain.Participant{}, fmt.Errorf("store participant: %w", err)
	}

	if participant.Registration.Status == domain.RegistrationStatusConfirmed {
		if _, err := s.emitEvent(ctx, session.ID, domain.EventTypeRegistrationConfirmed, domain.SystemOrigin,
			domain.RegistrationConfirmedPayload{
				ParticipantID: participant.ID,
				DisplayName:   participant.DisplayName,
				Role:          participant.Role.String(),
			}, domain.VisibilityEveryone); err != nil {
			return domain.Participant{}, err
		}
	}
	return participant, nil
}

// DecideRegistration confirms or declines an applied registration. Repeating
// a decision is a no-op; the live event fires only on actual state change.
func (s *HuntService) DecideRegistration(ctx context.Context, participantID string, decision domain.RegistrationStatus, comment string) (domain.Participant, error) {
	if decision != domain.RegistrationStatusConfirmed && decision != domain.RegistrationStatusDeclined {
		return domain.Participant{}, apperrors.New(apperrors.CodeParticipantInvalidDecision,
			"registration decision must be confirmed or declined")
	}

	participant, err := s.stores.Participants.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Participant{}, mapStorageErr(err, "participant")
	}

	unlock := s.locks.lock(participant.SessionID)
	defer unlock()

	// Re-read under the lock so concurrent decisions serialize.
	participant, err = s.stores.Participants.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Participant{}, mapStorageErr(err, "participant")
	}
	if participant.Registration.Status == decision {
		return participant, nil
	}

	if decision == domain.RegistrationStatusConfirmed {
		session, err := s.getSession(ctx, participant.SessionID)
		if err != nil {
			return domain.Participant{}, err
		}
		if err := s.checkCapacity(ctx, session); err != nil {
			return domain.Participant{}, err
		}
	}

	participant.Registration.Status = decision
	participant.Registration.DecisionComment = comment
	participant.UpdatedAt = s.clock().UTC()
	if err := s.stores.Participants.PutParticipant(ctx, participant); err != nil {
		return domain.Participant{}, fmt.Errorf("store participant: %w", err)
	}

	if decision == domain.RegistrationStatusConfirmed {
		if _, err := s.emitEvent(ctx, participant.SessionID, domain.EventTypeRegistrationConfirmed, domain.SystemOrigin,
			domain.RegistrationConfirmedPayload{
				ParticipantID: participant.ID,
				DisplayName:   participant.DisplayName,
				Role:          participant.Role.String(),
			}, domain.VisibilityEveryone); err != nil {
			return domain.Participant{}, err
		}
	}
	return participant, nil
}

// UpdateFieldStatus records a participant's live field state. Field tracking
// keeps working regardless of the session status; a hunter still travels home
// after the session completed. Reporting EMERGENCY raises a distress event.
func (s *HuntService) UpdateFieldStatus(ctx context.Context, participantID string, state domain.FieldState) (domain.Participant, error) {
	if state == domain.FieldStateUnspecified {
		return domain.Participant{}, apperrors.New(apperrors.CodeParticipantInvalidState,
			"field state is required")
	}

	participant, err := s.stores.Participants.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Participant{}, mapStorageErr(err, "participant")
	}

	unlock := s.locks.lock(participant.SessionID)
	defer unlock()

	now := s.clock().UTC()
	participant.FieldStatus = &domain.FieldStatus{State: state, At: now}
	participant.UpdatedAt = now
	if err := s.stores.Participants.PutParticipant(ctx, participant); err != nil {
		return domain.Participant{}, fmt.Errorf("store participant: %w", err)
	}

	if state == domain.FieldStateEmergency {
		if _, err := s.emitEvent(ctx, participant.SessionID, domain.EventTypeDistress, participant.ID,
			domain.DistressPayload{
				ParticipantID: participant.ID,
				Message:       participant.DisplayName + " signalled an emergency",
			}, domain.VisibilityEveryone); err != nil {
			return domain.Participant{}, err
		}
	}
	return participant, nil
}

// RemoveParticipant removes a registrant from the session. A held stand
// assignment is released first so no dangling back-reference survives; the
// release and the delete happen under one lock acquisition so no concurrent
// assignment can slot in between them.
func (s *HuntService) RemoveParticipant(ctx context.Context, participantID string) error {
	participant, err := s.stores.Participants.GetParticipant(ctx, participantID)
	if err != nil {
		return mapStorageErr(err, "participant")
	}

	unlock := s.locks.lock(participant.SessionID)
	defer unlock()

	participant, err = s.stores.Participants.GetParticipant(ctx, participantID)
	if err != nil {
		return mapStorageErr(err, "participant")
	}

	if participant.AssignedStandID != "" {
		if _, err := s.getMutableSession(ctx, participant.SessionID); err != nil {
			return err
		}
		assignment, err := s.stores.Assignments.GetActiveAssignmentForStand(ctx, participant.AssignedStandID)
		if err == nil && assignment.ParticipantID == participant.ID {
			if err := s.releaseAssignmentLocked(ctx, assignment); err != nil {
				return err
			}
		} else if err != nil && !isNotFound(err) {
			return fmt.Errorf("load held assignment: %w", err)
		}
	}

	if err := s.stores.Participants.DeleteParticipant(ctx, participantID); err != nil {
		return mapStorageErr(err, "participant")
	}
	return nil
}

// ListParticipants returns all registrants of a session.
func (s *HuntService) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	participants, err := s.stores.Participants.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// checkCapacity fails when the session already holds max confirmed registrants.
// The caller holds the session lock.
func (s *HuntService) checkCapacity(ctx context.Context, session domain.HuntSession) error {
	confirmed, err := s.countConfirmed(ctx, session.ID)
	if err != nil {
		return err
	}
	if confirmed >= session.MaxParticipants {
		return apperrors.WithMetadata(apperrors.CodeSessionFull, "session participant limit reached",
			map[string]string{"max_participants": fmt.Sprint(session.MaxParticipants)})
	}
	return nil
}

func mapParticipantInputErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyDisplayName):
		return apperrors.Wrap(apperrors.CodeParticipantNameEmpty, err.Error(), err)
	case errors.Is(err, domain.ErrInvalidParticipantRole):
		return apperrors.Wrap(apperrors.CodeParticipantInvalidRole, err.Error(), err)
	default:
		return err
	}
}
