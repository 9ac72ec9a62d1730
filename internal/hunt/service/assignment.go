package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/storage"
)

// AssignStand binds a participant exclusively to a stand. Contention on the
// same stand serializes on the session lock; exactly one caller wins and the
// others observe a conflict. There is no implicit reassignment — callers
// release first.
func (s *HuntService) AssignStand(ctx context.Context, input domain.CreateAssignmentInput) (domain.Assignment, error) {
	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return domain.Assignment{}, err
	}

	unlock := s.locks.lock(session.ID)
	defer unlock()

	session, err = s.getMutableSession(ctx, session.ID)
	if err != nil {
		return domain.Assignment{}, err
	}

	assignment, err := domain.CreateAssignment(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Assignment{}, err
	}

	stand, err := s.stores.Stands.GetStand(ctx, assignment.StandID)
	if err != nil || stand.SessionID != session.ID {
		if err != nil && !isNotFound(err) {
			return domain.Assignment{}, fmt.Errorf("load stand: %w", err)
		}
		return domain.Assignment{}, apperrors.New(apperrors.CodeNotFound, "stand does not belong to the session")
	}
	if stand.Status == domain.StandStatusClosed {
		return domain.Assignment{}, apperrors.New(apperrors.CodeStandClosed, "stand is closed")
	}

	participant, err := s.stores.Participants.GetParticipant(ctx, assignment.ParticipantID)
	if err != nil || participant.SessionID != session.ID {
		if err != nil && !isNotFound(err) {
			return domain.Assignment{}, fmt.Errorf("load participant: %w", err)
		}
		return domain.Assignment{}, apperrors.New(apperrors.CodeNotFound, "participant does not belong to the session")
	}

	if _, err := s.stores.Assignments.GetActiveAssignmentForStand(ctx, stand.ID); err == nil {
		return domain.Assignment{}, apperrors.WithMetadata(apperrors.CodeStandOccupied,
			"stand already has an active assignment",
			map[string]string{"stand_id": stand.ID})
	} else if !isNotFound(err) {
		return domain.Assignment{}, fmt.Errorf("check active assignment: %w", err)
	}

	if err := s.stores.Assignments.CreateAssignment(ctx, assignment); err != nil {
		if errors.Is(err, storage.ErrStandOccupied) {
			return domain.Assignment{}, apperrors.Wrap(apperrors.CodeStandOccupied,
				"stand already has an active assignment", err)
		}
		return domain.Assignment{}, fmt.Errorf("store assignment: %w", err)
	}

	now := s.clock().UTC()
	stand.Status = domain.StandStatusOccupied
	stand.UpdatedAt = now
	if err := s.stores.Stands.PutStand(ctx, stand); err != nil {
		return domain.Assignment{}, fmt.Errorf("store stand: %w", err)
	}

	participant.AssignedStandID = stand.ID
	participant.UpdatedAt = now
	if err := s.stores.Participants.PutParticipant(ctx, participant); err != nil {
		return domain.Assignment{}, fmt.Errorf("store participant: %w", err)
	}

	if _, err := s.emitEvent(ctx, session.ID, domain.EventTypeStandAssigned, assignment.AssignedBy,
		domain.StandAssignedPayload{
			AssignmentID:  assignment.ID,
			StandID:       stand.ID,
			StandSequence: stand.Sequence,
			ParticipantID: participant.ID,
		}, domain.VisibilityEveryone); err != nil {
		return domain.Assignment{}, err
	}
	return assignment, nil
}

// ConfirmAssignment marks an assignment as confirmed by its participant.
// Confirming an already-confirmed assignment is a no-op.
func (s *HuntService) ConfirmAssignment(ctx context.Context, assignmentID string) (domain.Assignment, error) {
	assignment, err := s.stores.Assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return domain.Assignment{}, mapStorageErr(err, "assignment")
	}

	if _, err := s.getSession(ctx, assignment.SessionID); err != nil {
		return domain.Assignment{}, err
	}

	unlock := s.locks.lock(assignment.SessionID)
	defer unlock()

	if _, err := s.getMutableSession(ctx, assignment.SessionID); err != nil {
		return domain.Assignment{}, err
	}

	assignment, err = s.stores.Assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return domain.Assignment{}, mapStorageErr(err, "assignment")
	}
	if assignment.Confirmed {
		return assignment, nil
	}

	now := s.clock().UTC()
	assignment.Confirmed = true
	assignment.ConfirmedAt = &now
	if err := s.stores.Assignments.PutAssignment(ctx, assignment); err != nil {
		return domain.Assignment{}, fmt.Errorf("store assignment: %w", err)
	}
	return assignment, nil
}

// ReleaseAssignment deletes an assignment, clears the participant's
// back-reference, and frees the stand when its last active assignment goes.
func (s *HuntService) ReleaseAssignment(ctx context.Context, assignmentID string) error {
	assignment, err := s.stores.Assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return mapStorageErr(err, "assignment")
	}

	if _, err := s.getSession(ctx, assignment.SessionID); err != nil {
		return err
	}

	unlock := s.locks.lock(assignment.SessionID)
	defer unlock()

	if _, err := s.getMutableSession(ctx, assignment.SessionID); err != nil {
		return err
	}

	assignment, err = s.stores.Assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return mapStorageErr(err, "assignment")
	}
	return s.releaseAssignmentLocked(ctx, assignment)
}

// releaseAssignmentLocked deletes the assignment, clears the participant's
// back-reference, frees the stand once its last active assignment is gone, and
// emits the release event. The caller holds the session lock.
func (s *HuntService) releaseAssignmentLocked(ctx context.Context, assignment domain.Assignment) error {
	if err := s.stores.Assignments.DeleteAssignment(ctx, assignment.ID); err != nil {
		return mapStorageErr(err, "assignment")
	}

	now := s.clock().UTC()

	participant, err := s.stores.Participants.GetParticipant(ctx, assignment.ParticipantID)
	if err == nil && participant.AssignedStandID == assignment.StandID {
		participant.AssignedStandID = ""
		participant.UpdatedAt = now
		if err := s.stores.Participants.PutParticipant(ctx, participant); err != nil {
			return fmt.Errorf("store participant: %w", err)
		}
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("load participant: %w", err)
	}

	stand, err := s.stores.Stands.GetStand(ctx, assignment.StandID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("load stand: %w", err)
	}

	if _, err := s.stores.Assignments.GetActiveAssignmentForStand(ctx, stand.ID); isNotFound(err) {
		if stand.Status == domain.StandStatusOccupied {
			stand.Status = domain.StandStatusAvailable
			stand.UpdatedAt = now
			if err := s.stores.Stands.PutStand(ctx, stand); err != nil {
				return fmt.Errorf("store stand: %w", err)
			}
		}
	} else if err != nil {
		return fmt.Errorf("check active assignment: %w", err)
	}

	if _, err := s.emitEvent(ctx, assignment.SessionID, domain.EventTypeStandReleased, domain.SystemOrigin,
		domain.StandReleasedPayload{
			AssignmentID:  assignment.ID,
			StandID:       stand.ID,
			StandSequence: stand.Sequence,
			ParticipantID: assignment.ParticipantID,
		}, domain.VisibilityEveryone); err != nil {
		return err
	}
	return nil
}

// ListAssignments returns all assignments of a session.
func (s *HuntService) ListAssignments(ctx context.Context, sessionID string) ([]domain.Assignment, error) {
	assignments, err := s.stores.Assignments.ListAssignments(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
