package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/id"
)

var (
	// ErrEmptyStandID indicates a missing stand reference.
	ErrEmptyStandID = errors.New("stand id is required")
	// ErrEmptyParticipantID indicates a missing participant reference.
	ErrEmptyParticipantID = errors.New("participant id is required")
)

// Assignment binds one participant exclusively to one stand. Releasing the
// assignment deletes the record; there is no soft-delete state.
type Assignment struct {
	ID            string
	SessionID     string
	StandID       string
	ParticipantID string
	AssignedBy    string
	AssignedAt    time.Time
	Priority      int // lower is preferred when organizers pre-plan seatings
	Confirmed     bool
	ConfirmedAt   *time.Time // nil until the participant confirms
	Notes         string
}

// CreateAssignmentInput describes the metadata needed to create an assignment.
type CreateAssignmentInput struct {
	SessionID     string
	StandID       string
	ParticipantID string
	AssignedBy    string
	Priority      int
	Notes         string
}

// CreateAssignment creates an unconfirmed assignment with a generated ID.
func CreateAssignment(input CreateAssignmentInput, now func() time.Time, idGenerator func() (string, error)) (Assignment, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateAssignmentInput(input)
	if err != nil {
		return Assignment{}, err
	}

	assignmentID, err := idGenerator()
	if err != nil {
		return Assignment{}, fmt.Errorf("generate assignment id: %w", err)
	}

	return Assignment{
		ID:            assignmentID,
		SessionID:     normalized.SessionID,
		StandID:       normalized.StandID,
		ParticipantID: normalized.ParticipantID,
		AssignedBy:    normalized.AssignedBy,
		AssignedAt:    now().UTC(),
		Priority:      normalized.Priority,
		Notes:         normalized.Notes,
	}, nil
}

// NormalizeCreateAssignmentInput trims and validates assignment input.
func NormalizeCreateAssignmentInput(input CreateAssignmentInput) (CreateAssignmentInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return CreateAssignmentInput{}, ErrEmptySessionID
	}
	input.StandID = strings.TrimSpace(input.StandID)
	if input.StandID == "" {
		return CreateAssignmentInput{}, ErrEmptyStandID
	}
	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	if input.ParticipantID == "" {
		return CreateAssignmentInput{}, ErrEmptyParticipantID
	}
	input.AssignedBy = strings.TrimSpace(input.AssignedBy)
	return input, nil
}
