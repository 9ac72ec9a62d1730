package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/id"
)

// ParticipantRole describes what a registrant does during the hunt.
type ParticipantRole int

const (
	// ParticipantRoleUnspecified represents an invalid role value.
	ParticipantRoleUnspecified ParticipantRole = iota
	// ParticipantRoleOrganizer leads the session.
	ParticipantRoleOrganizer
	// ParticipantRoleHunter occupies a stand.
	ParticipantRoleHunter
	// ParticipantRoleDriver moves game toward the stands.
	ParticipantRoleDriver
	// ParticipantRoleDogHandler runs dogs during drives.
	ParticipantRoleDogHandler
	// ParticipantRoleGuest observes without hunting.
	ParticipantRoleGuest
)

// String returns the persisted representation of the role.
func (r ParticipantRole) String() string {
	switch r {
	case ParticipantRoleOrganizer:
		return "ORGANIZER"
	case ParticipantRoleHunter:
		return "HUNTER"
	case ParticipantRoleDriver:
		return "DRIVER"
	case ParticipantRoleDogHandler:
		return "DOG_HANDLER"
	case ParticipantRoleGuest:
		return "GUEST"
	default:
		return "UNSPECIFIED"
	}
}

// ParseParticipantRole maps a persisted role string back to its value.
func ParseParticipantRole(value string) ParticipantRole {
	switch value {
	case "ORGANIZER":
		return ParticipantRoleOrganizer
	case "HUNTER":
		return ParticipantRoleHunter
	case "DRIVER":
		return ParticipantRoleDriver
	case "DOG_HANDLER":
		return ParticipantRoleDogHandler
	case "GUEST":
		return ParticipantRoleGuest
	default:
		return ParticipantRoleUnspecified
	}
}

// RegistrationStatus describes where a registrant sits in the invite flow.
type RegistrationStatus int

const (
	// RegistrationStatusUnspecified represents an invalid registration status.
	RegistrationStatusUnspecified RegistrationStatus = iota
	// RegistrationStatusInvited means the organizer invited this person.
	RegistrationStatusInvited
	// RegistrationStatusApplied means the person asked to join.
	RegistrationStatusApplied
	// RegistrationStatusConfirmed means the organizer accepted them.
	RegistrationStatusConfirmed
	// RegistrationStatusDeclined means the organizer turned them down.
	RegistrationStatusDeclined
)

// String returns the persisted representation of the registration status.
func (s RegistrationStatus) String() string {
	switch s {
	case RegistrationStatusInvited:
		return "INVITED"
	case RegistrationStatusApplied:
		return "APPLIED"
	case RegistrationStatusConfirmed:
		return "CONFIRMED"
	case RegistrationStatusDeclined:
		return "DECLINED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseRegistrationStatus maps a persisted registration status string back.
func ParseRegistrationStatus(value string) RegistrationStatus {
	switch value {
	case "INVITED":
		return RegistrationStatusInvited
	case "APPLIED":
		return RegistrationStatusApplied
	case "CONFIRMED":
		return RegistrationStatusConfirmed
	case "DECLINED":
		return RegistrationStatusDeclined
	default:
		return RegistrationStatusUnspecified
	}
}

// Registration is the invite/apply/confirm sub-record of a participant.
// The participant registry is its only writer.
type Registration struct {
	Status          RegistrationStatus
	AppliedAt       time.Time
	DecisionComment string
}

// FieldState describes a participant's live status in the field.
type FieldState int

const (
	// FieldStateUnspecified represents an invalid field state.
	FieldStateUnspecified FieldState = iota
	// FieldStateTraveling means en route to the hunting ground.
	FieldStateTraveling
	// FieldStateAtStand means in position on the assigned stand.
	FieldStateAtStand
	// FieldStateMoving means on foot inside the hunting ground.
	FieldStateMoving
	// FieldStateEmergency means the participant signalled distress.
	FieldStateEmergency
)

// String returns the persisted representation of the field state.
func (s FieldState) String() string {
	switch s {
	case FieldStateTraveling:
		return "TRAVELING"
	case FieldStateAtStand:
		return "AT_STAND"
	case FieldStateMoving:
		return "MOVING"
	case FieldStateEmergency:
		return "EMERGENCY"
	default:
		return "UNSPECIFIED"
	}
}

// ParseFieldState maps a persisted field state string back to its value.
func ParseFieldState(value string) FieldState {
	switch value {
	case "TRAVELING":
		return FieldStateTraveling
	case "AT_STAND":
		return FieldStateAtStand
	case "MOVING":
		return FieldStateMoving
	case "EMERGENCY":
		return FieldStateEmergency
	default:
		return FieldStateUnspecified
	}
}

// FieldStatus couples a field state with the moment it was reported.
type FieldStatus struct {
	State FieldState
	At    time.Time
}

// Equipment captures what a participant brings to the hunt.
type Equipment struct {
	Weapon  string
	Caliber string
	Optics  string
	Notes   string
}

// Experience captures a participant's hunting background.
type Experience struct {
	YearsActive int
	FirstHunt   bool
	Notes       string
}

var (
	// ErrEmptyDisplayName indicates a missing participant display name.
	ErrEmptyDisplayName = errors.New("participant display name is required")
	// ErrInvalidParticipantRole indicates a missing or invalid role.
	ErrInvalidParticipantRole = errors.New("participant role is required")
	// ErrEmptySessionID indicates a missing owning-session reference.
	ErrEmptySessionID = errors.New("session id is required")
)

// Participant represents a registrant of a hunt session.
type Participant struct {
	ID              string
	SessionID       string
	AccountID       string // empty for walk-in guests without an account
	DisplayName     string
	Phone           string
	Email           string
	Role            ParticipantRole
	Equipment       Equipment
	Experience      Experience
	Registration    Registration
	AssignedStandID string       // denormalized back-reference, kept consistent by the assignment manager
	FieldStatus     *FieldStatus // nil until the participant first reports in
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateParticipantInput describes the metadata needed to register a participant.
type CreateParticipantInput struct {
	SessionID          string
	AccountID          string
	DisplayName        string
	Phone              string
	Email              string
	Role               ParticipantRole
	Equipment          Equipment
	Experience         Experience
	RegistrationStatus RegistrationStatus
}

// CreateParticipant creates a participant with a generated ID and timestamps.
// When no registration status is supplied the participant starts as APPLIED.
func CreateParticipant(input CreateParticipantInput, now func() time.Time, idGenerator func() (string, error)) (Participant, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateParticipantInput(input)
	if err != nil {
		return Participant{}, err
	}

	participantID, err := idGenerator()
	if err != nil {
		return Participant{}, fmt.Errorf("generate participant id: %w", err)
	}

	createdAt := now().UTC()
	return Participant{
		ID:          participantID,
		SessionID:   normalized.SessionID,
		AccountID:   normalized.AccountID,
		DisplayName: normalized.DisplayName,
		Phone:       normalized.Phone,
		Email:       normalized.Email,
		Role:        normalized.Role,
		Equipment:   normalized.Equipment,
		Experience:  normalized.Experience,
		Registration: Registration{
			Status:    normalized.RegistrationStatus,
			AppliedAt: createdAt,
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeCreateParticipantInput trims and validates participant input.
func NormalizeCreateParticipantInput(input CreateParticipantInput) (CreateParticipantInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return CreateParticipantInput{}, ErrEmptySessionID
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return CreateParticipantInput{}, ErrEmptyDisplayName
	}
	if input.Role == ParticipantRoleUnspecified {
		return CreateParticipantInput{}, ErrInvalidParticipantRole
	}
	input.AccountID = strings.TrimSpace(input.AccountID)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	if input.RegistrationStatus == RegistrationStatusUnspecified {
		input.RegistrationStatus = RegistrationStatusApplied
	}
	return input, nil
}
