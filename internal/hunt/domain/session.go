package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/id"
)

// SessionStatus describes the lifecycle state of a hunt session.
type SessionStatus int

const (
	// SessionStatusUnspecified represents an invalid session status value.
	SessionStatusUnspecified SessionStatus = iota
	// SessionStatusPlanned indicates the session is being organized.
	SessionStatusPlanned
	// SessionStatusActive indicates the hunt is underway.
	SessionStatusActive
	// SessionStatusCompleted indicates the hunt has ended. Terminal.
	SessionStatusCompleted
)

// String returns the persisted representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case SessionStatusPlanned:
		return "PLANNED"
	case SessionStatusActive:
		return "ACTIVE"
	case SessionStatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseSessionStatus maps a persisted status string back to its value.
func ParseSessionStatus(value string) SessionStatus {
	switch value {
	case "PLANNED":
		return SessionStatusPlanned
	case "ACTIVE":
		return SessionStatusActive
	case "COMPLETED":
		return SessionStatusCompleted
	default:
		return SessionStatusUnspecified
	}
}

// CanTransitionTo reports whether the status machine permits the move.
// Transitions only run forward: planned -> active -> completed.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	switch s {
	case SessionStatusPlanned:
		return target == SessionStatusActive
	case SessionStatusActive:
		return target == SessionStatusCompleted
	default:
		return false
	}
}

// HuntType tags the kind of group hunt.
type HuntType string

const (
	// HuntTypeDriven is a classic driven hunt with beaters and stands.
	HuntTypeDriven HuntType = "DRIVEN"
	// HuntTypeStill is a coordinated still hunt from fixed stands.
	HuntTypeStill HuntType = "STILL"
	// HuntTypeCombined mixes driven phases with still periods.
	HuntTypeCombined HuntType = "COMBINED"
)

// Timetable holds the named phase timestamps of a session. Zero values mean
// the phase is not scheduled.
type Timetable struct {
	GatherAt       time.Time
	BriefingAt     time.Time
	StartAt        time.Time
	EndAt          time.Time
	PresentationAt time.Time
}

// InOrder reports whether the scheduled phases are chronologically ordered
// (gather <= briefing <= start <= end). Unscheduled phases are skipped.
func (t Timetable) InOrder() bool {
	phases := []time.Time{t.GatherAt, t.BriefingAt, t.StartAt, t.EndAt}
	var prev time.Time
	for _, phase := range phases {
		if phase.IsZero() {
			continue
		}
		if !prev.IsZero() && phase.Before(prev) {
			return false
		}
		prev = phase
	}
	return true
}

// SafetyPlan captures the safety block briefed before the hunt.
type SafetyPlan struct {
	EmergencyContact string
	RallyPoint       Coordinates
	Contingency      string
}

// RuleSet captures the per-session hunting rules.
type RuleSet struct {
	PermittedSpecies    []string
	FireDirections      []string
	MaxShotDistanceM    int
	SpecialInstructions string
}

// SpeciesPermitted reports whether the species may be harvested under these
// rules. An empty permitted list places no restriction.
func (r RuleSet) SpeciesPermitted(species string) bool {
	if len(r.PermittedSpecies) == 0 {
		return true
	}
	species = strings.TrimSpace(species)
	for _, permitted := range r.PermittedSpecies {
		if strings.EqualFold(permitted, species) {
			return true
		}
	}
	return false
}

var (
	// ErrEmptySessionName indicates a missing session name.
	ErrEmptySessionName = errors.New("session name is required")
	// ErrEmptyTerritoryID indicates a missing territory reference.
	ErrEmptyTerritoryID = errors.New("territory id is required")
	// ErrEmptyOrganizerID indicates a missing organizer reference.
	ErrEmptyOrganizerID = errors.New("organizer id is required")
	// ErrInvalidMaxParticipants indicates a non-positive participant limit.
	ErrInvalidMaxParticipants = errors.New("max participants must be greater than zero")
	// ErrTimetableOutOfOrder indicates phase timestamps that run backwards.
	ErrTimetableOutOfOrder = errors.New("timetable phases must be chronologically ordered")
)

// HuntSession represents one scheduled group-hunt event. The session owns all
// child entities; none outlive it.
type HuntSession struct {
	ID                   string
	TerritoryID          string
	Name                 string
	Type                 HuntType
	ScheduledDate        time.Time
	Timetable            Timetable
	OrganizerID          string
	MaxParticipants      int
	RegistrationDeadline *time.Time // nil when registrations never close
	Safety               SafetyPlan
	Rules                RuleSet
	Status               SessionStatus
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CreateSessionInput describes the metadata needed to create a session.
type CreateSessionInput struct {
	TerritoryID          string
	Name                 string
	Type                 HuntType
	ScheduledDate        time.Time
	Timetable            Timetable
	OrganizerID          string
	MaxParticipants      int
	RegistrationDeadline *time.Time
	Safety               SafetyPlan
	Rules                RuleSet
	CreatedBy            string
}

// CreateSession creates a new session with a generated ID and timestamps.
// The session is created with PLANNED status.
func CreateSession(input CreateSessionInput, now func() time.Time, idGenerator func() (string, error)) (HuntSession, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateSessionInput(input)
	if err != nil {
		return HuntSession{}, err
	}

	sessionID, err := idGenerator()
	if err != nil {
		return HuntSession{}, fmt.Errorf("generate session id: %w", err)
	}

	createdAt := now().UTC()
	return HuntSession{
		ID:                   sessionID,
		TerritoryID:          normalized.TerritoryID,
		Name:                 normalized.Name,
		Type:                 normalized.Type,
		ScheduledDate:        normalized.ScheduledDate,
		Timetable:            normalized.Timetable,
		OrganizerID:          normalized.OrganizerID,
		MaxParticipants:      normalized.MaxParticipants,
		RegistrationDeadline: normalized.RegistrationDeadline,
		Safety:               normalized.Safety,
		Rules:                normalized.Rules,
		Status:               SessionStatusPlanned,
		CreatedBy:            normalized.CreatedBy,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}, nil
}

// NormalizeCreateSessionInput trims and validates session input metadata.
func NormalizeCreateSessionInput(input CreateSessionInput) (CreateSessionInput, error) {
	input.TerritoryID = strings.TrimSpace(input.TerritoryID)
	if input.TerritoryID == "" {
		return CreateSessionInput{}, ErrEmptyTerritoryID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateSessionInput{}, ErrEmptySessionName
	}
	input.OrganizerID = strings.TrimSpace(input.OrganizerID)
	if input.OrganizerID == "" {
		return CreateSessionInput{}, ErrEmptyOrganizerID
	}
	if input.MaxParticipants <= 0 {
		return CreateSessionInput{}, ErrInvalidMaxParticipants
	}
	if !input.Timetable.InOrder() {
		return CreateSessionInput{}, ErrTimetableOutOfOrder
	}
	if input.Type == "" {
		input.Type = HuntTypeDriven
	}
	input.CreatedBy = strings.TrimSpace(input.CreatedBy)
	if input.CreatedBy == "" {
		input.CreatedBy = input.OrganizerID
	}
	return input, nil
}
