package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/id"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64
	Lng float64
}

// StandType tags the physical kind of a stand location.
type StandType int

const (
	// StandTypeUnspecified represents an invalid stand type.
	StandTypeUnspecified StandType = iota
	// StandTypeElevatedSeat is a raised hide (Hochsitz).
	StandTypeElevatedSeat
	// StandTypeGroundBlind is a concealed position at ground level.
	StandTypeGroundBlind
	// StandTypeDrivePost is an open interception point on a drive line.
	StandTypeDrivePost
)

// String returns the persisted representation of the stand type.
func (t StandType) String() string {
	switch t {
	case StandTypeElevatedSeat:
		return "ELEVATED_SEAT"
	case StandTypeGroundBlind:
		return "GROUND_BLIND"
	case StandTypeDrivePost:
		return "DRIVE_POST"
	default:
		return "UNSPECIFIED"
	}
}

// ParseStandType maps a persisted stand type string back to its value.
func ParseStandType(value string) StandType {
	switch value {
	case "ELEVATED_SEAT":
		return StandTypeElevatedSeat
	case "GROUND_BLIND":
		return StandTypeGroundBlind
	case "DRIVE_POST":
		return StandTypeDrivePost
	default:
		return StandTypeUnspecified
	}
}

// StandStatus describes whether a stand can currently be assigned.
type StandStatus int

const (
	// StandStatusUnspecified represents an invalid stand status.
	StandStatusUnspecified StandStatus = iota
	// StandStatusAvailable means the stand has no active assignment.
	StandStatusAvailable
	// StandStatusOccupied means exactly one active assignment holds the stand.
	StandStatusOccupied
	// StandStatusClosed means the organizer withdrew the stand from use.
	StandStatusClosed
)

// String returns the persisted representation of the stand status.
func (s StandStatus) String() string {
	switch s {
	case StandStatusAvailable:
		return "AVAILABLE"
	case StandStatusOccupied:
		return "OCCUPIED"
	case StandStatusClosed:
		return "CLOSED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseStandStatus maps a persisted stand status string back to its value.
func ParseStandStatus(value string) StandStatus {
	switch value {
	case "AVAILABLE":
		return StandStatusAvailable
	case "OCCUPIED":
		return StandStatusOccupied
	case "CLOSED":
		return StandStatusClosed
	default:
		return StandStatusUnspecified
	}
}

// StandSafety captures the safety constraints briefed for a stand.
type StandSafety struct {
	FireDirections []string
	SafetyRadiusM  int
}

// StandProperties captures the physical properties of a stand.
type StandProperties struct {
	Cover    string
	Capacity int
}

var (
	// ErrInvalidStandSequence indicates a non-positive stand number.
	ErrInvalidStandSequence = errors.New("stand sequence number must be greater than zero")
)

// Stand represents a fixed, exclusively-assignable field location.
type Stand struct {
	ID                string
	SessionID         string
	Sequence          int // unique within the session
	Name              string
	Type              StandType
	Coordinates       Coordinates
	ElevationM        *float64 // nil when unsurveyed
	PointOfInterestID string
	Description       string
	AccessNote        string
	Orientation       string
	Safety            StandSafety
	Properties        StandProperties
	Status            StandStatus
	HistoryNotes      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateStandInput describes the metadata needed to create a stand.
type CreateStandInput struct {
	SessionID         string
	Sequence          int
	Name              string
	Type              StandType
	Coordinates       Coordinates
	ElevationM        *float64
	PointOfInterestID string
	Description       string
	AccessNote        string
	Orientation       string
	Safety            StandSafety
	Properties        StandProperties
}

// CreateStand creates a stand with a generated ID and timestamps.
// The stand is created with AVAILABLE status.
func CreateStand(input CreateStandInput, now func() time.Time, idGenerator func() (string, error)) (Stand, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateStandInput(input)
	if err != nil {
		return Stand{}, err
	}

	standID, err := idGenerator()
	if err != nil {
		return Stand{}, fmt.Errorf("generate stand id: %w", err)
	}

	createdAt := now().UTC()
	return Stand{
		ID:                standID,
		SessionID:         normalized.SessionID,
		Sequence:          normalized.Sequence,
		Name:              normalized.Name,
		Type:              normalized.Type,
		Coordinates:       normalized.Coordinates,
		ElevationM:        normalized.ElevationM,
		PointOfInterestID: normalized.PointOfInterestID,
		Description:       normalized.Description,
		AccessNote:        normalized.AccessNote,
		Orientation:       normalized.Orientation,
		Safety:            normalized.Safety,
		Properties:        normalized.Properties,
		Status:            StandStatusAvailable,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}, nil
}

// NormalizeCreateStandInput trims and validates stand input metadata.
func NormalizeCreateStandInput(input CreateStandInput) (CreateStandInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return CreateStandInput{}, ErrEmptySessionID
	}
	if input.Sequence <= 0 {
		return CreateStandInput{}, ErrInvalidStandSequence
	}
	input.Name = strings.TrimSpace(input.Name)
	input.PointOfInterestID = strings.TrimSpace(input.PointOfInterestID)
	if input.Type == StandTypeUnspecified {
		input.Type = StandTypeElevatedSeat
	}
	return input, nil
}
