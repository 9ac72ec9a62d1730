package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/id"
)

// DriveStatus describes the lifecycle state of a drive phase.
type DriveStatus int

const (
	// DriveStatusUnspecified represents an invalid drive status.
	DriveStatusUnspecified DriveStatus = iota
	// DriveStatusPlanned indicates the drive has not started.
	DriveStatusPlanned
	// DriveStatusRunning indicates the drive is underway.
	DriveStatusRunning
	// DriveStatusCompleted indicates the drive ended. Terminal.
	// An aborted drive is completed with Result.Aborted set.
	DriveStatusCompleted
)

// String returns the persisted representation of the drive status.
func (s DriveStatus) String() string {
	switch s {
	case DriveStatusPlanned:
		return "PLANNED"
	case DriveStatusRunning:
		return "RUNNING"
	case DriveStatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseDriveStatus maps a persisted drive status string back to its value.
func ParseDriveStatus(value string) DriveStatus {
	switch value {
	case "PLANNED":
		return DriveStatusPlanned
	case "RUNNING":
		return DriveStatusRunning
	case "COMPLETED":
		return DriveStatusCompleted
	default:
		return DriveStatusUnspecified
	}
}

// DriveArea bounds the ground covered by a drive.
type DriveArea struct {
	Center  Coordinates
	RadiusM int
}

// DriveResult summarizes what a completed drive produced.
type DriveResult struct {
	SpeciesSeen map[string]int
	Notes       string
	Aborted     bool
}

var (
	// ErrInvalidDriveSequence indicates a non-positive drive number.
	ErrInvalidDriveSequence = errors.New("drive sequence number must be greater than zero")
)

// Drive represents one timed phase in which drivers push game toward the
// engaged stands.
type Drive struct {
	ID                string
	SessionID         string
	Sequence          int // unique within the session
	Name              string
	PlannedStart      time.Time
	EstimatedDuration time.Duration
	StartedAt         *time.Time // nil until the drive starts
	ActualEnd         *time.Time // nil until the drive ends
	Area              DriveArea
	SweepDirection    string
	DriverIDs         []string
	DogHandlerIDs     []string
	ActiveStandIDs    []string // fixed at creation, immutable after start
	Status            DriveStatus
	Result            *DriveResult // nil until the drive ends
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateDriveInput describes the metadata needed to plan a drive.
type CreateDriveInput struct {
	SessionID         string
	Sequence          int
	Name              string
	PlannedStart      time.Time
	EstimatedDuration time.Duration
	Area              DriveArea
	SweepDirection    string
	DriverIDs         []string
	DogHandlerIDs     []string
	ActiveStandIDs    []string
}

// CreateDrive creates a drive with a generated ID in PLANNED status.
func CreateDrive(input CreateDriveInput, now func() time.Time, idGenerator func() (string, error)) (Drive, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateDriveInput(input)
	if err != nil {
		return Drive{}, err
	}

	driveID, err := idGenerator()
	if err != nil {
		return Drive{}, fmt.Errorf("generate drive id: %w", err)
	}

	createdAt := now().UTC()
	return Drive{
		ID:                driveID,
		SessionID:         normalized.SessionID,
		Sequence:          normalized.Sequence,
		Name:              normalized.Name,
		PlannedStart:      normalized.PlannedStart,
		EstimatedDuration: normalized.EstimatedDuration,
		Area:              normalized.Area,
		SweepDirection:    normalized.SweepDirection,
		DriverIDs:         normalized.DriverIDs,
		DogHandlerIDs:     normalized.DogHandlerIDs,
		ActiveStandIDs:    normalized.ActiveStandIDs,
		Status:            DriveStatusPlanned,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}, nil
}

// NormalizeCreateDriveInput trims and validates drive input metadata.
func NormalizeCreateDriveInput(input CreateDriveInput) (CreateDriveInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return CreateDriveInput{}, ErrEmptySessionID
	}
	if input.Sequence <= 0 {
		return CreateDriveInput{}, ErrInvalidDriveSequence
	}
	input.Name = strings.TrimSpace(input.Name)
	input.SweepDirection = strings.TrimSpace(input.SweepDirection)
	return input, nil
}
