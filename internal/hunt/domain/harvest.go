package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/id"
)

// GameSex tags the sex of harvested game.
type GameSex string

const (
	// GameSexMale marks male game.
	GameSexMale GameSex = "MALE"
	// GameSexFemale marks female game.
	GameSexFemale GameSex = "FEMALE"
	// GameSexUnknown marks game whose sex could not be determined.
	GameSexUnknown GameSex = "UNKNOWN"
)

// HarvestDetail captures the shot and carcass details of a harvest.
type HarvestDetail struct {
	ShotDistanceM int
	ShotPlacement string
	WeightKG      float64
	Remarks       string
}

// Disposition captures what happens with the carcass.
type Disposition struct {
	Status string // e.g. FIELD_DRESSED, COOLING_CHAMBER, DELIVERED, PRIVATE_USE
	Plan   string
}

var (
	// ErrEmptyShooterID indicates a missing shooter reference.
	ErrEmptyShooterID = errors.New("shooter participant id is required")
	// ErrEmptySpecies indicates a missing species label.
	ErrEmptySpecies = errors.New("species is required")
	// ErrInvalidHarvestCount indicates a non-positive harvest count.
	ErrInvalidHarvestCount = errors.New("harvest count must be at least one")
)

// HarvestRecord is an immutable entry in the harvest ledger. Corrections are
// modeled as a new zero-count record referencing the original via
// VoidsRecordID; records are never edited or deleted.
type HarvestRecord struct {
	ID            string
	SessionID     string
	ShooterID     string
	StandID       string // empty when the shot fell outside a stand
	DriveSequence *int   // nil means outside a drive
	Species       string
	Sex           GameSex
	AgeClass      string
	Count         int
	Timestamp     time.Time
	Coordinates   Coordinates
	Detail        HarvestDetail
	Disposition   Disposition
	TagID         string
	PhotoRefs     []string
	VoidsRecordID string // set only on correction records
	VoidReason    string
	RecordedBy    string
	RecordedAt    time.Time
}

// IsCorrection reports whether this record voids an earlier one.
func (r HarvestRecord) IsCorrection() bool {
	return r.VoidsRecordID != ""
}

// CreateHarvestRecordInput describes the metadata needed to record a harvest.
type CreateHarvestRecordInput struct {
	SessionID     string
	ShooterID     string
	StandID       string
	DriveSequence *int
	Species       string
	Sex           GameSex
	AgeClass      string
	Count         int
	Timestamp     time.Time
	Coordinates   Coordinates
	Detail        HarvestDetail
	Disposition   Disposition
	TagID         string
	PhotoRefs     []string
	RecordedBy    string
}

// CreateHarvestRecord creates an immutable harvest record with a generated ID.
func CreateHarvestRecord(input CreateHarvestRecordInput, now func() time.Time, idGenerator func() (string, error)) (HarvestRecord, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateHarvestRecordInput(input)
	if err != nil {
		return HarvestRecord{}, err
	}

	recordID, err := idGenerator()
	if err != nil {
		return HarvestRecord{}, fmt.Errorf("generate harvest record id: %w", err)
	}

	recordedAt := now().UTC()
	timestamp := normalized.Timestamp
	if timestamp.IsZero() {
		timestamp = recordedAt
	}

	return HarvestRecord{
		ID:            recordID,
		SessionID:     normalized.SessionID,
		ShooterID:     normalized.ShooterID,
		StandID:       normalized.StandID,
		DriveSequence: normalized.DriveSequence,
		Species:       normalized.Species,
		Sex:           normalized.Sex,
		AgeClass:      normalized.AgeClass,
		Count:         normalized.Count,
		Timestamp:     timestamp.UTC(),
		Coordinates:   normalized.Coordinates,
		Detail:        normalized.Detail,
		Disposition:   normalized.Disposition,
		TagID:         normalized.TagID,
		PhotoRefs:     normalized.PhotoRefs,
		RecordedBy:    normalized.RecordedBy,
		RecordedAt:    recordedAt,
	}, nil
}

// NormalizeCreateHarvestRecordInput trims and validates harvest input.
func NormalizeCreateHarvestRecordInput(input CreateHarvestRecordInput) (CreateHarvestRecordInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return CreateHarvestRecordInput{}, ErrEmptySessionID
	}
	input.ShooterID = strings.TrimSpace(input.ShooterID)
	if input.ShooterID == "" {
		return CreateHarvestRecordInput{}, ErrEmptyShooterID
	}
	input.Species = strings.TrimSpace(input.Species)
	if input.Species == "" {
		return CreateHarvestRecordInput{}, ErrEmptySpecies
	}
	if input.Count < 1 {
		return CreateHarvestRecordInput{}, ErrInvalidHarvestCount
	}
	if input.Sex == "" {
		input.Sex = GameSexUnknown
	}
	input.StandID = strings.TrimSpace(input.StandID)
	input.TagID = strings.TrimSpace(input.TagID)
	input.RecordedBy = strings.TrimSpace(input.RecordedBy)
	if input.RecordedBy == "" {
		input.RecordedBy = input.ShooterID
	}
	return input, nil
}

// NewVoidRecord builds the zero-count correction record that voids original.
// The original stays untouched; summaries subtract its count once the
// correction is appended.
func NewVoidRecord(original HarvestRecord, reason, recordedBy string, now func() time.Time, idGenerator func() (string, error)) (HarvestRecord, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	recordID, err := idGenerator()
	if err != nil {
		return HarvestRecord{}, fmt.Errorf("generate harvest record id: %w", err)
	}

	recordedAt := now().UTC()
	recordedBy = strings.TrimSpace(recordedBy)
	if recordedBy == "" {
		recordedBy = original.RecordedBy
	}

	return HarvestRecord{
		ID:            recordID,
		SessionID:     original.SessionID,
		ShooterID:     original.ShooterID,
		StandID:       original.StandID,
		DriveSequence: original.DriveSequence,
		Species:       original.Species,
		Sex:           original.Sex,
		AgeClass:      original.AgeClass,
		Count:         0,
		Timestamp:     recordedAt,
		VoidsRecordID: original.ID,
		VoidReason:    strings.TrimSpace(reason),
		RecordedBy:    recordedBy,
		RecordedAt:    recordedAt,
	}, nil
}
