// Package storage defines the persistence interfaces the coordination engine
// consumes. Implementations must be safe for concurrent use; the engine
// serializes contended writes itself, but reads may arrive at any time.
package storage

import (
	"context"
	"errors"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrStandOccupied indicates the stand already has an active assignment.
	ErrStandOccupied = errors.New("stand already has an active assignment")
	// ErrDriveRunning indicates another drive in the session is running.
	ErrDriveRunning = errors.New("session already has a running drive")
)

// SessionStore persists hunt session records.
type SessionStore interface {
	PutSession(ctx context.Context, session domain.HuntSession) error
	GetSession(ctx context.Context, id string) (domain.HuntSession, error)
}

// ParticipantStore persists participant records for a session.
type ParticipantStore interface {
	PutParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

// StandStore persists stand records for a session.
type StandStore interface {
	PutStand(ctx context.Context, stand domain.Stand) error
	GetStand(ctx context.Context, id string) (domain.Stand, error)
	ListStands(ctx context.Context, sessionID string) ([]domain.Stand, error)
}

// AssignmentStore persists stand assignments. CreateAssignment must reject a
// second active assignment for the same stand with ErrStandOccupied; released
// assignments are deleted outright, freeing the stand for reuse.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, assignment domain.Assignment) error
	PutAssignment(ctx context.Context, assignment domain.Assignment) error
	GetAssignment(ctx context.Context, id string) (domain.Assignment, error)
	GetActiveAssignmentForStand(ctx context.Context, standID string) (domain.Assignment, error)
	ListAssignments(ctx context.Context, sessionID string) ([]domain.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// DriveStore persists drive records. PutDrive must reject a second RUNNING
// drive within one session with ErrDriveRunning.
type DriveStore interface {
	PutDrive(ctx context.Context, drive domain.Drive) error
	GetDrive(ctx context.Context, id string) (domain.Drive, error)
	ListDrives(ctx context.Context, sessionID string) ([]domain.Drive, error)
	GetRunningDrive(ctx context.Context, sessionID string) (domain.Drive, error)
}

// EventStore persists the append-only live event feed. AppendEvent assigns
// the next per-session sequence number atomically and returns the stored
// event; the feed supports no update or delete.
type EventStore interface {
	AppendEvent(ctx context.Context, event domain.LiveEvent) (domain.LiveEvent, error)
	ListEventsSince(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]domain.LiveEvent, error)
}

// HarvestStore persists the append-only harvest ledger.
type HarvestStore interface {
	PutHarvestRecord(ctx context.Context, record domain.HarvestRecord) error
	GetHarvestRecord(ctx context.Context, id string) (domain.HarvestRecord, error)
	ListHarvestRecords(ctx context.Context, sessionID string) ([]domain.HarvestRecord, error)
}
