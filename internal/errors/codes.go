// Package errors provides structured error handling for the coordination engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionNameEmpty             Code = "SESSION_NAME_EMPTY"
	CodeSessionTerritoryEmpty        Code = "SESSION_TERRITORY_EMPTY"
	CodeSessionOrganizerEmpty        Code = "SESSION_ORGANIZER_EMPTY"
	CodeSessionInvalidCapacity       Code = "SESSION_INVALID_CAPACITY"
	CodeSessionTimetableOutOfOrder   Code = "SESSION_TIMETABLE_OUT_OF_ORDER"
	CodeSessionInvalidTransition     Code = "SESSION_INVALID_STATUS_TRANSITION"
	CodeSessionCompleted             Code = "SESSION_COMPLETED"
	CodeSessionNoConfirmedRegistrant Code = "SESSION_NO_CONFIRMED_REGISTRANT"
	CodeSessionFull                  Code = "SESSION_FULL"

	// Participant errors
	CodeParticipantNameEmpty       Code = "PARTICIPANT_DISPLAY_NAME_EMPTY"
	CodeParticipantInvalidRole     Code = "PARTICIPANT_INVALID_ROLE"
	CodeParticipantInvalidDecision Code = "PARTICIPANT_INVALID_DECISION"
	CodeParticipantInvalidState    Code = "PARTICIPANT_INVALID_FIELD_STATE"

	// Stand and assignment errors
	CodeStandInvalidSequence Code = "STAND_INVALID_SEQUENCE"
	CodeStandClosed          Code = "STAND_CLOSED"
	CodeStandOccupied        Code = "STAND_OCCUPIED"

	// Drive errors
	CodeDriveInvalidSequence Code = "DRIVE_INVALID_SEQUENCE"
	CodeDriveForeignStand    Code = "DRIVE_FOREIGN_STAND"
	CodeDriveAlreadyRunning  Code = "DRIVE_ALREADY_RUNNING"
	CodeDriveNotPlanned      Code = "DRIVE_NOT_PLANNED"
	CodeDriveNotRunning      Code = "DRIVE_NOT_RUNNING"
	CodeDriveStillRunning    Code = "DRIVE_STILL_RUNNING"

	// Live event errors
	CodeEventInvalidType Code = "EVENT_INVALID_TYPE"

	// Harvest ledger errors
	CodeHarvestSpeciesNotPermitted Code = "HARVEST_SPECIES_NOT_PERMITTED"
	CodeHarvestInvalidCount        Code = "HARVEST_INVALID_COUNT"
	CodeHarvestIsCorrection        Code = "HARVEST_IS_CORRECTION"
	CodeHarvestAlreadyVoided       Code = "HARVEST_ALREADY_VOIDED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Kind groups codes into the engine's caller-facing error taxonomy.
type Kind int

const (
	// KindUnknown classifies errors outside the engine taxonomy.
	KindUnknown Kind = iota
	// KindValidation marks malformed or out-of-policy input.
	KindValidation
	// KindNotFound marks references to nonexistent records within a session.
	KindNotFound
	// KindConflict marks contention losses on shared resources.
	KindConflict
	// KindState marks operations invalid for the current entity status.
	KindState
	// KindCapacity marks registrations over the session participant limit.
	KindCapacity
)

// Kind classifies the code into the caller-facing taxonomy.
func (c Code) Kind() Kind {
	switch c {
	case CodeSessionNameEmpty,
		CodeSessionTerritoryEmpty,
		CodeSessionOrganizerEmpty,
		CodeSessionInvalidCapacity,
		CodeSessionTimetableOutOfOrder,
		CodeParticipantNameEmpty,
		CodeParticipantInvalidRole,
		CodeParticipantInvalidDecision,
		CodeParticipantInvalidState,
		CodeStandInvalidSequence,
		CodeDriveInvalidSequence,
		CodeDriveForeignStand,
		CodeEventInvalidType,
		CodeHarvestSpeciesNotPermitted,
		CodeHarvestInvalidCount,
		CodeHarvestIsCorrection:
		return KindValidation

	case CodeNotFound:
		return KindNotFound

	case CodeStandOccupied,
		CodeDriveAlreadyRunning:
		return KindConflict

	case CodeSessionInvalidTransition,
		CodeSessionCompleted,
		CodeSessionNoConfirmedRegistrant,
		CodeStandClosed,
		CodeDriveNotPlanned,
		CodeDriveNotRunning,
		CodeDriveStillRunning,
		CodeHarvestAlreadyVoided:
		return KindState

	case CodeSessionFull:
		return KindCapacity

	default:
		return KindUnknown
	}
}

// GRPCCode maps domain codes to gRPC status codes for the transport collaborator.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindConflict:
		return codes.AlreadyExists
	case KindState:
		return codes.FailedPrecondition
	case KindCapacity:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}
