package domain

import "time"

// LiveEventType identifies the type of a live feed event.
type LiveEventType string

// Session lifecycle events.
const (
	// EventTypeSessionStatusChanged records a session status transition.
	EventTypeSessionStatusChanged LiveEventType = "session.status_changed"
)

// Registration events.
const (
	// EventTypeRegistrationConfirmed records an accepted registration.
	EventTypeRegistrationConfirmed LiveEventType = "registration.confirmed"
)

// Stand events.
const (
	// EventTypeStandAssigned records an exclusive stand assignment.
	EventTypeStandAssigned LiveEventType = "stand.assigned"
	// EventTypeStandReleased records the release of a stand assignment.
	EventTypeStandReleased LiveEventType = "stand.released"
)

// Drive events.
const (
	// EventTypeDriveStarted records the start of a drive phase.
	EventTypeDriveStarted LiveEventType = "drive.started"
	// EventTypeDriveEnded records the end of a drive phase.
	EventTypeDriveEnded LiveEventType = "drive.ended"
)

// Field events.
const (
	// EventTypeSighting records game sighted by a participant.
	EventTypeSighting LiveEventType = "sighting.reported"
	// EventTypeHarvest records an entry in the harvest ledger.
	EventTypeHarvest LiveEventType = "harvest.recorded"
	// EventTypeDistress records an emergency signal. Distress events are
	// never filtered from any consumer's view.
	EventTypeDistress LiveEventType = "distress.raised"
	// EventTypeCustom records free-form organizer announcements.
	EventTypeCustom LiveEventType = "custom"
)

// IsValid reports whether the live event type is supported.
func (t LiveEventType) IsValid() bool {
	switch t {
	case EventTypeSessionStatusChanged,
		EventTypeRegistrationConfirmed,
		EventTypeStandAssigned,
		EventTypeStandReleased,
		EventTypeDriveStarted,
		EventTypeDriveEnded,
		EventTypeSighting,
		EventTypeHarvest,
		EventTypeDistress,
		EventTypeCustom:
		return true
	default:
		return false
	}
}

// EventVisibility scopes who may see a live event.
type EventVisibility int

const (
	// VisibilityUnspecified represents an invalid visibility value.
	VisibilityUnspecified EventVisibility = iota
	// VisibilityEveryone makes the event visible to all participants.
	VisibilityEveryone
	// VisibilityOrganizersOnly restricts the event to organizers.
	// Distress events ignore this restriction by design.
	VisibilityOrganizersOnly
)

// String returns the persisted representation of the visibility.
func (v EventVisibility) String() string {
	switch v {
	case VisibilityEveryone:
		return "EVERYONE"
	case VisibilityOrganizersOnly:
		return "ORGANIZERS_ONLY"
	default:
		return "UNSPECIFIED"
	}
}

// ParseEventVisibility maps a persisted visibility string back to its value.
func ParseEventVisibility(value string) EventVisibility {
	switch value {
	case "EVERYONE":
		return VisibilityEveryone
	case "ORGANIZERS_ONLY":
		return VisibilityOrganizersOnly
	default:
		return VisibilityUnspecified
	}
}

// SystemOrigin is the origin recorded on engine-emitted events.
const SystemOrigin = "system"

// LiveEvent captures an immutable entry in a session's occurrence feed.
// Seq is assigned by the event store inside the append transaction and is the
// only total order the engine promises; timestamps are informational.
type LiveEvent struct {
	ID          string
	SessionID   string
	Seq         uint64
	Type        LiveEventType
	Timestamp   time.Time
	Origin      string // participant id, or SystemOrigin
	PayloadJSON []byte
	Visibility  EventVisibility
}

// Distress reports whether the event is an emergency signal.
func (e LiveEvent) Distress() bool {
	return e.Type == EventTypeDistress
}
