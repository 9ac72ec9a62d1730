package domain

import (
	"encoding/json"
	"fmt"
)

// SessionStatusChangedPayload captures the payload for session.status_changed events.
type SessionStatusChangedPayload struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// RegistrationConfirmedPayload captures the payload for registration.confirmed events.
type RegistrationConfirmedPayload struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
}

// StandAssignedPayload captures the payload for stand.assigned events.
type StandAssignedPayload struct {
	AssignmentID  string `json:"assignment_id"`
	StandID       string `json:"stand_id"`
	StandSequence int    `json:"stand_sequence"`
	ParticipantID string `json:"participant_id"`
}

// StandReleasedPayload captures the payload for stand.released events.
type StandReleasedPayload struct {
	AssignmentID  string `json:"assignment_id"`
	StandID       string `json:"stand_id"`
	StandSequence int    `json:"stand_sequence"`
	ParticipantID string `json:"participant_id"`
}

// DriveStartedPayload captures the payload for drive.started events.
type DriveStartedPayload struct {
	DriveID       string `json:"drive_id"`
	DriveSequence int    `json:"drive_sequence"`
	Name          string `json:"name,omitempty"`
}

// DriveEndedPayload captures the payload for drive.ended events.
type DriveEndedPayload struct {
	DriveID       string         `json:"drive_id"`
	DriveSequence int            `json:"drive_sequence"`
	SpeciesSeen   map[string]int `json:"species_seen,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Aborted       bool           `json:"aborted,omitempty"`
}

// SightingPayload captures the payload for sighting.reported events.
type SightingPayload struct {
	Species string  `json:"species"`
	Count   int     `json:"count"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// HarvestPayload captures the payload for harvest.recorded events.
type HarvestPayload struct {
	HarvestID     string `json:"harvest_id"`
	Species       string `json:"species"`
	Sex           string `json:"sex,omitempty"`
	Count         int    `json:"count"`
	VoidsRecordID string `json:"voids_record_id,omitempty"`
}

// DistressPayload captures the payload for distress.raised events.
type DistressPayload struct {
	ParticipantID string  `json:"participant_id"`
	Lat           float64 `json:"lat,omitempty"`
	Lng           float64 `json:"lng,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// EncodePayload serializes a typed event payload for storage.
func EncodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode event payload: %w", err)
	}
	return data, nil
}
