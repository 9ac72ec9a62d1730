package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/storage"
)

// PutSession inserts or replaces a session record.
func (s *Store) PutSession(ctx context.Context, session domain.HuntSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	permittedSpecies, err := encodeStrings(session.Rules.PermittedSpecies)
	if err != nil {
		return err
	}
	fireDirections, err := encodeStrings(session.Rules.FireDirections)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO hunt_sessions (
	id, territory_id, name, hunt_type, scheduled_date,
	gather_at, briefing_at, start_at, end_at, presentation_at,
	organizer_id, max_participants, registration_deadline,
	emergency_contact, rally_lat, rally_lng, contingency,
	permitted_species, fire_directions, max_shot_distance_m, special_instructions,
	status, created_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	territory_id = excluded.territory_id,
	name = excluded.name,
	hunt_type = excluded.hunt_type,
	scheduled_date = excluded.scheduled_date,
	gather_at = excluded.gather_at,
	briefing_at = excluded.briefing_at,
	start_at = excluded.start_at,
	end_at = excluded.end_at,
	presentation_at = excluded.presentation_at,
	organizer_id = excluded.organizer_id,
	max_participants = excluded.max_participants,
	registration_deadline = excluded.registration_deadline,
	emergency_contact = excluded.emergency_contact,
	rally_lat = excluded.rally_lat,
	rally_lng = excluded.rally_lng,
	contingency = excluded.contingency,
	permitted_species = excluded.permitted_species,
	fire_directions = excluded.fire_directions,
	max_shot_distance_m = excluded.max_shot_distance_m,
	special_instructions = excluded.special_instructions,
	status = excluded.status,
	updated_at = excluded.updated_at
`,
		session.ID,
		session.TerritoryID,
		session.Name,
		string(session.Type),
		toMillis(session.ScheduledDate),
		phaseMillis(session.Timetable.GatherAt),
		phaseMillis(session.Timetable.BriefingAt),
		phaseMillis(session.Timetable.StartAt),
		phaseMillis(session.Timetable.EndAt),
		phaseMillis(session.Timetable.PresentationAt),
		session.OrganizerID,
		session.MaxParticipants,
		toNullMillis(session.RegistrationDeadline),
		session.Safety.EmergencyContact,
		session.Safety.RallyPoint.Lat,
		session.Safety.RallyPoint.Lng,
		session.Safety.Contingency,
		permittedSpecies,
		fireDirections,
		session.Rules.MaxShotDistanceM,
		session.Rules.SpecialInstructions,
		session.Status.String(),
		session.CreatedBy,
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession fetches a session record by ID.
func (s *Store) GetSession(ctx context.Context, id string) (domain.HuntSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.HuntSession{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.HuntSession{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.HuntSession{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, territory_id, name, hunt_type, scheduled_date,
	gather_at, briefing_at, start_at, end_at, presentation_at,
	organizer_id, max_participants, registration_deadline,
	emergency_contact, rally_lat, rally_lng, contingency,
	permitted_species, fire_directions, max_shot_distance_m, special_instructions,
	status, created_by, created_at, updated_at
FROM hunt_sessions
WHERE id = ?
`, id)

	var (
		session                                           domain.HuntSession
		huntType, status                                  string
		scheduledDate, createdAt, updatedAt               int64
		gatherAt, briefingAt, startAt, endAt, presentedAt int64
		deadline                                          sql.NullInt64
		permittedSpeciesRaw, fireDirectionsRaw            string
	)
	if err := row.Scan(
		&session.ID,
		&session.TerritoryID,
		&session.Name,
		&huntType,
		&scheduledDate,
		&gatherAt,
		&briefingAt,
		&startAt,
		&endAt,
		&presentedAt,
		&session.OrganizerID,
		&session.MaxParticipants,
		&deadline,
		&session.Safety.EmergencyContact,
		&session.Safety.RallyPoint.Lat,
		&session.Safety.RallyPoint.Lng,
		&session.Safety.Contingency,
		&permittedSpeciesRaw,
		&fireDirectionsRaw,
		&session.Rules.MaxShotDistanceM,
		&session.Rules.SpecialInstructions,
		&status,
		&session.CreatedBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HuntSession{}, storage.ErrNotFound
		}
		return domain.HuntSession{}, fmt.Errorf("get session: %w", err)
	}

	permittedSpecies, err := decodeStrings(permittedSpeciesRaw)
	if err != nil {
		return domain.HuntSession{}, err
	}
	fireDirections, err := decodeStrings(fireDirectionsRaw)
	if err != nil {
		return domain.HuntSession{}, err
	}

	session.Type = domain.HuntType(huntType)
	session.ScheduledDate = fromMillis(scheduledDate)
	session.Timetable = domain.Timetable{
		GatherAt:       phaseTime(gatherAt),
		BriefingAt:     phaseTime(briefingAt),
		StartAt:        phaseTime(startAt),
		EndAt:          phaseTime(endAt),
		PresentationAt: phaseTime(presentedAt),
	}
	session.RegistrationDeadline = fromNullMillis(deadline)
	session.Rules.PermittedSpecies = permittedSpecies
	session.Rules.FireDirections = fireDirections
	session.Status = domain.ParseSessionStatus(status)
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	return session, nil
}

// phaseMillis persists unscheduled timetable phases as zero.
func phaseMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return toMillis(value)
}

func phaseTime(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return fromMillis(value)
}
