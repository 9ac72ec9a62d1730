package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/storage"
)

// PutParticipant inserts or replaces a participant record.
func (s *Store) PutParticipant(ctx context.Context, participant domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(participant.ID) == "" {
		return fmt.Errorf("participant id is required")
	}
	if strings.TrimSpace(participant.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	fieldState := ""
	var fieldAt sql.NullInt64
	if participant.FieldStatus != nil {
		fieldState = participant.FieldStatus.State.String()
		fieldAt = sql.NullInt64{Int64: toMillis(participant.FieldStatus.At), Valid: true}
	}

	firstHunt := 0
	if participant.Experience.FirstHunt {
		firstHunt = 1
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO participants (
	id, session_id, account_id, display_name, phone, email, role,
	weapon, caliber, optics, equipment_notes,
	years_active, first_hunt, experience_notes,
	registration_status, applied_at, decision_comment,
	assigned_stand_id, field_state, field_at,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	account_id = excluded.account_id,
	display_name = excluded.display_name,
	phone = excluded.phone,
	email = excluded.email,
	role = excluded.role,
	weapon = excluded.weapon,
	caliber = excluded.caliber,
	optics = excluded.optics,
	equipment_notes = excluded.equipment_notes,
	years_active = excluded.years_active,
	first_hunt = excluded.first_hunt,
	experience_notes = excluded.experience_notes,
	registration_status = excluded.registration_status,
	applied_at = excluded.applied_at,
	decision_comment = excluded.decision_comment,
	assigned_stand_id = excluded.assigned_stand_id,
	field_state = excluded.field_state,
	field_at = excluded.field_at,
	updated_at = excluded.updated_at
`,
		participant.ID,
		participant.SessionID,
		participant.AccountID,
		participant.DisplayName,
		participant.Phone,
		participant.Email,
		participant.Role.String(),
		participant.Equipment.Weapon,
		participant.Equipment.Caliber,
		participant.Equipment.Optics,
		participant.Equipment.Notes,
		participant.Experience.YearsActive,
		firstHunt,
		participant.Experience.Notes,
		participant.Registration.Status.String(),
		toMillis(participant.Registration.AppliedAt),
		participant.Registration.DecisionComment,
		participant.AssignedStandID,
		fieldState,
		fieldAt,
		toMillis(participant.CreatedAt),
		toMillis(participant.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put participant: %w", err)
	}
	return nil
}

const participantColumns = `id, session_id, account_id, display_name, phone, email, role,
	weapon, caliber, optics, equipment_notes,
	years_active, first_hunt, experience_notes,
	registration_status, applied_at, decision_comment,
	assigned_stand_id, field_state, field_at,
	created_at, updated_at`

// GetParticipant fetches a participant record by ID.
func (s *Store) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Participant{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Participant{}, fmt.Errorf("participant id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+participantColumns+`
FROM participants
WHERE id = ?
`, id)

	participant, err := scanParticipant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Participant{}, storage.ErrNotFound
		}
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

// ListParticipants returns all participants of a session ordered by creation.
func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+participantColumns+`
FROM participants
WHERE session_id = ?
ORDER BY created_at, id
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}
	return participants, nil
}

// DeleteParticipant removes a participant record.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("participant id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanParticipant(scan func(dest ...any) error) (domain.Participant, error) {
	var (
		participant        domain.Participant
		role, regStatus    string
		fieldState         string
		fieldAt            sql.NullInt64
		firstHunt          int
		appliedAt          int64
		createdAt, updated int64
	)
	if err := scan(
		&participant.ID,
		&participant.SessionID,
		&participant.AccountID,
		&participant.DisplayName,
		&participant.Phone,
		&participant.Email,
		&role,
		&participant.Equipment.Weapon,
		&participant.Equipment.Caliber,
		&participant.Equipment.Optics,
		&participant.Equipment.Notes,
		&participant.Experience.YearsActive,
		&firstHunt,
		&participant.Experience.Notes,
		&regStatus,
		&appliedAt,
		&participant.Registration.DecisionComment,
		&participant.AssignedStandID,
		&fieldState,
		&fieldAt,
		&createdAt,
		&updated,
	); err != nil {
		return domain.Participant{}, err
	}

	participant.Role = domain.ParseParticipantRole(role)
	participant.Experience.FirstHunt = firstHunt != 0
	participant.Registration.Status = domain.ParseRegistrationStatus(regStatus)
	participant.Registration.AppliedAt = fromMillis(appliedAt)
	if fieldState != "" && fieldAt.Valid {
		participant.FieldStatus = &domain.FieldStatus{
			State: domain.ParseFieldState(fieldState),
			At:    fromMillis(fieldAt.Int64),
		}
	}
	participant.CreatedAt = fromMillis(createdAt)
	participant.UpdatedAt = fromMillis(updated)
	return participant, nil
}
