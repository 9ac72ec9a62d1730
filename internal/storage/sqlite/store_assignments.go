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

// CreateAssignment inserts a new assignment. The unique index on stand_id
// turns a concurrent claim of the same stand into storage.ErrStandOccupied.
func (s *Store) CreateAssignment(ctx context.Context, assignment domain.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(assignment.ID) == "" {
		return fmt.Errorf("assignment id is required")
	}
	if strings.TrimSpace(assignment.StandID) == "" {
		return fmt.Errorf("stand id is required")
	}

	confirmed := 0
	if assignment.Confirmed {
		confirmed = 1
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO assignments (
	id, session_id, stand_id, participant_id, assigned_by, assigned_at,
	priority, confirmed, confirmed_at, notes
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		assignment.ID,
		assignment.SessionID,
		assignment.StandID,
		assignment.ParticipantID,
		assignment.AssignedBy,
		toMillis(assignment.AssignedAt),
		assignment.Priority,
		confirmed,
		toNullMillis(assignment.ConfirmedAt),
		assignment.Notes,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return storage.ErrStandOccupied
		}
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// PutAssignment updates an existing assignment record.
func (s *Store) PutAssignment(ctx context.Context, assignment domain.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(assignment.ID) == "" {
		return fmt.Errorf("assignment id is required")
	}

	confirmed := 0
	if assignment.Confirmed {
		confirmed = 1
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE assignments SET
	participant_id = ?,
	assigned_by = ?,
	assigned_at = ?,
	priority = ?,
	confirmed = ?,
	confirmed_at = ?,
	notes = ?
WHERE id = ?
`,
		assignment.ParticipantID,
		assignment.AssignedBy,
		toMillis(assignment.AssignedAt),
		assignment.Priority,
		confirmed,
		toNullMillis(assignment.ConfirmedAt),
		assignment.Notes,
		assignment.ID,
	)
	if err != nil {
		return fmt.Errorf("put assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put assignment rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const assignmentColumns = `id, session_id, stand_id, participant_id, assigned_by, assigned_at,
	priority, confirmed, confirmed_at, notes`

// GetAssignment fetches an assignment record by ID.
func (s *Store) GetAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Assignment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Assignment{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Assignment{}, fmt.Errorf("assignment id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+assignmentColumns+`
FROM assignments
WHERE id = ?
`, id)

	assignment, err := scanAssignment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Assignment{}, storage.ErrNotFound
		}
		return domain.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return assignment, nil
}

// GetActiveAssignmentForStand fetches the assignment currently holding a stand.
func (s *Store) GetActiveAssignmentForStand(ctx context.Context, standID string) (domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Assignment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Assignment{}, fmt.Errorf("storage is not configured")
	}
	standID = strings.TrimSpace(standID)
	if standID == "" {
		return domain.Assignment{}, fmt.Errorf("stand id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+assignmentColumns+`
FROM assignments
WHERE stand_id = ?
`, standID)

	assignment, err := scanAssignment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Assignment{}, storage.ErrNotFound
		}
		return domain.Assignment{}, fmt.Errorf("get active assignment: %w", err)
	}
	return assignment, nil
}

// ListAssignments returns all assignments of a session ordered by creation.
func (s *Store) ListAssignments(ctx context.Context, sessionID string) ([]domain.Assignment, error) {
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
SELECT `+assignmentColumns+`
FROM assignments
WHERE session_id = ?
ORDER BY assigned_at, id
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan assignment row: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignment rows: %w", err)
	}
	return assignments, nil
}

// DeleteAssignment removes an assignment, freeing its stand.
func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("assignment id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assignment rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanAssignment(scan func(dest ...any) error) (domain.Assignment, error) {
	var (
		assignment  domain.Assignment
		assignedAt  int64
		confirmed   int
		confirmedAt sql.NullInt64
	)
	if err := scan(
		&assignment.ID,
		&assignment.SessionID,
		&assignment.StandID,
		&assignment.ParticipantID,
		&assignment.AssignedBy,
		&assignedAt,
		&assignment.Priority,
		&confirmed,
		&confirmedAt,
		&assignment.Notes,
	); err != nil {
		return domain.Assignment{}, err
	}

	assignment.AssignedAt = fromMillis(assignedAt)
	assignment.Confirmed = confirmed != 0
	assignment.ConfirmedAt = fromNullMillis(confirmedAt)
	return assignment, nil
}
