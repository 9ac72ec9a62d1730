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

// PutDrive inserts or replaces a drive record. The partial unique index on
// running drives turns a concurrent second start into storage.ErrDriveRunning.
func (s *Store) PutDrive(ctx context.Context, drive domain.Drive) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(drive.ID) == "" {
		return fmt.Errorf("drive id is required")
	}
	if strings.TrimSpace(drive.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	driverIDs, err := encodeStrings(drive.DriverIDs)
	if err != nil {
		return err
	}
	dogHandlerIDs, err := encodeStrings(drive.DogHandlerIDs)
	if err != nil {
		return err
	}
	activeStandIDs, err := encodeStrings(drive.ActiveStandIDs)
	if err != nil {
		return err
	}

	speciesSeen := "{}"
	resultNotes := ""
	aborted := 0
	hasResult := 0
	if drive.Result != nil {
		hasResult = 1
		resultNotes = drive.Result.Notes
		if drive.Result.Aborted {
			aborted = 1
		}
		speciesSeen, err = encodeCounts(drive.Result.SpeciesSeen)
		if err != nil {
			return err
		}
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO drives (
	id, session_id, seq_number, name, planned_start, estimated_duration_s,
	started_at, actual_end, center_lat, center_lng, radius_m, sweep_direction,
	driver_ids, dog_handler_ids, active_stand_ids, status,
	species_seen, result_notes, aborted, has_result,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	seq_number = excluded.seq_number,
	name = excluded.name,
	planned_start = excluded.planned_start,
	estimated_duration_s = excluded.estimated_duration_s,
	started_at = excluded.started_at,
	actual_end = excluded.actual_end,
	center_lat = excluded.center_lat,
	center_lng = excluded.center_lng,
	radius_m = excluded.radius_m,
	sweep_direction = excluded.sweep_direction,
	driver_ids = excluded.driver_ids,
	dog_handler_ids = excluded.dog_handler_ids,
	active_stand_ids = excluded.active_stand_ids,
	status = excluded.status,
	species_seen = excluded.species_seen,
	result_notes = excluded.result_notes,
	aborted = excluded.aborted,
	has_result = excluded.has_result,
	updated_at = excluded.updated_at
`,
		drive.ID,
		drive.SessionID,
		drive.Sequence,
		drive.Name,
		phaseMillis(drive.PlannedStart),
		int64(drive.EstimatedDuration/time.Second),
		toNullMillis(drive.StartedAt),
		toNullMillis(drive.ActualEnd),
		drive.Area.Center.Lat,
		drive.Area.Center.Lng,
		drive.Area.RadiusM,
		drive.SweepDirection,
		driverIDs,
		dogHandlerIDs,
		activeStandIDs,
		drive.Status.String(),
		speciesSeen,
		resultNotes,
		aborted,
		hasResult,
		toMillis(drive.CreatedAt),
		toMillis(drive.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return storage.ErrDriveRunning
		}
		return fmt.Errorf("put drive: %w", err)
	}
	return nil
}

const driveColumns = `id, session_id, seq_number, name, planned_start, estimated_duration_s,
	started_at, actual_end, center_lat, center_lng, radius_m, sweep_direction,
	driver_ids, dog_handler_ids, active_stand_ids, status,
	species_seen, result_notes, aborted, has_result,
	created_at, updated_at`

// GetDrive fetches a drive record by ID.
func (s *Store) GetDrive(ctx context.Context, id string) (domain.Drive, error) {
	if err := ctx.Err(); err != nil {
		return domain.Drive{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Drive{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Drive{}, fmt.Errorf("drive id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+driveColumns+`
FROM drives
WHERE id = ?
`, id)

	drive, err := scanDrive(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Drive{}, storage.ErrNotFound
		}
		return domain.Drive{}, fmt.Errorf("get drive: %w", err)
	}
	return drive, nil
}

// ListDrives returns all drives of a session ordered by sequence number.
func (s *Store) ListDrives(ctx context.Context, sessionID string) ([]domain.Drive, error) {
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
SELECT `+driveColumns+`
FROM drives
WHERE session_id = ?
ORDER BY seq_number
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list drives: %w", err)
	}
	defer rows.Close()

	var drives []domain.Drive
	for rows.Next() {
		drive, err := scanDrive(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan drive row: %w", err)
		}
		drives = append(drives, drive)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drive rows: %w", err)
	}
	return drives, nil
}

// GetRunningDrive fetches the session's running drive, if any.
func (s *Store) GetRunningDrive(ctx context.Context, sessionID string) (domain.Drive, error) {
	if err := ctx.Err(); err != nil {
		return domain.Drive{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Drive{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Drive{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+driveColumns+`
FROM drives
WHERE session_id = ? AND status = 'RUNNING'
`, sessionID)

	drive, err := scanDrive(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Drive{}, storage.ErrNotFound
		}
		return domain.Drive{}, fmt.Errorf("get running drive: %w", err)
	}
	return drive, nil
}

func scanDrive(scan func(dest ...any) error) (domain.Drive, error) {
	var (
		drive                   domain.Drive
		plannedStart, durationS int64
		startedAt, actualEnd    sql.NullInt64
		driverIDsRaw            string
		dogHandlerIDsRaw        string
		activeStandIDsRaw       string
		status                  string
		speciesSeenRaw          string
		resultNotes             string
		aborted, hasResult      int
		createdAt, updated      int64
	)
	if err := scan(
		&drive.ID,
		&drive.SessionID,
		&drive.Sequence,
		&drive.Name,
		&plannedStart,
		&durationS,
		&startedAt,
		&actualEnd,
		&drive.Area.Center.Lat,
		&drive.Area.Center.Lng,
		&drive.Area.RadiusM,
		&drive.SweepDirection,
		&driverIDsRaw,
		&dogHandlerIDsRaw,
		&activeStandIDsRaw,
		&status,
		&speciesSeenRaw,
		&resultNotes,
		&aborted,
		&hasResult,
		&createdAt,
		&updated,
	); err != nil {
		return domain.Drive{}, err
	}

	driverIDs, err := decodeStrings(driverIDsRaw)
	if err != nil {
		return domain.Drive{}, err
	}
	dogHandlerIDs, err := decodeStrings(dogHandlerIDsRaw)
	if err != nil {
		return domain.Drive{}, err
	}
	activeStandIDs, err := decodeStrings(activeStandIDsRaw)
	if err != nil {
		return domain.Drive{}, err
	}

	drive.PlannedStart = phaseTime(plannedStart)
	drive.EstimatedDuration = time.Duration(durationS) * time.Second
	drive.StartedAt = fromNullMillis(startedAt)
	drive.ActualEnd = fromNullMillis(actualEnd)
	drive.DriverIDs = driverIDs
	drive.DogHandlerIDs = dogHandlerIDs
	drive.ActiveStandIDs = activeStandIDs
	drive.Status = domain.ParseDriveStatus(status)
	if hasResult != 0 {
		speciesSeen, err := decodeCounts(speciesSeenRaw)
		if err != nil {
			return domain.Drive{}, err
		}
		drive.Result = &domain.DriveResult{
			SpeciesSeen: speciesSeen,
			Notes:       resultNotes,
			Aborted:     aborted != 0,
		}
	}
	drive.CreatedAt = fromMillis(createdAt)
	drive.UpdatedAt = fromMillis(updated)
	return drive, nil
}
