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

// PutStand inserts or replaces a stand record.
func (s *Store) PutStand(ctx context.Context, stand domain.Stand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(stand.ID) == "" {
		return fmt.Errorf("stand id is required")
	}
	if strings.TrimSpace(stand.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	fireDirections, err := encodeStrings(stand.Safety.FireDirections)
	if err != nil {
		return err
	}

	var elevation sql.NullFloat64
	if stand.ElevationM != nil {
		elevation = sql.NullFloat64{Float64: *stand.ElevationM, Valid: true}
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO stands (
	id, session_id, seq_number, name, stand_type, lat, lng, elevation_m,
	poi_id, description, access_note, orientation,
	fire_directions, safety_radius_m, cover, capacity,
	status, history_notes, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	seq_number = excluded.seq_number,
	name = excluded.name,
	stand_type = excluded.stand_type,
	lat = excluded.lat,
	lng = excluded.lng,
	elevation_m = excluded.elevation_m,
	poi_id = excluded.poi_id,
	description = excluded.description,
	access_note = excluded.access_note,
	orientation = excluded.orientation,
	fire_directions = excluded.fire_directions,
	safety_radius_m = excluded.safety_radius_m,
	cover = excluded.cover,
	capacity = excluded.capacity,
	status = excluded.status,
	history_notes = excluded.history_notes,
	updated_at = excluded.updated_at
`,
		stand.ID,
		stand.SessionID,
		stand.Sequence,
		stand.Name,
		stand.Type.String(),
		stand.Coordinates.Lat,
		stand.Coordinates.Lng,
		elevation,
		stand.PointOfInterestID,
		stand.Description,
		stand.AccessNote,
		stand.Orientation,
		fireDirections,
		stand.Safety.SafetyRadiusM,
		stand.Properties.Cover,
		stand.Properties.Capacity,
		stand.Status.String(),
		stand.HistoryNotes,
		toMillis(stand.CreatedAt),
		toMillis(stand.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put stand: %w", err)
	}
	return nil
}

const standColumns = `id, session_id, seq_number, name, stand_type, lat, lng, elevation_m,
	poi_id, description, access_note, orientation,
	fire_directions, safety_radius_m, cover, capacity,
	status, history_notes, created_at, updated_at`

// GetStand fetches a stand record by ID.
func (s *Store) GetStand(ctx context.Context, id string) (domain.Stand, error) {
	if err := ctx.Err(); err != nil {
		return domain.Stand{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Stand{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Stand{}, fmt.Errorf("stand id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+standColumns+`
FROM stands
WHERE id = ?
`, id)

	stand, err := scanStand(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Stand{}, storage.ErrNotFound
		}
		return domain.Stand{}, fmt.Errorf("get stand: %w", err)
	}
	return stand, nil
}

// ListStands returns all stands of a session ordered by sequence number.
func (s *Store) ListStands(ctx context.Context, sessionID string) ([]domain.Stand, error) {
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
SELECT `+standColumns+`
FROM stands
WHERE session_id = ?
ORDER BY seq_number
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list stands: %w", err)
	}
	defer rows.Close()

	var stands []domain.Stand
	for rows.Next() {
		stand, err := scanStand(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan stand row: %w", err)
		}
		stands = append(stands, stand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stand rows: %w", err)
	}
	return stands, nil
}

func scanStand(scan func(dest ...any) error) (domain.Stand, error) {
	var (
		stand              domain.Stand
		standType, status  string
		elevation          sql.NullFloat64
		fireDirectionsRaw  string
		createdAt, updated int64
	)
	if err := scan(
		&stand.ID,
		&stand.SessionID,
		&stand.Sequence,
		&stand.Name,
		&standType,
		&stand.Coordinates.Lat,
		&stand.Coordinates.Lng,
		&elevation,
		&stand.PointOfInterestID,
		&stand.Description,
		&stand.AccessNote,
		&stand.Orientation,
		&fireDirectionsRaw,
		&stand.Safety.SafetyRadiusM,
		&stand.Properties.Cover,
		&stand.Properties.Capacity,
		&status,
		&stand.HistoryNotes,
		&createdAt,
		&updated,
	); err != nil {
		return domain.Stand{}, err
	}

	fireDirections, err := decodeStrings(fireDirectionsRaw)
	if err != nil {
		return domain.Stand{}, err
	}

	stand.Type = domain.ParseStandType(standType)
	if elevation.Valid {
		stand.ElevationM = &elevation.Float64
	}
	stand.Safety.FireDirections = fireDirections
	stand.Status = domain.ParseStandStatus(status)
	stand.CreatedAt = fromMillis(createdAt)
	stand.UpdatedAt = fromMillis(updated)
	return stand, nil
}
