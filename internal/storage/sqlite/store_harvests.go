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

// PutHarvestRecord inserts a harvest ledger entry. The ledger is append-only;
// an insert with an existing ID fails rather than overwriting.
func (s *Store) PutHarvestRecord(ctx context.Context, record domain.HarvestRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("harvest record id is required")
	}
	if strings.TrimSpace(record.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	photoRefs, err := encodeStrings(record.PhotoRefs)
	if err != nil {
		return err
	}

	var driveSequence sql.NullInt64
	if record.DriveSequence != nil {
		driveSequence = sql.NullInt64{Int64: int64(*record.DriveSequence), Valid: true}
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO harvest_records (
	id, session_id, shooter_id, stand_id, drive_sequence,
	species, sex, age_class, count, timestamp, lat, lng,
	shot_distance_m, shot_placement, weight_kg, remarks,
	disposition_status, disposition_plan, tag_id, photo_refs,
	voids_record_id, void_reason, recorded_by, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.SessionID,
		record.ShooterID,
		record.StandID,
		driveSequence,
		record.Species,
		string(record.Sex),
		record.AgeClass,
		record.Count,
		toMillis(record.Timestamp),
		record.Coordinates.Lat,
		record.Coordinates.Lng,
		record.Detail.ShotDistanceM,
		record.Detail.ShotPlacement,
		record.Detail.WeightKG,
		record.Detail.Remarks,
		record.Disposition.Status,
		record.Disposition.Plan,
		record.TagID,
		photoRefs,
		record.VoidsRecordID,
		record.VoidReason,
		record.RecordedBy,
		toMillis(record.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("put harvest record: %w", err)
	}
	return nil
}

const harvestColumns = `id, session_id, shooter_id, stand_id, drive_sequence,
	species, sex, age_class, count, timestamp, lat, lng,
	shot_distance_m, shot_placement, weight_kg, remarks,
	disposition_status, disposition_plan, tag_id, photo_refs,
	voids_record_id, void_reason, recorded_by, recorded_at`

// GetHarvestRecord fetches a harvest ledger entry by ID.
func (s *Store) GetHarvestRecord(ctx context.Context, id string) (domain.HarvestRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.HarvestRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.HarvestRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.HarvestRecord{}, fmt.Errorf("harvest record id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+harvestColumns+`
FROM harvest_records
WHERE id = ?
`, id)

	record, err := scanHarvestRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HarvestRecord{}, storage.ErrNotFound
		}
		return domain.HarvestRecord{}, fmt.Errorf("get harvest record: %w", err)
	}
	return record, nil
}

// ListHarvestRecords returns all ledger entries of a session in record order.
func (s *Store) ListHarvestRecords(ctx context.Context, sessionID string) ([]domain.HarvestRecord, error) {
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
SELECT `+harvestColumns+`
FROM harvest_records
WHERE session_id = ?
ORDER BY recorded_at, id
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list harvest records: %w", err)
	}
	defer rows.Close()

	var records []domain.HarvestRecord
	for rows.Next() {
		record, err := scanHarvestRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan harvest record row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate harvest record rows: %w", err)
	}
	return records, nil
}

func scanHarvestRecord(scan func(dest ...any) error) (domain.HarvestRecord, error) {
	var (
		record                domain.HarvestRecord
		driveSequence         sql.NullInt64
		sex                   string
		timestamp, recordedAt int64
		photoRefsRaw          string
	)
	if err := scan(
		&record.ID,
		&record.SessionID,
		&record.ShooterID,
		&record.StandID,
		&driveSequence,
		&record.Species,
		&sex,
		&record.AgeClass,
		&record.Count,
		&timestamp,
		&record.Coordinates.Lat,
		&record.Coordinates.Lng,
		&record.Detail.ShotDistanceM,
		&record.Detail.ShotPlacement,
		&record.Detail.WeightKG,
		&record.Detail.Remarks,
		&record.Disposition.Status,
		&record.Disposition.Plan,
		&record.TagID,
		&photoRefsRaw,
		&record.VoidsRecordID,
		&record.VoidReason,
		&record.RecordedBy,
		&recordedAt,
	); err != nil {
		return domain.HarvestRecord{}, err
	}

	photoRefs, err := decodeStrings(photoRefsRaw)
	if err != nil {
		return domain.HarvestRecord{}, err
	}

	if driveSequence.Valid {
		value := int(driveSequence.Int64)
		record.DriveSequence = &value
	}
	record.Sex = domain.GameSex(sex)
	record.Timestamp = fromMillis(timestamp)
	record.PhotoRefs = photoRefs
	record.RecordedAt = fromMillis(recordedAt)
	return record, nil
}
