package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

// RecordHarvest appends an immutable entry to the session's harvest ledger
// and emits the harvest event. The species must be permitted by the session
// rules; a rejected record leaves no trace on the feed.
func (s *HuntService) RecordHarvest(ctx context.Context, input domain.CreateHarvestRecordInput) (domain.HarvestRecord, error) {
	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return domain.HarvestRecord{}, err
	}

	unlock := s.locks.lock(session.ID)
	defer unlock()

	session, err = s.getMutableSession(ctx, session.ID)
	if err != nil {
		return domain.HarvestRecord{}, err
	}

	record, err := domain.CreateHarvestRecord(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.HarvestRecord{}, mapHarvestInputErr(err)
	}

	if !session.Rules.SpeciesPermitted(record.Species) {
		return domain.HarvestRecord{}, apperrors.WithMetadata(apperrors.CodeHarvestSpeciesNotPermitted,
			"species is not permitted by the session rules",
			map[string]string{"species": record.Species})
	}

	if record.StandID != "" {
		stand, err := s.stores.Stands.GetStand(ctx, record.StandID)
		if err != nil || stand.SessionID != session.ID {
			if err != nil && !isNotFound(err) {
				return domain.HarvestRecord{}, fmt.Errorf("load stand: %w", err)
			}
			return domain.HarvestRecord{}, apperrors.New(apperrors.CodeNotFound,
				"stand does not belong to the session")
		}
	}

	if err := s.stores.Harvests.PutHarvestRecord(ctx, record); err != nil {
		return domain.HarvestRecord{}, fmt.Errorf("store harvest record: %w", err)
	}

	if _, err := s.emitEvent(ctx, session.ID, domain.EventTypeHarvest, record.RecordedBy,
		domain.HarvestPayload{
			HarvestID: record.ID,
			Species:   record.Species,
			Sex:       string(record.Sex),
			Count:     record.Count,
		}, domain.VisibilityEveryone); err != nil {
		return domain.HarvestRecord{}, err
	}
	return record, nil
}

// VoidHarvest appends a zero-count correction record referencing the
// original. The original entry is never edited or deleted.
func (s *HuntService) VoidHarvest(ctx context.Context, harvestID, reason, recordedBy string) (domain.HarvestRecord, error) {
	original, err := s.stores.Harvests.GetHarvestRecord(ctx, harvestID)
	if err != nil {
		return domain.HarvestRecord{}, mapStorageErr(err, "harvest record")
	}
	if original.IsCorrection() {
		return domain.HarvestRecord{}, apperrors.New(apperrors.CodeHarvestIsCorrection,
			"a correction record cannot itself be voided")
	}

	unlock := s.locks.lock(original.SessionID)
	defer unlock()

	records, err := s.stores.Harvests.ListHarvestRecords(ctx, original.SessionID)
	if err != nil {
		return domain.HarvestRecord{}, fmt.Errorf("list harvest records: %w", err)
	}
	for _, record := range records {
		if record.VoidsRecordID == original.ID {
			return domain.HarvestRecord{}, apperrors.WithMetadata(apperrors.CodeHarvestAlreadyVoided,
				"harvest record is already voided",
				map[string]string{"correction_id": record.ID})
		}
	}

	void, err := domain.NewVoidRecord(original, reason, recordedBy, s.clock, s.idGenerator)
	if err != nil {
		return domain.HarvestRecord{}, err
	}
	if err := s.stores.Harvests.PutHarvestRecord(ctx, void); err != nil {
		return domain.HarvestRecord{}, fmt.Errorf("store correction record: %w", err)
	}

	if _, err := s.emitEvent(ctx, original.SessionID, domain.EventTypeHarvest, void.RecordedBy,
		domain.HarvestPayload{
			HarvestID:     void.ID,
			Species:       void.Species,
			Sex:           string(void.Sex),
			Count:         0,
			VoidsRecordID: original.ID,
		}, domain.VisibilityEveryone); err != nil {
		return domain.HarvestRecord{}, err
	}
	return void, nil
}

// GetHarvestRecord fetches a ledger entry by ID.
func (s *HuntService) GetHarvestRecord(ctx context.Context, harvestID string) (domain.HarvestRecord, error) {
	record, err := s.stores.Harvests.GetHarvestRecord(ctx, harvestID)
	if err != nil {
		return domain.HarvestRecord{}, mapStorageErr(err, "harvest record")
	}
	return record, nil
}

// ListHarvestRecords returns all ledger entries of a session, corrections
// included.
func (s *HuntService) ListHarvestRecords(ctx context.Context, sessionID string) ([]domain.HarvestRecord, error) {
	records, err := s.stores.Harvests.ListHarvestRecords(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list harvest records: %w", err)
	}
	return records, nil
}

// HarvestSummary aggregates the harvest ledger net of voided records.
type HarvestSummary struct {
	SessionID  string
	TotalCount int
	BySpecies  map[string]int
	BySex      map[domain.GameSex]int
	ByShooter  map[string]int
}

// SummarizeHarvest reduces the ledger by species, sex, and shooter,
// subtracting voided counts. The summary is recomputed on demand from the
// full record list; nothing is cached.
func (s *HuntService) SummarizeHarvest(ctx context.Context, sessionID string) (HarvestSummary, error) {
	records, err := s.stores.Harvests.ListHarvestRecords(ctx, sessionID)
	if err != nil {
		return HarvestSummary{}, fmt.Errorf("list harvest records: %w", err)
	}

	byID := make(map[string]domain.HarvestRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	summary := HarvestSummary{
		SessionID: sessionID,
		BySpecies: make(map[string]int),
		BySex:     make(map[domain.GameSex]int),
		ByShooter: make(map[string]int),
	}
	add := func(record domain.HarvestRecord, count int) {
		summary.TotalCount += count
		summary.BySpecies[record.Species] += count
		summary.BySex[record.Sex] += count
		summary.ByShooter[record.ShooterID] += count
	}
	for _, record := range records {
		if record.IsCorrection() {
			if original, ok := byID[record.VoidsRecordID]; ok {
				add(original, -original.Count)
			}
			continue
		}
		add(record, record.Count)
	}
	return summary, nil
}

func mapHarvestInputErr(err error) error {
	if errors.Is(err, domain.ErrInvalidHarvestCount) {
		return apperrors.Wrap(apperrors.CodeHarvestInvalidCount, err.Error(), err)
	}
	return err
}
