package service

import (
	"context"
	"testing"

	apperrors "github.com/wieslogic/jagdlog/internal/errors"
	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

func recordTestHarvest(t *testing.T, svc *HuntService, sessionID, shooterID, species string, count int) domain.HarvestRecord {
	t.Helper()

	record, err := svc.RecordHarvest(context.Background(), domain.CreateHarvestRecordInput{
		SessionID: sessionID,
		ShooterID: shooterID,
		Species:   species,
		Sex:       domain.GameSexFemale,
		Count:     count,
	})
	if err != nil {
		t.Fatalf("record harvest: %v", err)
	}
	return record
}

func TestRecordHarvestAppendsLedgerAndFeed(t *testing.T) {
	t.Parallel()

	svc, fakes := newTestService(t)
	session := createTestSession(t, svc, 10)
	shooter := registerConfirmed(t, svc, session.ID, "hunter one")

	record := recordTestHarvest(t, svc, session.ID, shooter.ID, "wild boar", 2)
	if record.Sex != domain.GameSexFemale {
		t.Fatalf("sex = %v, want female", record.Sex)
	}

	records, err := svc.ListHarvestRecords(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	var sawHarvest bool
	for _, event := range fakes.events[session.ID] {
		if event.Type == domain.EventTypeHarvest && event.Origin == shooter.ID {
			sawHarvest = true
		}
	}
	if !sawHarvest {
		t.Fatal("harvest event missing from the feed")
	}
}

func TestRecordHarvestRejectsDisallowedSpecies(t *testing.T) {
	t.Parallel()

	svc, fakes := newTestService(t)
	session := createTestSession(t, svc, 10)
	shooter := registerConfirmed(t, svc, session.ID, "hunter one")
	eventsBefore := len(fakes.events[session.ID])

	_, err := svc.RecordHarvest(context.Background(), domain.CreateHarvestRecordInput{
		SessionID: session.ID,
		ShooterID: shooter.ID,
		Species:   "badger",
		Count:     1,
	})
	if !apperrors.IsCode(err, apperrors.CodeHarvestSpeciesNotPermitted) {
		t.Fatalf("err = %v, want code %s", err, apperrors.CodeHarvestSpeciesNotPermitted)
	}

	// A rejected record leaves neither a ledger entry nor a feed event.
	records, err := svc.ListHarvestRecords(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0", len(records))
	}
	if got := len(fakes.events[session.ID]); got != eventsBefore {
		t.Fatalf("events = %d, want %d", got, eventsBefore)
	}
}

func TestRecordHarvestValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	session := createTestSession(t, svc, 10)
	other := createTestSession(t, svc, 10)
	foreignStand := createTestStand(t, svc, other.ID, 1)
	shooter := registerConfirmed(t, svc, session.ID, "hunter one")
	ctx := context.Background()

	_, err := svc.RecordHarvest(ctx, domain.CreateHarvestRecordInput{
		SessionID: session.ID,
		ShooterID: shooter.ID,
		Species:   "wild boar",
		Count:     0,
	})
	if !apperrors.IsCode(err, apperrors.CodeHarvestInvalidCount) {
		t.Fatalf("count err = %v, want code %s", err, apperrors.CodeHarvestInvalidCount)
	}

	_, err = svc.RecordHarvest(ctx, domain.CreateHarvestRecordInput{
		SessionID: session.ID,
		ShooterID: shooter.ID,
		StandID:   foreignStand.ID,
		Species:   "wild boar",
		Count:     1,
	})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("foreign stand err = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestVoidHarvestLeavesOriginalUntouched(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	session := createTestSession(t, svc, 10)
	shooter := registerConfirmed(t, svc, session.ID, "hunter one")
	ctx := context.Background()

	original := recordTestHarvest(t, svc, session.ID, shooter.ID, "wild boar", 2)

	void, err := svc.VoidHarvest(ctx, original.ID, "double count", "organizer-1")
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if void.VoidsRecordID != original.ID || void.Count != 0 {
		t.Fatalf("void record = %+v, want zero-count correction of %s", void, original.ID)
	}

	stored, err := svc.GetHarvestRecord(ctx, original.ID)
	if err != nil {
		t.Fatalf("get original: %v", err)
	}
	if stored.Count != 2 || stored.VoidsRecordID != "" {
		t.Fatalf("original mutated: %+v", stored)
	}

	records, err := svc.ListHarvestRecords(ctx, session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
}

func TestVoidHarvestGuards(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	session := createTestSession(t, svc, 10)
	shooter := registerConfirmed(t, svc, session.ID, "hunter one")
	ctx := context.Background()

	original := recordTestHarvest(t, svc, session.ID, shooter.ID, "wild boar", 1)
	void, err := svc.VoidHarvest(ctx, original.ID, "wrong species", "")
	if err != nil {
		t.Fatalf("void: %v", err)
	}

	// Voiding twice or voiding the correction itself is rejected.
	if _, err := svc.VoidHarvest(ctx, original.ID, "again", ""); !apperrors.IsCode(err, apperrors.CodeHarvestAlreadyVoided) {
		t.Fatalf("double void err = %v, want code %s", err, apperrors.CodeHarvestAlreadyVoided)
	}
	if _, err := svc.VoidHarvest(ctx, void.ID, "nested", ""); !apperrors.IsCode(err, apperrors.CodeHarvestIsCorrection) {
		t.Fatalf("void correction err = %v, want code %s", err, apperrors.CodeHarvestIsCorrection)
	}
	if _, err := svc.VoidHarvest(ctx, "missing", "", ""); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("missing err = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestSummarizeHarvestNetsOutVoids(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	session := createTestSession(t, svc, 10)
	shooterA := registerConfirmed(t, svc, session.ID, "hunter one")
	shooterB := registerConfirmed(t, svc, session.ID, "hunter two")
	ctx := context.Background()

	boars := recordTestHarvest(t, svc, session.ID, shooterA.ID, "wild boar", 2)
	recordTestHarvest(t, svc, session.ID, shooterB.ID, "roe deer", 1)

	before, err := svc.SummarizeHarvest(ctx, session.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if before.TotalCount != 3 {
		t.Fatalf("total = %d, want 3", before.TotalCount)
	}
	if before.BySpecies["wild boar"] != 2 || before.BySpecies["roe deer"] != 1 {
		t.Fatalf("by species = %v", before.BySpecies)
	}
	if before.ByShooter[shooterA.ID] != 2 {
		t.Fatalf("by shooter = %v", before.ByShooter)
	}

	if _, err := svc.VoidHarvest(ctx, boars.ID, "double count", ""); err != nil {
		t.Fatalf("void: %v", err)
	}

	after, err := svc.SummarizeHarvest(ctx, session.ID)
	if err != nil {
		t.Fatalf("summarize after void: %v", err)
	}
	if after.TotalCount != 1 {
		t.Fatalf("total after void = %d, want 1", after.TotalCount)
	}
	if after.BySpecies["wild boar"] != 0 {
		t.Fatalf("wild boar after void = %d, want 0", after.BySpecies["wild boar"])
	}
	if after.BySpecies["roe deer"] != 1 {
		t.Fatalf("roe deer after void = %d, want 1", after.BySpecies["roe deer"])
	}
	if after.ByShooter[shooterA.ID] != 0 {
		t.Fatalf("shooter A after void = %d, want 0", after.ByShooter[shooterA.ID])
	}
}
