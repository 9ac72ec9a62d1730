package domain

import (
	"errors"
	"testing"
)

func TestCreateHarvestRecord(t *testing.T) {
	driveSeq := 2
	record, err := CreateHarvestRecord(CreateHarvestRecordInput{
		SessionID:     "sess-1",
		ShooterID:     "part-1",
		StandID:       "stand-3",
		DriveSequence: &driveSeq,
		Species:       "wild boar",
		Sex:           GameSexFemale,
		AgeClass:      "yearling",
		Count:         1,
		Detail:        HarvestDetail{ShotDistanceM: 60, ShotPlacement: "chamber", WeightKG: 45},
	}, fixedClock, stubID("harv-1"))
	if err != nil {
		t.Fatalf("create harvest record: %v", err)
	}
	if record.ID != "harv-1" {
		t.Fatalf("expected id harv-1, got %q", record.ID)
	}
	if record.IsCorrection() {
		t.Fatal("expected a fresh record not to be a correction")
	}
	if !record.Timestamp.Equal(fixedClock()) {
		t.Fatalf("expected timestamp defaulted from clock, got %v", record.Timestamp)
	}
	if record.RecordedBy != "part-1" {
		t.Fatalf("expected recorded-by to default to shooter, got %q", record.RecordedBy)
	}
}

func TestCreateHarvestRecordValidation(t *testing.T) {
	valid := CreateHarvestRecordInput{
		SessionID: "sess-1",
		ShooterID: "part-1",
		Species:   "roe deer",
		Count:     1,
	}

	tests := []struct {
		name    string
		mutate  func(*CreateHarvestRecordInput)
		wantErr error
	}{
		{"missing session", func(in *CreateHarvestRecordInput) { in.SessionID = "" }, ErrEmptySessionID},
		{"missing shooter", func(in *CreateHarvestRecordInput) { in.ShooterID = " " }, ErrEmptyShooterID},
		{"missing species", func(in *CreateHarvestRecordInput) { in.Species = "" }, ErrEmptySpecies},
		{"zero count", func(in *CreateHarvestRecordInput) { in.Count = 0 }, ErrInvalidHarvestCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := CreateHarvestRecord(input, fixedClock, stubID("harv-x"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateHarvestRecordDefaultsSexToUnknown(t *testing.T) {
	record, err := CreateHarvestRecord(CreateHarvestRecordInput{
		SessionID: "sess-1",
		ShooterID: "part-1",
		Species:   "red fox",
		Count:     1,
	}, fixedClock, stubID("harv-2"))
	if err != nil {
		t.Fatalf("create harvest record: %v", err)
	}
	if record.Sex != GameSexUnknown {
		t.Fatalf("expected unknown sex, got %q", record.Sex)
	}
}

func TestNewVoidRecord(t *testing.T) {
	original, err := CreateHarvestRecord(CreateHarvestRecordInput{
		SessionID: "sess-1",
		ShooterID: "part-1",
		Species:   "wild boar",
		Sex:       GameSexMale,
		Count:     2,
	}, fixedClock, stubID("harv-1"))
	if err != nil {
		t.Fatalf("create harvest record: %v", err)
	}

	void, err := NewVoidRecord(original, "double entry", "organizer-1", fixedClock, stubID("harv-void"))
	if err != nil {
		t.Fatalf("new void record: %v", err)
	}
	if !void.IsCorrection() {
		t.Fatal("expected void record to be a correction")
	}
	if void.VoidsRecordID != "harv-1" {
		t.Fatalf("expected reference to original, got %q", void.VoidsRecordID)
	}
	if void.Count != 0 {
		t.Fatalf("expected zero count, got %d", void.Count)
	}
	if void.Species != original.Species || void.Sex != original.Sex {
		t.Fatal("expected correction to mirror the original species and sex")
	}
	if void.VoidReason != "double entry" {
		t.Fatalf("expected void reason, got %q", void.VoidReason)
	}
}
