package domain

import (
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 11, 14, 7, 0, 0, 0, time.UTC)
}

func stubID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func validSessionInput() CreateSessionInput {
	return CreateSessionInput{
		TerritoryID:     "territory-1",
		Name:            "Drückjagd Nordrevier",
		Type:            HuntTypeDriven,
		ScheduledDate:   time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC),
		OrganizerID:     "organizer-1",
		MaxParticipants: 20,
	}
}

func TestCreateSession(t *testing.T) {
	session, err := CreateSession(validSessionInput(), fixedClock, stubID("sess-1"))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID != "sess-1" {
		t.Fatalf("expected id sess-1, got %q", session.ID)
	}
	if session.Status != SessionStatusPlanned {
		t.Fatalf("expected planned status, got %v", session.Status)
	}
	if !session.CreatedAt.Equal(fixedClock()) || !session.UpdatedAt.Equal(fixedClock()) {
		t.Fatalf("expected fixed timestamps, got %v / %v", session.CreatedAt, session.UpdatedAt)
	}
	if session.CreatedBy != "organizer-1" {
		t.Fatalf("expected creator to default to organizer, got %q", session.CreatedBy)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateSessionInput)
		wantErr error
	}{
		{"empty territory", func(in *CreateSessionInput) { in.TerritoryID = "  " }, ErrEmptyTerritoryID},
		{"empty name", func(in *CreateSessionInput) { in.Name = "" }, ErrEmptySessionName},
		{"empty organizer", func(in *CreateSessionInput) { in.OrganizerID = "" }, ErrEmptyOrganizerID},
		{"zero capacity", func(in *CreateSessionInput) { in.MaxParticipants = 0 }, ErrInvalidMaxParticipants},
		{"negative capacity", func(in *CreateSessionInput) { in.MaxParticipants = -3 }, ErrInvalidMaxParticipants},
		{
			"timetable out of order",
			func(in *CreateSessionInput) {
				in.Timetable = Timetable{
					GatherAt:   time.Date(2026, 11, 14, 8, 0, 0, 0, time.UTC),
					BriefingAt: time.Date(2026, 11, 14, 7, 30, 0, 0, time.UTC),
				}
			},
			ErrTimetableOutOfOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validSessionInput()
			tt.mutate(&input)
			_, err := CreateSession(input, fixedClock, stubID("sess-1"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTimetableInOrderSkipsUnscheduledPhases(t *testing.T) {
	tt := Timetable{
		GatherAt: time.Date(2026, 11, 14, 7, 0, 0, 0, time.UTC),
		// briefing unscheduled
		StartAt: time.Date(2026, 11, 14, 8, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 11, 14, 14, 0, 0, 0, time.UTC),
	}
	if !tt.InOrder() {
		t.Fatal("expected timetable with gaps to be in order")
	}

	tt.EndAt = time.Date(2026, 11, 14, 7, 30, 0, 0, time.UTC)
	if tt.InOrder() {
		t.Fatal("expected end before start to be out of order")
	}
}

func TestTimetableAllowsEqualPhases(t *testing.T) {
	at := time.Date(2026, 11, 14, 7, 0, 0, 0, time.UTC)
	tt := Timetable{GatherAt: at, BriefingAt: at, StartAt: at, EndAt: at}
	if !tt.InOrder() {
		t.Fatal("expected equal phase times to be in order")
	}
}

func TestSessionStatusTransitions(t *testing.T) {
	tests := []struct {
		from    SessionStatus
		to      SessionStatus
		allowed bool
	}{
		{SessionStatusPlanned, SessionStatusActive, true},
		{SessionStatusActive, SessionStatusCompleted, true},
		{SessionStatusPlanned, SessionStatusCompleted, false},
		{SessionStatusActive, SessionStatusPlanned, false},
		{SessionStatusCompleted, SessionStatusActive, false},
		{SessionStatusCompleted, SessionStatusPlanned, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%v -> %v: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestSessionStatusRoundTrip(t *testing.T) {
	for _, status := range []SessionStatus{SessionStatusPlanned, SessionStatusActive, SessionStatusCompleted} {
		if got := ParseSessionStatus(status.String()); got != status {
			t.Fatalf("round trip for %v returned %v", status, got)
		}
	}
	if got := ParseSessionStatus("bogus"); got != SessionStatusUnspecified {
		t.Fatalf("expected unspecified for bogus, got %v", got)
	}
}

func TestRuleSetSpeciesPermitted(t *testing.T) {
	rules := RuleSet{PermittedSpecies: []string{"wild boar", "red fox"}}
	if !rules.SpeciesPermitted("Wild Boar") {
		t.Fatal("expected case-insensitive species match")
	}
	if rules.SpeciesPermitted("red deer") {
		t.Fatal("expected unlisted species to be rejected")
	}

	open := RuleSet{}
	if !open.SpeciesPermitted("red deer") {
		t.Fatal("expected empty permitted list to allow any species")
	}
}
