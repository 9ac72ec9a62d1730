package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
	"github.com/wieslogic/jagdlog/internal/storage"
)

var testClock = func() time.Time {
	return time.Date(2026, time.November, 14, 7, 0, 0, 0, time.UTC)
}

// fakeStores is an in-memory, thread-safe implementation of every storage
// interface the engine consumes.
type fakeStores struct {
	mu               sync.Mutex
	sessions         map[string]domain.HuntSession
	participants     map[string]domain.Participant
	participantOrder []string
	stands           map[string]domain.Stand
	assignments      map[string]domain.Assignment
	drives           map[string]domain.Drive
	events           map[string][]domain.LiveEvent
	harvests         map[string]domain.HarvestRecord
	harvestOrder     []string
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		sessions:     make(map[string]domain.HuntSession),
		participants: make(map[string]domain.Participant),
		stands:       make(map[string]domain.Stand),
		assignments:  make(map[string]domain.Assignment),
		drives:       make(map[string]domain.Drive),
		events:       make(map[string][]domain.LiveEvent),
		harvests:     make(map[string]domain.HarvestRecord),
	}
}

func (f *fakeStores) PutSession(ctx context.Context, session domain.HuntSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStores) GetSession(ctx context.Context, id string) (domain.HuntSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return domain.HuntSession{}, storage.ErrNotFound
	}
	return session, nil
}

func (f *fakeStores) PutParticipant(ctx context.Context, participant domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.participants[participant.ID]; !ok {
		f.participantOrder = append(f.participantOrder, participant.ID)
	}
	f.participants[participant.ID] = participant
	return nil
}

func (f *fakeStores) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	participant, ok := f.participants[id]
	if !ok {
		return domain.Participant{}, storage.ErrNotFound
	}
	return participant, nil
}

func (f *fakeStores) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var participants []domain.Participant
	for _, id := range f.participantOrder {
		if p, ok := f.participants[id]; ok && p.SessionID == sessionID {
			participants = append(participants, p)
		}
	}
	return participants, nil
}

func (f *fakeStores) DeleteParticipant(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.participants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.participants, id)
	return nil
}

func (f *fakeStores) PutStand(ctx context.Context, stand domain.Stand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stands[stand.ID] = stand
	return nil
}

func (f *fakeStores) GetStand(ctx context.Context, id string) (domain.Stand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stand, ok := f.stands[id]
	if !ok {
		return domain.Stand{}, storage.ErrNotFound
	}
	return stand, nil
}

func (f *fakeStores) ListStands(ctx context.Context, sessionID string) ([]domain.Stand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stands []domain.Stand
	for _, stand := range f.stands {
		if stand.SessionID == sessionID {
			stands = append(stands, stand)
		}
	}
	sort.Slice(stands, func(i, j int) bool { return stands[i].Sequence < stands[j].Sequence })
	return stands, nil
}

func (f *fakeStores) CreateAssignment(ctx context.Context, assignment domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.assignments {
		if existing.StandID == assignment.StandID {
			return storage.ErrStandOccupied
		}
	}
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *fakeStores) PutAssignment(ctx context.Context, assignment domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[assignment.ID]; !ok {
		return storage.ErrNotFound
	}
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *fakeStores) GetAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[id]
	if !ok {
		return domain.Assignment{}, storage.ErrNotFound
	}
	return assignment, nil
}

func (f *fakeStores) GetActiveAssignmentForStand(ctx context.Context, standID string) (domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, assignment := range f.assignments {
		if assignment.StandID == standID {
			return assignment, nil
		}
	}
	return domain.Assignment{}, storage.ErrNotFound
}

func (f *fakeStores) ListAssignments(ctx context.Context, sessionID string) ([]domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var assignments []domain.Assignment
	for _, assignment := range f.assignments {
		if assignment.SessionID == sessionID {
			assignments = append(assignments, assignment)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (f *fakeStores) DeleteAssignment(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeStores) PutDrive(ctx context.Context, drive domain.Drive) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if drive.Status == domain.DriveStatusRunning {
		for _, existing := range f.drives {
			if existing.ID != drive.ID && existing.SessionID == drive.SessionID && existing.Status == domain.DriveStatusRunning {
				return storage.ErrDriveRunning
			}
		}
	}
	f.drives[drive.ID] = drive
	return nil
}

func (f *fakeStores) GetDrive(ctx context.Context, id string) (domain.Drive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drive, ok := f.drives[id]
	if !ok {
		return domain.Drive{}, storage.ErrNotFound
	}
	return drive, nil
}

func (f *fakeStores) ListDrives(ctx context.Context, sessionID string) ([]domain.Drive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var drives []domain.Drive
	for _, drive := range f.drives {
		if drive.SessionID == sessionID {
			drives = append(drives, drive)
		}
	}
	sort.Slice(drives, func(i, j int) bool { return drives[i].Sequence < drives[j].Sequence })
	return drives, nil
}

func (f *fakeStores) GetRunningDrive(ctx context.Context, sessionID string) (domain.Drive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, drive := range f.drives {
		if drive.SessionID == sessionID && drive.Status == domain.DriveStatusRunning {
			return drive, nil
		}
	}
	return domain.Drive{}, storage.ErrNotFound
}

func (f *fakeStores) AppendEvent(ctx context.Context, event domain.LiveEvent) (domain.LiveEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.Seq = uint64(len(f.events[event.SessionID]) + 1)
	f.events[event.SessionID] = append(f.events[event.SessionID], event)
	return event, nil
}

func (f *fakeStores) ListEventsSince(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]domain.LiveEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []domain.LiveEvent
	for _, event := range f.events[sessionID] {
		if event.Seq > afterSeq {
			events = append(events, event)
			if limit > 0 && len(events) >= limit {
				break
			}
		}
	}
	return events, nil
}

func (f *fakeStores) PutHarvestRecord(ctx context.Context, record domain.HarvestRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.harvests[record.ID]; ok {
		return fmt.Errorf("harvest record %q already exists", record.ID)
	}
	f.harvests[record.ID] = record
	f.harvestOrder = append(f.harvestOrder, record.ID)
	return nil
}

func (f *fakeStores) GetHarvestRecord(ctx context.Context, id string) (domain.HarvestRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.harvests[id]
	if !ok {
		return domain.HarvestRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStores) ListHarvestRecords(ctx context.Context, sessionID string) ([]domain.HarvestRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []domain.HarvestRecord
	for _, id := range f.harvestOrder {
		if record, ok := f.harvests[id]; ok && record.SessionID == sessionID {
			records = append(records, record)
		}
	}
	return records, nil
}

// newTestService wires a HuntService against fresh fakes with a fixed clock
// and a sequential id generator.
func newTestService(t *testing.T, opts ...Option) (*HuntService, *fakeStores) {
	t.Helper()

	fakes := newFakeStores()
	var counter atomic.Uint64
	base := []Option{
		WithClock(testClock),
		WithIDGenerator(func() (string, error) {
			return fmt.Sprintf("id-%04d", counter.Add(1)), nil
		}),
	}
	svc := New(Stores{
		Sessions:     fakes,
		Participants: fakes,
		Stands:       fakes,
		Assignments:  fakes,
		Drives:       fakes,
		Events:       fakes,
		Harvests:     fakes,
	}, append(base, opts...)...)
	return svc, fakes
}

func createTestSession(t *testing.T, svc *HuntService, maxParticipants int) domain.HuntSession {
	t.Helper()

	session, err := svc.CreateSession(context.Background(), domain.CreateSessionInput{
		TerritoryID:     "territory-1",
		Name:            "November driven hunt",
		ScheduledDate:   testClock(),
		OrganizerID:     "organizer-1",
		MaxParticipants: maxParticipants,
		Rules: domain.RuleSet{
			PermittedSpecies: []string{"wild boar", "roe deer"},
		},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func registerConfirmed(t *testing.T, svc *HuntService, sessionID, name string) domain.Participant {
	t.Helper()

	participant, err := svc.RegisterParticipant(context.Background(), domain.CreateParticipantInput{
		SessionID:          sessionID,
		DisplayName:        name,
		Role:               domain.ParticipantRoleHunter,
		RegistrationStatus: domain.RegistrationStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return participant
}

func createTestStand(t *testing.T, svc *HuntService, sessionID string, sequence int) domain.Stand {
	t.Helper()

	stand, err := svc.CreateStand(context.Background(), domain.CreateStandInput{
		SessionID: sessionID,
		Sequence:  sequence,
	})
	if err != nil {
		t.Fatalf("create stand %d: %v", sequence, err)
	}
	return stand
}

func activateTestSession(t *testing.T, svc *HuntService, sessionID string) {
	t.Helper()

	registerConfirmed(t, svc, sessionID, "confirmed hunter")
	if _, err := svc.ActivateSession(context.Background(), sessionID); err != nil {
		t.Fatalf("activate session: %v", err)
	}
}
