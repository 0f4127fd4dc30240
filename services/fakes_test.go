package services_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
)

// memStore — in-memory замена Postgres для сервисных тестов. Реализует все
// интерфейсы репозиториев и TxRunner; WithinTx держит общий мьютекс на всё
// время транзакции и откатывает снапшот при ошибке, воспроизводя семантику
// блокировки строки турнира.
type memStore struct {
	mu sync.Mutex

	nextRegistrationID int
	nextParticipantID  int
	nextActionID       int

	tournaments   map[int]models.Tournament
	registrations map[int]models.Registration
	participants  map[int][]models.Participant
	actions       []models.AdminAction
	admins        map[int]models.Admin
}

func newMemStore() *memStore {
	return &memStore{
		nextRegistrationID: 1,
		nextParticipantID:  1,
		nextActionID:       1,
		tournaments:        make(map[int]models.Tournament),
		registrations:      make(map[int]models.Registration),
		participants:       make(map[int][]models.Participant),
		admins:             make(map[int]models.Admin),
	}
}

// txMarker помечает вызовы репозиториев внутри WithinTx: мьютекс уже взят.
type txMarker struct{}

func (txMarker) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	panic("txMarker is not a real executor")
}
func (txMarker) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	panic("txMarker is not a real executor")
}
func (txMarker) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	panic("txMarker is not a real executor")
}

func (s *memStore) enter(exec repositories.SQLExecutor) func() {
	if exec != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(txMarker{}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	nextRegistrationID int
	nextParticipantID  int
	nextActionID       int
	registrations      map[int]models.Registration
	participants       map[int][]models.Participant
	actions            []models.AdminAction
}

func (s *memStore) snapshot() memSnapshot {
	regs := make(map[int]models.Registration, len(s.registrations))
	for id, reg := range s.registrations {
		regs[id] = reg
	}
	parts := make(map[int][]models.Participant, len(s.participants))
	for id, roster := range s.participants {
		parts[id] = append([]models.Participant(nil), roster...)
	}
	return memSnapshot{
		nextRegistrationID: s.nextRegistrationID,
		nextParticipantID:  s.nextParticipantID,
		nextActionID:       s.nextActionID,
		registrations:      regs,
		participants:       parts,
		actions:            append([]models.AdminAction(nil), s.actions...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.nextRegistrationID = snap.nextRegistrationID
	s.nextParticipantID = snap.nextParticipantID
	s.nextActionID = snap.nextActionID
	s.registrations = snap.registrations
	s.participants = snap.participants
	s.actions = snap.actions
}

// --- TournamentRepository ---

func (s *memStore) addTournament(t models.Tournament) models.Tournament {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.tournaments[t.ID] = t
	return t
}

func (s *memStore) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	defer s.enter(exec)()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (s *memStore) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return s.GetByID(ctx, exec, id)
}

func (s *memStore) List(ctx context.Context, onlyActive bool) ([]models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		if onlyActive && !t.Active {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SetActive(ctx context.Context, id int, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Active = active
	s.tournaments[id] = t
	return nil
}

// --- RegistrationRepository ---

type memRegistrationRepo struct{ store *memStore }

func (r memRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	defer r.store.enter(exec)()
	if _, ok := r.store.tournaments[reg.TournamentID]; !ok {
		return repositories.ErrRegistrationTournamentFK
	}
	if reg.IdempotencyKey != nil {
		for _, existing := range r.store.registrations {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *reg.IdempotencyKey {
				return repositories.ErrIdempotencyKeyConflict
			}
		}
	}
	reg.ID = r.store.nextRegistrationID
	r.store.nextRegistrationID++
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	r.store.registrations[reg.ID] = *reg
	return nil
}

func (r memRegistrationRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Registration, error) {
	defer r.store.enter(exec)()
	reg, ok := r.store.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return &reg, nil
}

func (r memRegistrationRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Registration, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memRegistrationRepo) FindByIdempotencyKey(ctx context.Context, exec repositories.SQLExecutor, key string) (*models.Registration, error) {
	defer r.store.enter(exec)()
	for _, reg := range r.store.registrations {
		if reg.IdempotencyKey != nil && *reg.IdempotencyKey == key {
			found := reg
			return &found, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r memRegistrationRepo) CountOccupying(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	defer r.store.enter(exec)()
	count := 0
	for _, reg := range r.store.registrations {
		if reg.TournamentID == tournamentID && reg.Status.Occupying() {
			count++
		}
	}
	return count, nil
}

func (r memRegistrationRepo) CountByStatus(ctx context.Context, tournamentID int) (map[models.RegistrationStatus]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := make(map[models.RegistrationStatus]int)
	for _, reg := range r.store.registrations {
		if reg.TournamentID == tournamentID {
			counts[reg.Status]++
		}
	}
	return counts, nil
}

func (r memRegistrationRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus, rejectionReason *string) error {
	defer r.store.enter(exec)()
	reg, ok := r.store.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	reg.RejectionReason = nil
	if status == models.RegistrationRejected {
		reg.RejectionReason = rejectionReason
	}
	reg.UpdatedAt = time.Now()
	r.store.registrations[id] = reg
	return nil
}

func (r memRegistrationRepo) List(ctx context.Context, filter repositories.ListRegistrationsFilter) ([]models.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.Registration, 0)
	for _, reg := range r.store.registrations {
		if filter.TournamentID != nil && reg.TournamentID != *filter.TournamentID {
			continue
		}
		if filter.Status != nil && reg.Status != *filter.Status {
			continue
		}
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// --- ParticipantRepository ---

type memParticipantRepo struct{ store *memStore }

func (r memParticipantRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, participants []*models.Participant) error {
	defer r.store.enter(exec)()
	for _, p := range participants {
		for _, existing := range r.store.participants[p.RegistrationID] {
			if existing.SlotPosition == p.SlotPosition {
				return repositories.ErrParticipantSlotConflict
			}
		}
		p.ID = r.store.nextParticipantID
		r.store.nextParticipantID++
		r.store.participants[p.RegistrationID] = append(r.store.participants[p.RegistrationID], *p)
	}
	return nil
}

func (r memParticipantRepo) ListByRegistration(ctx context.Context, exec repositories.SQLExecutor, registrationID int) ([]models.Participant, error) {
	defer r.store.enter(exec)()
	roster := append([]models.Participant(nil), r.store.participants[registrationID]...)
	sort.Slice(roster, func(i, j int) bool { return roster[i].SlotPosition < roster[j].SlotPosition })
	return roster, nil
}

// --- AdminActionRepository ---

type memActionRepo struct{ store *memStore }

func (r memActionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, action *models.AdminAction) error {
	defer r.store.enter(exec)()
	action.ID = r.store.nextActionID
	r.store.nextActionID++
	action.CreatedAt = time.Now()
	r.store.actions = append(r.store.actions, *action)
	return nil
}

func (r memActionRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.AdminAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.AdminAction, 0)
	for _, a := range r.store.actions {
		if a.RegistrationID == registrationID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- AdminRepository ---

type memAdminRepo struct{ store *memStore }

func (r memAdminRepo) GetByID(ctx context.Context, id int) (*models.Admin, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.admins[id]
	if !ok {
		return nil, repositories.ErrAdminNotFound
	}
	return &a, nil
}

func (r memAdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.admins {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, repositories.ErrAdminNotFound
}

func (r memAdminRepo) Upsert(ctx context.Context, email, displayName, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, a := range r.store.admins {
		if a.Email == email {
			a.DisplayName = displayName
			a.PasswordHash = passwordHash
			r.store.admins[id] = a
			return nil
		}
	}
	id := len(r.store.admins) + 1
	r.store.admins[id] = models.Admin{
		ID: id, Email: email, DisplayName: displayName,
		PasswordHash: passwordHash, CreatedAt: time.Now(),
	}
	return nil
}

func (s *memStore) registrationRepo() memRegistrationRepo { return memRegistrationRepo{store: s} }
func (s *memStore) participantRepo() memParticipantRepo   { return memParticipantRepo{store: s} }
func (s *memStore) actionRepo() memActionRepo             { return memActionRepo{store: s} }
func (s *memStore) adminRepo() memAdminRepo               { return memAdminRepo{store: s} }
