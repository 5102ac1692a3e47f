package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
)

// MemoryReservationRepo keeps reservations in process memory.  It backs the
// "memory" driver for local development and the service tests.  Writes are
// serialized, so the slot uniqueness check and the write are atomic.
type MemoryReservationRepo struct {
	mu    sync.RWMutex
	items map[string]model.Reservation
	now   func() time.Time
}

// NewMemoryReservationRepo returns an empty store.
func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{items: make(map[string]model.Reservation), now: time.Now}
}

// Create stores r under a fresh id and stamps both timestamps.
func (m *MemoryReservationRepo) Create(_ context.Context, r model.Reservation) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slotTakenLocked(r) {
		return nil, model.ErrSlotTaken
	}
	r.ID = uuid.NewString()
	ts := m.now().UTC()
	r.CreatedAt, r.UpdatedAt = ts, ts
	m.items[r.ID] = r
	return &r, nil
}

// Update applies u to the stored reservation and refreshes UpdatedAt.
func (m *MemoryReservationRepo) Update(_ context.Context, id string, u model.ReservationUpdate) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	next := u.Apply(cur)
	if m.slotTakenLocked(next) {
		return nil, model.ErrSlotTaken
	}
	ts := m.now().UTC()
	if !ts.After(cur.UpdatedAt) {
		ts = cur.UpdatedAt.Add(time.Nanosecond)
	}
	next.UpdatedAt = ts
	m.items[id] = next
	return &next, nil
}

// FindByID returns a copy of the stored reservation.
func (m *MemoryReservationRepo) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// List returns matching reservations ordered by arrival time, latest first.
func (m *MemoryReservationRepo) List(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Reservation, 0, len(m.items))
	for _, r := range m.items {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sortByArrivalDesc(out)
	return out, nil
}

// FindConflict returns any active reservation matching q.
func (m *MemoryReservationRepo) FindConflict(_ context.Context, q model.ConflictQuery) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.items {
		if q.Matches(r) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *MemoryReservationRepo) slotTakenLocked(r model.Reservation) bool {
	if r.Status.Terminal() {
		return false
	}
	q := model.ConflictQuery{
		Date:       r.ArrivalDate(),
		MealPeriod: r.MealPeriod,
		GuestEmail: r.GuestEmail,
		GuestPhone: r.GuestPhone,
		ExcludeID:  r.ID,
	}
	for _, other := range m.items {
		if q.Matches(other) {
			return true
		}
	}
	return false
}

func sortByArrivalDesc(items []model.Reservation) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ExpectedArrivalTime != items[j].ExpectedArrivalTime {
			return items[i].ExpectedArrivalTime > items[j].ExpectedArrivalTime
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// MemoryUserRepo is the in-memory counterpart of UserRepo.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserRepo returns an empty user store.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

// Create stores u, rejecting duplicate emails and phones.
func (m *MemoryUserRepo) Create(_ context.Context, u model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	for _, other := range m.users {
		if other.Email == u.Email {
			return nil, ErrEmailExists
		}
		if other.Phone == u.Phone {
			return nil, ErrPhoneExists
		}
	}
	u.ID = uuid.NewString()
	m.users[u.ID] = u
	return &u, nil
}

// FindByEmail looks a user up by normalized email.
func (m *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	return m.find(func(u model.User) bool { return u.Email == email }), nil
}

// FindByPhone looks a user up by phone.
func (m *MemoryUserRepo) FindByPhone(_ context.Context, phone string) (*model.User, error) {
	phone = strings.TrimSpace(phone)
	return m.find(func(u model.User) bool { return u.Phone == phone }), nil
}

// FindByID looks a user up by id.
func (m *MemoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryUserRepo) find(match func(model.User) bool) *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
