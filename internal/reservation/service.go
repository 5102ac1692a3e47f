// Package reservation implements the reservation lifecycle: arrival window
// and contact validation, the status transition guard and the service that
// applies them against a Store before every write.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Store is the persistence capability the service needs.  Lookups and
// updates of an unknown id return (nil, nil).  Stores that enforce slot
// uniqueness report collisions as model.ErrSlotTaken.
type Store interface {
	Create(ctx context.Context, r model.Reservation) (*model.Reservation, error)
	Update(ctx context.Context, id string, u model.ReservationUpdate) (*model.Reservation, error)
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	FindConflict(ctx context.Context, q model.ConflictQuery) (*model.Reservation, error)
}

// GuestIdentity is the stored contact pair of an authenticated guest.
type GuestIdentity struct {
	Email string
	Phone string
}

// Service runs lifecycle operations.  It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	store Store
	now   func() time.Time
	loc   *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the restaurant time zone used to read arrival times.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

// NewService returns a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("nil store passed to reservation.NewService")
	}
	s := &Service{store: store, now: time.Now, loc: time.Local}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates a booking request and stores it as Requested.
func (s *Service) Create(ctx context.Context, in model.NewReservation) (*model.Reservation, error) {
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.GuestEmail = normalizeEmail(in.GuestEmail)
	in.GuestPhone = strings.TrimSpace(in.GuestPhone)
	if err := ValidateContact(in.GuestEmail, in.GuestPhone); err != nil {
		return nil, err
	}
	if err := ValidateArrivalTime(in.ExpectedArrivalTime, in.MealPeriod, s.now(), s.loc); err != nil {
		return nil, err
	}
	if err := ValidatePartySize(in.TableSize); err != nil {
		return nil, err
	}
	date, err := ExtractDate(in.ExpectedArrivalTime)
	if err != nil {
		return nil, err
	}
	if err := s.checkConflict(ctx, model.ConflictQuery{
		Date:       date,
		MealPeriod: in.MealPeriod,
		GuestEmail: in.GuestEmail,
		GuestPhone: in.GuestPhone,
	}); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, model.Reservation{
		GuestName:           in.GuestName,
		GuestPhone:          in.GuestPhone,
		GuestEmail:          in.GuestEmail,
		ExpectedArrivalTime: in.ExpectedArrivalTime,
		MealPeriod:          in.MealPeriod,
		TableSize:           in.TableSize,
		Status:              model.StatusRequested,
	})
	if err != nil {
		return nil, storeErr("create reservation", err)
	}
	log.Printf("reservation: created id=%s date=%s meal=%s size=%d", created.ID, date, created.MealPeriod, created.TableSize)
	return created, nil
}

// Update applies a guest edit.  Any edit sends the reservation back to
// Requested, even when it had already been approved.
func (s *Service) Update(ctx context.Context, id string, p model.ReservationPatch) (*model.Reservation, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("load reservation", err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := AssertEditable(existing.Status); err != nil {
		return nil, err
	}
	if p.TableSize != nil {
		if err := ValidatePartySize(*p.TableSize); err != nil {
			return nil, err
		}
	}
	p = normalizePatch(p)

	next := model.ReservationUpdate{ReservationPatch: p}.Apply(*existing)
	if err := ValidateContact(next.GuestEmail, next.GuestPhone); err != nil {
		return nil, err
	}
	if err := ValidateArrivalTime(next.ExpectedArrivalTime, next.MealPeriod, s.now(), s.loc); err != nil {
		return nil, err
	}
	date, err := ExtractDate(next.ExpectedArrivalTime)
	if err != nil {
		return nil, err
	}
	if err := s.checkConflict(ctx, model.ConflictQuery{
		Date:       date,
		MealPeriod: next.MealPeriod,
		GuestEmail: next.GuestEmail,
		GuestPhone: next.GuestPhone,
		ExcludeID:  id,
	}); err != nil {
		return nil, err
	}

	requested := model.StatusRequested
	updated, err := s.store.Update(ctx, id, model.ReservationUpdate{ReservationPatch: p, Status: &requested})
	if err != nil {
		return nil, storeErr("update reservation", err)
	}
	if updated != nil {
		log.Printf("reservation: updated id=%s previous_status=%s", id, existing.Status)
	}
	return updated, nil
}

// Cancel moves a reservation to Cancelled on behalf of role.
func (s *Service) Cancel(ctx context.Context, id string, role model.Role) (*model.Reservation, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("load reservation", err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := AssertCancellable(existing.Status, role); err != nil {
		return nil, err
	}
	cancelled := model.StatusCancelled
	updated, err := s.store.Update(ctx, id, model.ReservationUpdate{Status: &cancelled})
	if err != nil {
		return nil, storeErr("cancel reservation", err)
	}
	if updated != nil {
		log.Printf("reservation: cancelled id=%s by=%s", id, role)
	}
	return updated, nil
}

// UpdateStatus moves a reservation to next on behalf of role.
func (s *Service) UpdateStatus(ctx context.Context, id string, next model.ReservationStatus, role model.Role) (*model.Reservation, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("load reservation", err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := AssertStatusChange(existing.Status, next, role); err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, id, model.ReservationUpdate{Status: &next})
	if err != nil {
		return nil, storeErr("update reservation status", err)
	}
	if updated != nil {
		log.Printf("reservation: status id=%s %s -> %s", id, existing.Status, next)
	}
	return updated, nil
}

// List returns reservations matching f, latest arrival first.
func (s *Service) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	f.GuestEmail = normalizeEmail(f.GuestEmail)
	f.GuestPhone = strings.TrimSpace(f.GuestPhone)
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return items, nil
}

// ListForGuest returns the reservations booked with the guest's email or
// phone.
func (s *Service) ListForGuest(ctx context.Context, g GuestIdentity) ([]model.Reservation, error) {
	email, phone := normalizeEmail(g.Email), strings.TrimSpace(g.Phone)
	if email == "" && phone == "" {
		return []model.Reservation{}, nil
	}
	return s.List(ctx, model.ReservationFilter{GuestEmail: email, GuestPhone: phone})
}

// Get returns the reservation with id, or nil when there is none.
func (s *Service) Get(ctx context.Context, id string) (*model.Reservation, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

// normalizeEmail lower-cases and trims so that the same guest is recognised
// regardless of how the address was typed.
func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func normalizePatch(p model.ReservationPatch) model.ReservationPatch {
	trim := func(v *string, f func(string) string) *string {
		if v == nil {
			return nil
		}
		out := f(*v)
		return &out
	}
	p.GuestName = trim(p.GuestName, strings.TrimSpace)
	p.GuestEmail = trim(p.GuestEmail, normalizeEmail)
	p.GuestPhone = trim(p.GuestPhone, strings.TrimSpace)
	return p
}

func (s *Service) checkConflict(ctx context.Context, q model.ConflictQuery) error {
	conflict, err := s.store.FindConflict(ctx, q)
	if err != nil {
		return fmt.Errorf("check reservation conflict: %w", err)
	}
	if conflict != nil {
		return ErrDuplicateBooking
	}
	return nil
}

// storeErr turns a store-side uniqueness violation into the same rejection
// the pre-write conflict check produces.
func storeErr(op string, err error) error {
	if errors.Is(err, model.ErrSlotTaken) {
		return ErrDuplicateBooking
	}
	return fmt.Errorf("%s: %w", op, err)
}
