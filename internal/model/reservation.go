package model

import (
	"errors"
	"time"
)

// MealPeriod names the service a reservation belongs to.  The string
// values are part of the wire and storage contract.
type MealPeriod string

const (
	Lunch  MealPeriod = "Lunch"
	Dinner MealPeriod = "Dinner"
)

// Valid reports whether p is one of the known meal periods.
func (p MealPeriod) Valid() bool { return p == Lunch || p == Dinner }

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusRequested ReservationStatus = "Requested"
	StatusApproved  ReservationStatus = "Approved"
	StatusCancelled ReservationStatus = "Cancelled"
	StatusCompleted ReservationStatus = "Completed"
)

// Valid reports whether s is one of the four known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further mutation is allowed from s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ActiveStatuses lists the statuses that still occupy a guest's meal slot.
var ActiveStatuses = []ReservationStatus{StatusRequested, StatusApproved}

// ErrSlotTaken is returned by stores that enforce the per-guest meal slot
// uniqueness themselves when an insert or update would collide with an
// active reservation.
var ErrSlotTaken = errors.New("meal slot already booked for this guest")

// Reservation is a guest's table booking.
//
// Fields:
//
//	ID                  – opaque identifier assigned by the store.
//	GuestName           – name given at booking time.
//	GuestPhone          – contact phone; part of the guest identity.
//	GuestEmail          – contact email; part of the guest identity.
//	ExpectedArrivalTime – "YYYY-MM-DD HH:mm" in restaurant local time.
//	MealPeriod          – Lunch or Dinner.
//	TableSize           – party size, 1..10.
//	Status              – lifecycle state.
//	CreatedAt/UpdatedAt – store-maintained timestamps.
type Reservation struct {
	ID                  string            `json:"id"`
	GuestName           string            `json:"guestName"`
	GuestPhone          string            `json:"guestPhone"`
	GuestEmail          string            `json:"guestEmail"`
	ExpectedArrivalTime string            `json:"expectedArrivalTime"`
	MealPeriod          MealPeriod        `json:"mealPeriod"`
	TableSize           int               `json:"tableSize"`
	Status              ReservationStatus `json:"status"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// ArrivalDate returns the calendar date part of the arrival timestamp, or ""
// when the timestamp is too short to contain one.
func (r Reservation) ArrivalDate() string {
	if len(r.ExpectedArrivalTime) < 10 {
		return ""
	}
	return r.ExpectedArrivalTime[:10]
}

// NewReservation carries the guest-supplied fields of a booking request.
type NewReservation struct {
	GuestName           string
	GuestPhone          string
	GuestEmail          string
	ExpectedArrivalTime string
	MealPeriod          MealPeriod
	TableSize           int
}

// ReservationPatch is a partial edit of the guest-editable fields.  Nil
// fields are left untouched.
type ReservationPatch struct {
	GuestName           *string
	GuestPhone          *string
	GuestEmail          *string
	ExpectedArrivalTime *string
	MealPeriod          *MealPeriod
	TableSize           *int
}

// ReservationUpdate is what the lifecycle engine hands to a store: a patch
// plus an optional status change.
type ReservationUpdate struct {
	ReservationPatch
	Status *ReservationStatus
}

// Apply returns r with every non-nil field of u written over it.  Stores
// that keep whole documents use it to compute the next version.
func (u ReservationUpdate) Apply(r Reservation) Reservation {
	if u.GuestName != nil {
		r.GuestName = *u.GuestName
	}
	if u.GuestPhone != nil {
		r.GuestPhone = *u.GuestPhone
	}
	if u.GuestEmail != nil {
		r.GuestEmail = *u.GuestEmail
	}
	if u.ExpectedArrivalTime != nil {
		r.ExpectedArrivalTime = *u.ExpectedArrivalTime
	}
	if u.MealPeriod != nil {
		r.MealPeriod = *u.MealPeriod
	}
	if u.TableSize != nil {
		r.TableSize = *u.TableSize
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
	return r
}

// ReservationFilter narrows a listing.  Date matches as a prefix of the
// arrival timestamp.  When both GuestEmail and GuestPhone are set a
// reservation matches if either one does.
type ReservationFilter struct {
	Date       string
	Status     ReservationStatus
	MealPeriod MealPeriod
	GuestEmail string
	GuestPhone string
}

// Matches evaluates the filter against a single reservation.
func (f ReservationFilter) Matches(r Reservation) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.MealPeriod != "" && r.MealPeriod != f.MealPeriod {
		return false
	}
	if f.Date != "" && (len(r.ExpectedArrivalTime) < len(f.Date) || r.ExpectedArrivalTime[:len(f.Date)] != f.Date) {
		return false
	}
	switch {
	case f.GuestEmail != "" && f.GuestPhone != "":
		return r.GuestEmail == f.GuestEmail || r.GuestPhone == f.GuestPhone
	case f.GuestEmail != "":
		return r.GuestEmail == f.GuestEmail
	case f.GuestPhone != "":
		return r.GuestPhone == f.GuestPhone
	}
	return true
}

// ConflictQuery asks a store for an active reservation of the same guest on
// the same date and meal period.  ExcludeID skips the reservation being
// edited.
type ConflictQuery struct {
	Date       string
	MealPeriod MealPeriod
	GuestEmail string
	GuestPhone string
	ExcludeID  string
}

// Matches reports whether r collides with the query.  Terminal
// reservations never collide.
func (q ConflictQuery) Matches(r Reservation) bool {
	if q.ExcludeID != "" && r.ID == q.ExcludeID {
		return false
	}
	if r.Status.Terminal() || r.MealPeriod != q.MealPeriod || r.ArrivalDate() != q.Date {
		return false
	}
	if q.GuestEmail != "" && r.GuestEmail == q.GuestEmail {
		return true
	}
	return q.GuestPhone != "" && r.GuestPhone == q.GuestPhone
}
