// Package queue defines the reservation lifecycle events exchanged over
// RabbitMQ and the consumer that records them.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationQueue is the durable queue every lifecycle event is sent to.
const ReservationQueue = "reservation.events"

type EventType string

const (
	EventCreated       EventType = "reservation.created"
	EventUpdated       EventType = "reservation.updated"
	EventCancelled     EventType = "reservation.cancelled"
	EventStatusChanged EventType = "reservation.status_changed"
)

// ReservationEvent is published after every successful reservation write.
// It carries the full reservation so consumers never have to query the
// primary store.
type ReservationEvent struct {
	EventID             string    `json:"event_id"`
	Type                EventType `json:"type"`
	ReservationID       string    `json:"reservation_id"`
	GuestName           string    `json:"guest_name"`
	GuestEmail          string    `json:"guest_email"`
	GuestPhone          string    `json:"guest_phone"`
	ExpectedArrivalTime string    `json:"expected_arrival_time"`
	MealPeriod          string    `json:"meal_period"`
	TableSize           int       `json:"table_size"`
	Status              string    `json:"status"`
	PreviousStatus      string    `json:"previous_status,omitempty"`
	ActorID             string    `json:"actor_id,omitempty"`
	ActorRole           string    `json:"actor_role"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// NewReservationEvent snapshots r.  previous is the status before the write
// and may be empty for creations.
func NewReservationEvent(t EventType, r model.Reservation, previous model.ReservationStatus, actorID string, role model.Role) ReservationEvent {
	return ReservationEvent{
		EventID:             uuid.NewString(),
		Type:                t,
		ReservationID:       r.ID,
		GuestName:           r.GuestName,
		GuestEmail:          r.GuestEmail,
		GuestPhone:          r.GuestPhone,
		ExpectedArrivalTime: r.ExpectedArrivalTime,
		MealPeriod:          string(r.MealPeriod),
		TableSize:           r.TableSize,
		Status:              string(r.Status),
		PreviousStatus:      string(previous),
		ActorID:             actorID,
		ActorRole:           string(role),
		OccurredAt:          r.UpdatedAt.UTC(),
	}
}

// LogLine renders ev as the single line the consumer appends to its log.
func (ev ReservationEvent) LogLine() string {
	status := ev.Status
	if ev.PreviousStatus != "" && ev.PreviousStatus != ev.Status {
		status = ev.PreviousStatus + "->" + ev.Status
	}
	actor := ev.ActorRole
	if ev.ActorID != "" {
		actor += ":" + ev.ActorID
	}
	return fmt.Sprintf("[%s] %s | reservation_id=%s | guest=%q | email=%s | phone=%s | arrival=%q | meal=%s | size=%d | status=%s | by=%s | event_id=%s\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.ReservationID, ev.GuestName, ev.GuestEmail, ev.GuestPhone,
		ev.ExpectedArrivalTime, ev.MealPeriod, ev.TableSize, status, actor, ev.EventID)
}
