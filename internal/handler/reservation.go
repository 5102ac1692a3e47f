package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/reservation"
)

// UserLookup resolves the account behind an access token.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// EventPublisher receives one event per successful reservation write.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// CachePurger drops cached listings after a write.
type CachePurger interface {
	Purge(ctx context.Context)
}

// ReservationHandler exposes the lifecycle service over HTTP.  Events and
// Cache are optional.
type ReservationHandler struct {
	Svc    *reservation.Service
	Users  UserLookup
	Events EventPublisher
	Cache  CachePurger
}

func NewReservationHandler(svc *reservation.Service, users UserLookup, events EventPublisher, cache CachePurger) *ReservationHandler {
	return &ReservationHandler{Svc: svc, Users: users, Events: events, Cache: cache}
}

// ----- DTOs -----

// TableSize is decoded as a JSON number so that fractional sizes reach the
// validator instead of failing the bind.
type createReservationReq struct {
	GuestName           string   `json:"guestName"`
	GuestPhone          string   `json:"guestPhone"`
	GuestEmail          string   `json:"guestEmail"`
	ExpectedArrivalTime string   `json:"expectedArrivalTime"`
	MealPeriod          string   `json:"mealPeriod"`
	TableSize           *float64 `json:"tableSize"`
}

type updateReservationReq struct {
	GuestName           *string  `json:"guestName"`
	GuestPhone          *string  `json:"guestPhone"`
	GuestEmail          *string  `json:"guestEmail"`
	ExpectedArrivalTime *string  `json:"expectedArrivalTime"`
	MealPeriod          *string  `json:"mealPeriod"`
	TableSize           *float64 `json:"tableSize"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type listResp struct {
	Items []model.Reservation `json:"items"`
	Total int                 `json:"total"`
}

// Create books a table.  Anonymous callers are allowed.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.TableSize == nil {
		return writeError(c, reservation.ErrInvalidPartySize)
	}
	size, err := reservation.PartySize(*req.TableSize)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.Create(ctx, model.NewReservation{
		GuestName:           req.GuestName,
		GuestPhone:          req.GuestPhone,
		GuestEmail:          req.GuestEmail,
		ExpectedArrivalTime: req.ExpectedArrivalTime,
		MealPeriod:          model.MealPeriod(req.MealPeriod),
		TableSize:           size,
	})
	if err != nil {
		return writeError(c, err)
	}
	h.afterWrite(c, queue.EventCreated, *res, "")
	return c.JSON(http.StatusCreated, res)
}

// Get returns a reservation by id.
func (h *ReservationHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if res == nil {
		return notFound(c, "Reservation")
	}
	return c.JSON(http.StatusOK, res)
}

// Update edits the guest fields of a reservation and sends it back to
// Requested.
func (h *ReservationHandler) Update(c echo.Context) error {
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	patch := model.ReservationPatch{
		GuestName:           req.GuestName,
		GuestPhone:          req.GuestPhone,
		GuestEmail:          req.GuestEmail,
		ExpectedArrivalTime: req.ExpectedArrivalTime,
	}
	if req.MealPeriod != nil {
		mp := model.MealPeriod(*req.MealPeriod)
		patch.MealPeriod = &mp
	}
	if req.TableSize != nil {
		size, err := reservation.PartySize(*req.TableSize)
		if err != nil {
			return writeError(c, err)
		}
		patch.TableSize = &size
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.loadOwned(ctx, c)
	if err != nil {
		return writeError(c, err)
	}
	if existing == nil {
		return notFound(c, "Reservation")
	}
	res, err := h.Svc.Update(ctx, existing.ID, patch)
	if err != nil {
		return writeError(c, err)
	}
	if res == nil {
		return notFound(c, "Reservation")
	}
	h.afterWrite(c, queue.EventUpdated, *res, existing.Status)
	return c.JSON(http.StatusOK, res)
}

// Cancel cancels a reservation.  Guests may only cancel their own.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.loadOwned(ctx, c)
	if err != nil {
		return writeError(c, err)
	}
	if existing == nil {
		return notFound(c, "Reservation")
	}
	res, err := h.Svc.Cancel(ctx, existing.ID, middleware.ActorRole(c))
	if err != nil {
		return writeError(c, err)
	}
	if res == nil {
		return notFound(c, "Reservation")
	}
	h.afterWrite(c, queue.EventCancelled, *res, existing.Status)
	return c.JSON(http.StatusOK, res)
}

// UpdateStatus moves a reservation to the requested status.  The role
// checks live in the lifecycle service.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	next := model.ReservationStatus(strings.TrimSpace(req.Status))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("id")
	existing, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if existing == nil {
		return notFound(c, "Reservation")
	}
	res, err := h.Svc.UpdateStatus(ctx, id, next, middleware.ActorRole(c))
	if err != nil {
		return writeError(c, err)
	}
	if res == nil {
		return notFound(c, "Reservation")
	}
	h.afterWrite(c, queue.EventStatusChanged, *res, existing.Status)
	return c.JSON(http.StatusOK, res)
}

// List returns reservations for staff, filtered by the query string.
func (h *ReservationHandler) List(c echo.Context) error {
	f := model.ReservationFilter{
		Date:       strings.TrimSpace(c.QueryParam("date")),
		Status:     model.ReservationStatus(strings.TrimSpace(c.QueryParam("status"))),
		MealPeriod: model.MealPeriod(strings.TrimSpace(c.QueryParam("mealPeriod"))),
		GuestEmail: c.QueryParam("guestEmail"),
		GuestPhone: c.QueryParam("guestPhone"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return writeError(c, reservation.ErrInvalidStatus)
	}
	if f.MealPeriod != "" && !f.MealPeriod.Valid() {
		return writeError(c, &reservation.Error{Kind: reservation.KindInvalidFormat, Message: "Meal period must be Lunch or Dinner"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.List(ctx, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listResp{Items: items, Total: len(items)})
}

// Mine lists the reservations booked with the caller's email or phone.
func (h *ReservationHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	if u == nil {
		return notFound(c, "User")
	}
	items, err := h.Svc.ListForGuest(ctx, reservation.GuestIdentity{Email: u.Email, Phone: u.Phone})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listResp{Items: items, Total: len(items)})
}

// loadOwned fetches the reservation named in the path.  For guests it also
// checks that the booking was made with their email or phone and reports
// someone else's reservation as missing.
func (h *ReservationHandler) loadOwned(ctx context.Context, c echo.Context) (*model.Reservation, error) {
	res, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil || res == nil {
		return nil, err
	}
	if middleware.ActorRole(c) != model.RoleGuest {
		return res, nil
	}
	u, err := h.Users.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		return nil, err
	}
	if u == nil || !ownedBy(*res, *u) {
		return nil, nil
	}
	return res, nil
}

func ownedBy(r model.Reservation, u model.User) bool {
	if u.Email != "" && strings.EqualFold(r.GuestEmail, u.Email) {
		return true
	}
	return u.Phone != "" && r.GuestPhone == u.Phone
}

// afterWrite purges cached listings and publishes the write event.  Both
// are best effort; the write has already been committed.
func (h *ReservationHandler) afterWrite(c echo.Context, t queue.EventType, r model.Reservation, previous model.ReservationStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if h.Cache != nil {
		h.Cache.Purge(ctx)
	}
	if h.Events == nil {
		return
	}
	ev := queue.NewReservationEvent(t, r, previous, middleware.UserID(c), middleware.ActorRole(c))
	if err := h.Events.Publish(ctx, ev); err != nil {
		log.Printf("reservation: publish %s for %s failed: %v", t, r.ID, err)
	}
}
