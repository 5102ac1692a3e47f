package reservation

import "github.com/iliyamo/table-reservation/internal/model"

// AssertEditable rejects edits of terminal reservations.
func AssertEditable(status model.ReservationStatus) error {
	if status.Terminal() {
		return ErrImmutable
	}
	return nil
}

// AssertStatusChange decides whether role may move a reservation from
// current to next.  Only employees change status, terminal reservations
// stay put, and completion requires a prior approval.
func AssertStatusChange(current, next model.ReservationStatus, role model.Role) error {
	if role != model.RoleEmployee {
		return ErrForbidden
	}
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if err := AssertEditable(current); err != nil {
		return err
	}
	if next == model.StatusCompleted && current != model.StatusApproved {
		return ErrInvalidTransition
	}
	return nil
}

// AssertCancellable decides whether role may cancel a reservation in
// status.  Guests and employees have the same rights here.
func AssertCancellable(status model.ReservationStatus, role model.Role) error {
	if role != model.RoleGuest && role != model.RoleEmployee {
		return ErrUnauthenticated
	}
	switch status {
	case model.StatusCancelled:
		return ErrAlreadyCancelled
	case model.StatusCompleted:
		return newError(KindImmutable, "Completed reservations cannot be cancelled")
	}
	return nil
}
