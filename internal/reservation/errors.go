package reservation

import "errors"

// Kind enumerates every way a lifecycle operation can be rejected.
type Kind int

const (
	KindInvalidEmail Kind = iota + 1
	KindInvalidPhone
	KindInvalidFormat
	KindOutOfWindow
	KindPastTime
	KindInvalidPartySize
	KindInvalidDate
	KindInvalidStatus
	KindDuplicateBooking
	KindForbidden
	KindUnauthenticated
	KindImmutable
	KindInvalidTransition
	KindAlreadyCancelled
)

var kindNames = map[Kind]string{
	KindInvalidEmail:      "InvalidEmail",
	KindInvalidPhone:      "InvalidPhone",
	KindInvalidFormat:     "InvalidFormat",
	KindOutOfWindow:       "OutOfWindow",
	KindPastTime:          "PastTime",
	KindInvalidPartySize:  "InvalidPartySize",
	KindInvalidDate:       "InvalidDate",
	KindInvalidStatus:     "InvalidStatus",
	KindDuplicateBooking:  "DuplicateBooking",
	KindForbidden:         "Forbidden",
	KindUnauthenticated:   "Unauthenticated",
	KindImmutable:         "Immutable",
	KindInvalidTransition: "InvalidTransition",
	KindAlreadyCancelled:  "AlreadyCancelled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Class groups kinds the way callers usually handle them.
type Class int

const (
	ClassValidation Class = iota + 1
	ClassConflict
	ClassAuthorization
	ClassState
)

// Class returns the error family of k.
func (k Kind) Class() Class {
	switch k {
	case KindDuplicateBooking:
		return ClassConflict
	case KindForbidden, KindUnauthenticated:
		return ClassAuthorization
	case KindImmutable, KindInvalidTransition, KindAlreadyCancelled:
		return ClassState
	}
	return ClassValidation
}

// Error is the rejection returned by validators, the transition guard and
// the lifecycle service.  Message is safe to show to the caller verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

// Sentinels for errors.Is.
var (
	ErrInvalidEmail      = newError(KindInvalidEmail, "Invalid email format")
	ErrInvalidPhone      = newError(KindInvalidPhone, "Invalid phone format")
	ErrInvalidFormat     = newError(KindInvalidFormat, "Arrival time must be in YYYY-MM-DD HH:mm format")
	ErrOutOfWindow       = newError(KindOutOfWindow, "Arrival time is outside the meal period")
	ErrPastTime          = newError(KindPastTime, "Past time is not allowed")
	ErrInvalidPartySize  = newError(KindInvalidPartySize, "Party size must be between 1 and 10")
	ErrInvalidDate       = newError(KindInvalidDate, "Date must start with YYYY-MM-DD")
	ErrInvalidStatus     = newError(KindInvalidStatus, "Unknown reservation status")
	ErrDuplicateBooking  = newError(KindDuplicateBooking, "Only one reservation per meal period per day is allowed")
	ErrForbidden         = newError(KindForbidden, "Employee role required")
	ErrUnauthenticated   = newError(KindUnauthenticated, "Login required")
	ErrImmutable         = newError(KindImmutable, "Completed or cancelled reservations cannot be modified")
	ErrInvalidTransition = newError(KindInvalidTransition, "Reservation must be approved before completing")
	ErrAlreadyCancelled  = newError(KindAlreadyCancelled, "Reservation is already cancelled")
)

// KindOf extracts the rejection kind from err.  ok is false for errors that
// did not originate from this package, such as store failures.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
