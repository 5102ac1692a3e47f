package reservation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/iliyamo/table-reservation/internal/model"
)

func TestAssertStatusChange(t *testing.T) {
	const (
		req  = model.StatusRequested
		appr = model.StatusApproved
		canc = model.StatusCancelled
		comp = model.StatusCompleted
		emp  = model.RoleEmployee
	)
	tests := []struct {
		current, next model.ReservationStatus
		role          model.Role
		want          error
	}{
		{req, appr, model.RoleGuest, ErrForbidden},
		{req, appr, model.RoleAnonymous, ErrForbidden},
		{req, appr, emp, nil},
		{req, req, emp, nil},
		{req, canc, emp, nil},
		{appr, req, emp, nil},
		{appr, comp, emp, nil},
		{req, comp, emp, ErrInvalidTransition},
		{canc, appr, emp, ErrImmutable},
		{comp, canc, emp, ErrImmutable},
		{comp, comp, emp, ErrImmutable},
		{req, "Seated", emp, ErrInvalidStatus},
		{canc, "", emp, ErrInvalidStatus},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s->%s as %s", tc.current, tc.next, tc.role), func(t *testing.T) {
			err := AssertStatusChange(tc.current, tc.next, tc.role)
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAssertCancellable(t *testing.T) {
	tests := []struct {
		status model.ReservationStatus
		role   model.Role
		want   error
	}{
		{model.StatusRequested, model.RoleAnonymous, ErrUnauthenticated},
		{model.StatusRequested, "", ErrUnauthenticated},
		{model.StatusRequested, model.RoleGuest, nil},
		{model.StatusApproved, model.RoleGuest, nil},
		{model.StatusApproved, model.RoleEmployee, nil},
		{model.StatusCancelled, model.RoleGuest, ErrAlreadyCancelled},
		{model.StatusCompleted, model.RoleGuest, ErrImmutable},
		{model.StatusCompleted, model.RoleEmployee, ErrImmutable},
	}
	for _, tc := range tests {
		err := AssertCancellable(tc.status, tc.role)
		if tc.want == nil && err != nil {
			t.Errorf("%s as %q: unexpected error %v", tc.status, tc.role, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("%s as %q: err = %v, want %v", tc.status, tc.role, err, tc.want)
		}
	}
	err := AssertCancellable(model.StatusCompleted, model.RoleGuest)
	if err.Error() != "Completed reservations cannot be cancelled" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAssertEditable(t *testing.T) {
	for _, s := range []model.ReservationStatus{model.StatusRequested, model.StatusApproved} {
		if err := AssertEditable(s); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
	for _, s := range []model.ReservationStatus{model.StatusCancelled, model.StatusCompleted} {
		if err := AssertEditable(s); !errors.Is(err, ErrImmutable) {
			t.Errorf("%s: err = %v, want Immutable", s, err)
		}
	}
}

func TestKindClass(t *testing.T) {
	tests := map[Kind]Class{
		KindInvalidEmail:      ClassValidation,
		KindPastTime:          ClassValidation,
		KindInvalidStatus:     ClassValidation,
		KindDuplicateBooking:  ClassConflict,
		KindForbidden:         ClassAuthorization,
		KindUnauthenticated:   ClassAuthorization,
		KindImmutable:         ClassState,
		KindInvalidTransition: ClassState,
		KindAlreadyCancelled:  ClassState,
	}
	for k, want := range tests {
		if got := k.Class(); got != want {
			t.Errorf("%s.Class() = %d, want %d", k, got, want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrDuplicateBooking)
	k, ok := KindOf(err)
	if !ok || k != KindDuplicateBooking {
		t.Fatalf("KindOf = %v, %v", k, ok)
	}
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Error("errors.Is lost through wrapping")
	}
	if _, ok := KindOf(errors.New("boom")); ok {
		t.Error("KindOf matched a foreign error")
	}
	if k.String() != "DuplicateBooking" {
		t.Errorf("String = %q", k.String())
	}
}
