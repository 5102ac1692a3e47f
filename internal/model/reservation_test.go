package model

import "testing"

func TestReservationFilterMatches(t *testing.T) {
	r := Reservation{
		GuestEmail:          "a@example.com",
		GuestPhone:          "100861",
		ExpectedArrivalTime: "2030-06-02 12:00",
		MealPeriod:          Lunch,
		Status:              StatusApproved,
	}
	tests := []struct {
		name string
		f    ReservationFilter
		want bool
	}{
		{"empty", ReservationFilter{}, true},
		{"date", ReservationFilter{Date: "2030-06-02"}, true},
		{"month prefix", ReservationFilter{Date: "2030-06"}, true},
		{"other date", ReservationFilter{Date: "2030-06-03"}, false},
		{"status", ReservationFilter{Status: StatusApproved}, true},
		{"other status", ReservationFilter{Status: StatusRequested}, false},
		{"meal", ReservationFilter{MealPeriod: Dinner}, false},
		{"email or phone", ReservationFilter{GuestEmail: "x@example.com", GuestPhone: "100861"}, true},
		{"email only miss", ReservationFilter{GuestEmail: "x@example.com"}, false},
		{"phone only", ReservationFilter{GuestPhone: "100861"}, true},
	}
	for _, tc := range tests {
		if got := tc.f.Matches(r); got != tc.want {
			t.Errorf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestConflictQueryIgnoresTerminal(t *testing.T) {
	q := ConflictQuery{Date: "2030-06-02", MealPeriod: Lunch, GuestEmail: "a@example.com"}
	r := Reservation{ID: "1", GuestEmail: "a@example.com", ExpectedArrivalTime: "2030-06-02 12:00", MealPeriod: Lunch}
	for s, want := range map[ReservationStatus]bool{
		StatusRequested: true,
		StatusApproved:  true,
		StatusCancelled: false,
		StatusCompleted: false,
	} {
		r.Status = s
		if got := q.Matches(r); got != want {
			t.Errorf("%s: Matches = %v, want %v", s, got, want)
		}
	}
}

func TestUpdateApply(t *testing.T) {
	name, size := "B", 5
	st := StatusCancelled
	r := ReservationUpdate{ReservationPatch: ReservationPatch{GuestName: &name, TableSize: &size}, Status: &st}.
		Apply(Reservation{GuestName: "A", GuestEmail: "a@example.com", TableSize: 2, Status: StatusRequested})
	if r.GuestName != "B" || r.TableSize != 5 || r.Status != StatusCancelled || r.GuestEmail != "a@example.com" {
		t.Errorf("Apply = %+v", r)
	}
}
