package reservation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

var testNow = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

func TestValidateArrivalTime(t *testing.T) {
	tests := []struct {
		name   string
		ts     string
		period model.MealPeriod
		want   error
	}{
		{"lunch midday", "2030-06-02 12:00", model.Lunch, nil},
		{"lunch opens", "2030-06-02 10:30", model.Lunch, nil},
		{"lunch closes", "2030-06-02 14:30", model.Lunch, nil},
		{"lunch too early", "2030-06-02 10:29", model.Lunch, ErrOutOfWindow},
		{"lunch too late", "2030-06-02 14:31", model.Lunch, ErrOutOfWindow},
		{"dinner opens", "2030-06-02 17:00", model.Dinner, nil},
		{"dinner closes", "2030-06-02 22:00", model.Dinner, nil},
		{"dinner too early", "2030-06-02 16:59", model.Dinner, ErrOutOfWindow},
		{"dinner too late", "2030-06-02 22:01", model.Dinner, ErrOutOfWindow},
		{"lunch time at dinner", "2030-06-02 12:00", model.Dinner, ErrOutOfWindow},
		{"iso separator", "2030-06-02T12:00", model.Lunch, ErrInvalidFormat},
		{"double space", "2030-06-02  12:00", model.Lunch, ErrInvalidFormat},
		{"no padding", "2030-6-2 12:00", model.Lunch, ErrInvalidFormat},
		{"seconds", "2030-06-02 12:00:00", model.Lunch, ErrInvalidFormat},
		{"empty", "", model.Lunch, ErrInvalidFormat},
		{"impossible date", "2030-02-30 12:00", model.Lunch, ErrInvalidFormat},
		{"unknown period", "2030-06-02 12:00", model.MealPeriod("Brunch"), ErrInvalidFormat},
		{"past", "2020-01-01 12:00", model.Lunch, ErrPastTime},
		{"later today", "2030-06-01 10:30", model.Lunch, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateArrivalTime(tc.ts, tc.period, testNow, time.UTC)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want kind of %v", err, tc.want)
			}
		})
	}
}

func TestValidateArrivalTimeMessages(t *testing.T) {
	err := ValidateArrivalTime("2030-06-02 15:00", model.Lunch, testNow, time.UTC)
	if err == nil || err.Error() != "Lunch arrival time must be between 10:30 and 14:30" {
		t.Errorf("lunch message = %v", err)
	}
	err = ValidateArrivalTime("2030-06-02 23:00", model.Dinner, testNow, time.UTC)
	if err == nil || err.Error() != "Dinner arrival time must be between 17:00 and 22:00" {
		t.Errorf("dinner message = %v", err)
	}
	err = ValidateArrivalTime("2020-01-01 12:00", model.Lunch, testNow, time.UTC)
	if err == nil || err.Error() != "Past time is not allowed" {
		t.Errorf("past message = %v", err)
	}
}

func TestValidateArrivalTimeBoundaryNow(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := ValidateArrivalTime("2030-06-01 12:00", model.Lunch, now, time.UTC); err != nil {
		t.Errorf("arrival equal to now rejected: %v", err)
	}
	if err := ValidateArrivalTime("2030-06-01 11:59", model.Lunch, now, time.UTC); !errors.Is(err, ErrPastTime) {
		t.Errorf("one minute ago: err = %v, want PastTime", err)
	}
}

func TestValidateArrivalTimeLocation(t *testing.T) {
	// 09:00 UTC is 12:00 three hours east, so 11:00 there has already passed.
	east := time.FixedZone("UTC+3", 3*60*60)
	if err := ValidateArrivalTime("2030-06-01 11:00", model.Lunch, testNow, east); !errors.Is(err, ErrPastTime) {
		t.Errorf("err = %v, want PastTime", err)
	}
	if err := ValidateArrivalTime("2030-06-01 11:00", model.Lunch, testNow, time.UTC); err != nil {
		t.Errorf("UTC: unexpected error %v", err)
	}
}

func TestExtractDate(t *testing.T) {
	if d, err := ExtractDate("2030-06-02 12:00"); err != nil || d != "2030-06-02" {
		t.Errorf("ExtractDate = %q, %v", d, err)
	}
	for _, ts := range []string{"2030/06/02 12:00", "short", ""} {
		if _, err := ExtractDate(ts); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ExtractDate(%q) err = %v, want InvalidDate", ts, err)
		}
	}
}

func TestValidateContact(t *testing.T) {
	tests := []struct {
		email, phone string
		want         error
	}{
		{"alice@example.com", "100861", nil},
		{"  alice@example.com ", " 100861 ", nil},
		{"alice@example", "100861", ErrInvalidEmail},
		{"a lice@example.com", "100861", ErrInvalidEmail},
		{"", "100861", ErrInvalidEmail},
		{"alice@example.com", "12345", ErrInvalidPhone},
		{"alice@example.com", "123456", nil},
		{"alice@example.com", "12345678901234567890", nil},
		{"alice@example.com", "123456789012345678901", ErrInvalidPhone},
		{"alice@example.com", "+1234567", ErrInvalidPhone},
		{"bad", "bad", ErrInvalidEmail},
	}
	for _, tc := range tests {
		err := ValidateContact(tc.email, tc.phone)
		if tc.want == nil && err != nil {
			t.Errorf("ValidateContact(%q, %q) = %v", tc.email, tc.phone, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("ValidateContact(%q, %q) = %v, want %v", tc.email, tc.phone, err, tc.want)
		}
	}
}

func TestPartySize(t *testing.T) {
	for _, f := range []float64{1, 4, 10} {
		if n, err := PartySize(f); err != nil || n != int(f) {
			t.Errorf("PartySize(%v) = %d, %v", f, n, err)
		}
	}
	for _, f := range []float64{0, 11, -1, 2.5, math.NaN(), math.Inf(1)} {
		if _, err := PartySize(f); !errors.Is(err, ErrInvalidPartySize) {
			t.Errorf("PartySize(%v) err = %v, want InvalidPartySize", f, err)
		}
	}
	if err := ValidatePartySize(0); err == nil || err.Error() != "Party size must be between 1 and 10" {
		t.Errorf("ValidatePartySize(0) = %v", err)
	}
}
