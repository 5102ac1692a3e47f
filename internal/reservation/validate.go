package reservation

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ArrivalLayout is the only accepted arrival timestamp layout.
const ArrivalLayout = "2006-01-02 15:04"

// Window is an inclusive range of zero-padded "HH:mm" times.
type Window struct {
	Start string
	End   string
}

// Contains compares lexicographically, which is numeric order for
// zero-padded 24h times.
func (w Window) Contains(hhmm string) bool { return hhmm >= w.Start && hhmm <= w.End }

// MealWindows holds the arrival window of each meal period.
var MealWindows = map[model.MealPeriod]Window{
	model.Lunch:  {Start: "10:30", End: "14:30"},
	model.Dinner: {Start: "17:00", End: "22:00"},
}

var (
	arrivalPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{2}:\d{2})$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{6,20}$`)
)

// ValidateArrivalTime checks ts against the layout, the meal window of
// period and the current instant now.  The wall clock in ts is read in loc.
func ValidateArrivalTime(ts string, period model.MealPeriod, now time.Time, loc *time.Location) error {
	m := arrivalPattern.FindStringSubmatch(ts)
	if m == nil {
		return ErrInvalidFormat
	}
	w, ok := MealWindows[period]
	if !ok {
		return newError(KindInvalidFormat, "Meal period must be Lunch or Dinner")
	}
	if !w.Contains(m[2]) {
		return newError(KindOutOfWindow, string(period)+" arrival time must be between "+w.Start+" and "+w.End)
	}
	if loc == nil {
		loc = time.Local
	}
	at, err := time.ParseInLocation(ArrivalLayout, ts, loc)
	if err != nil {
		return newError(KindInvalidFormat, "Invalid arrival time format")
	}
	if at.Before(now) {
		return ErrPastTime
	}
	return nil
}

// ExtractDate returns the YYYY-MM-DD prefix of an arrival timestamp.
func ExtractDate(ts string) (string, error) {
	if len(ts) < 10 || !datePattern.MatchString(ts[:10]) {
		return "", ErrInvalidDate
	}
	return ts[:10], nil
}

// ValidateContact checks the guest email and phone after trimming.
func ValidateContact(email, phone string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidatePartySize checks the integer party size bounds.
func ValidatePartySize(n int) error {
	if n < 1 || n > 10 {
		return ErrInvalidPartySize
	}
	return nil
}

// PartySize converts a decoded JSON number into a party size.  Fractions,
// NaN and infinities are rejected alongside out-of-range values.
func PartySize(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 1 || f > 10 {
		return 0, ErrInvalidPartySize
	}
	return int(f), nil
}
