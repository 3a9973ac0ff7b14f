package stay

import (
	"fmt"
	"strings"
	"time"

	"github.com/hotelstay/service-booking/internal/common/domain"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// MaxNights is the longest stay that can be booked.
const MaxNights = 365

const secondsPerDay = 24 * 60 * 60

// timeLayouts are the accepted forms of a trailing time part.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// Stay is a half-open range of calendar nights [checkIn, checkOut).
type Stay struct {
	checkIn  time.Time
	checkOut time.Time
}

// New creates a Stay from two instants, keeping only their UTC calendar dates.
func New(checkIn, checkOut time.Time) (Stay, error) {
	in := truncate(checkIn)
	out := truncate(checkOut)
	if !in.Before(out) {
		return Stay{}, domain.NewValidationError("check-in date must be before check-out date")
	}
	if daysBetween(in, out) > MaxNights {
		return Stay{}, domain.NewValidationError(fmt.Sprintf("stay must not exceed %d nights", MaxNights))
	}
	return Stay{checkIn: in, checkOut: out}, nil
}

// Reconstruct rebuilds a stored Stay. Only the ordering is checked.
func Reconstruct(checkIn, checkOut time.Time) (Stay, error) {
	in := truncate(checkIn)
	out := truncate(checkOut)
	if !in.Before(out) {
		return Stay{}, fmt.Errorf("stored stay %s/%s is not ordered", in.Format(DateLayout), out.Format(DateLayout))
	}
	return Stay{checkIn: in, checkOut: out}, nil
}

// Parse creates a Stay from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (Stay, error) {
	if strings.TrimSpace(checkIn) == "" || strings.TrimSpace(checkOut) == "" {
		return Stay{}, domain.NewValidationError("check-in and check-out dates are required")
	}
	in, err := ParseDate(checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return Stay{}, err
	}
	return New(in, out)
}

// ParseOptional returns nil when both dates are empty and an error when only one is.
func ParseOptional(checkIn, checkOut string) (*Stay, error) {
	if strings.TrimSpace(checkIn) == "" && strings.TrimSpace(checkOut) == "" {
		return nil, nil
	}
	s, err := Parse(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseDate parses YYYY-MM-DD. A trailing time part such as
// "T00:00:00Z" must be a valid time and is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	date := s
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		date = s[:i]
		if !validDateTime(s) {
			return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
		}
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

func validDateTime(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) time.Time {
	return truncate(now)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckIn returns the first night.
func (s Stay) CheckIn() time.Time { return s.checkIn }

// CheckOut returns the departure date, which is not a night of the stay.
func (s Stay) CheckOut() time.Time { return s.checkOut }

// Nights returns the number of nights.
func (s Stay) Nights() int {
	return daysBetween(s.checkIn, s.checkOut)
}

// daysBetween counts calendar days between two UTC midnights.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// Overlaps reports whether two stays share at least one night.
// A checkout on the day of another check-in is not an overlap.
func (s Stay) Overlaps(other Stay) bool {
	return s.checkIn.Before(other.checkOut) && other.checkIn.Before(s.checkOut)
}

// IsZero reports whether s is the zero value.
func (s Stay) IsZero() bool {
	return s.checkIn.IsZero() && s.checkOut.IsZero()
}

// Key returns "checkIn:checkOut" for use in cache keys.
func (s Stay) Key() string {
	return s.checkIn.Format(DateLayout) + ":" + s.checkOut.Format(DateLayout)
}

// String returns "checkIn/checkOut".
func (s Stay) String() string {
	return s.checkIn.Format(DateLayout) + "/" + s.checkOut.Format(DateLayout)
}
