package booking

import "fmt"

// BookingStatus represents the state of a booking.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
)

var validStatuses = map[BookingStatus]struct{}{
	StatusConfirmed: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validStatuses[s]
	return exists
}

// BlocksRoom returns true if a booking in this status makes its nights unavailable.
func (s BookingStatus) BlocksRoom() bool {
	return s == StatusConfirmed
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
