package booking

import (
	"errors"
	"time"

	"staynest/internal/domain/shared/daterange"
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

// ValidateDateRange rejects stays starting before today. `now` is passed in
// by the caller so the check stays testable without clock mocking.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if daterange.Day(dr.CheckIn).Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}
