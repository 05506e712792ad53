package availability

import (
	"time"

	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
)

// Reason explains why a stay cannot be booked. The zero value means bookable.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNotPublished        Reason = "PROPERTY_NOT_PUBLISHED"
	ReasonInvalidDateOrder    Reason = "INVALID_DATE_ORDER"
	ReasonBelowMinimumStay    Reason = "BELOW_MINIMUM_STAY"
	ReasonAboveMaximumStay    Reason = "ABOVE_MAXIMUM_STAY"
	ReasonGuestCountExceeded  Reason = "GUEST_COUNT_EXCEEDED"
	ReasonOutsideAvailability Reason = "OUTSIDE_AVAILABILITY"
	ReasonDateRangeBlocked    Reason = "DATE_RANGE_BLOCKED"
	ReasonAlreadyBooked       Reason = "DATE_RANGE_ALREADY_BOOKED"
)

// Decision is the outcome of resolving a proposed stay. Nights is computed
// once here and reused by the price calculator to avoid recomputation drift.
type Decision struct {
	Available bool
	Reason    Reason
	Nights    int
}

func refused(reason Reason) Decision {
	return Decision{Available: false, Reason: reason}
}

// OpenStay is an existing booking holding dates on the property: any booking
// in a pending or confirmed state. Pending bookings reserve their slot
// optimistically.
type OpenStay struct {
	Range daterange.DateRange
}

// Resolve decides whether [checkIn, checkOut) can be booked on the property
// for the given party size. Preconditions are checked in a fixed order and
// the first failure wins.
func Resolve(p *property.Property, openStays []OpenStay, checkIn, checkOut time.Time, guests int) Decision {
	if p == nil || p.Status != property.StatusPublished {
		return refused(ReasonNotPublished)
	}

	checkIn = daterange.Day(checkIn)
	checkOut = daterange.Day(checkOut)
	if !checkIn.Before(checkOut) {
		return refused(ReasonInvalidDateOrder)
	}
	stay := daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	nights := stay.Nights()

	if nights < p.Pricing.MinimumStayNights {
		return refused(ReasonBelowMinimumStay)
	}
	if p.Pricing.MaximumStayNights > 0 && nights > p.Pricing.MaximumStayNights {
		return refused(ReasonAboveMaximumStay)
	}
	if guests > p.MaxGuests {
		return refused(ReasonGuestCountExceeded)
	}

	if !withinAvailability(p.AvailabilityRanges, stay) {
		return refused(ReasonOutsideAvailability)
	}
	for _, blocked := range p.BlockedDates {
		if blocked.Range.Overlaps(stay) {
			return refused(ReasonDateRangeBlocked)
		}
	}
	for _, open := range openStays {
		if open.Range.Overlaps(stay) {
			return refused(ReasonAlreadyBooked)
		}
	}

	return Decision{Available: true, Nights: nights}
}

// withinAvailability requires the whole stay to fit inside a single declared
// range. Availability is stored with inclusive dates, so the last occupied
// night (checkOut - 1 day) must not pass the range's end date.
func withinAvailability(ranges []property.AvailabilityRange, stay daterange.DateRange) bool {
	for _, r := range ranges {
		half, err := r.HalfOpen()
		if err != nil {
			continue
		}
		if half.Contains(stay) {
			return true
		}
	}
	return false
}
