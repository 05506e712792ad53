package booking

import (
	"time"

	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID   ID
	PropertyID  property.ID
	GuestID     string
	Range       daterange.DateRange
	GuestsCount int
	QuotedTotal money.Money
	At          time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  ID
	PropertyID property.ID
	Range      daterange.DateRange
	Total      money.Money
	At         time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingRejected struct {
	BookingID ID
	Reason    string
	At        time.Time
}

func (e BookingRejected) EventName() string     { return "booking.rejected" }
func (e BookingRejected) AggregateID() string   { return string(e.BookingID) }
func (e BookingRejected) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID    ID
	PropertyID   property.ID
	By           Status
	Reason       string
	WasConfirmed bool
	Refund       money.Money
	At           time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID  ID
	PropertyID property.ID
	At         time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
