package property

import (
	"time"

	"staynest/internal/domain/shared/daterange"
)

type PropertyCreated struct {
	PropertyID ID
	Host       HostID
	At         time.Time
}

func (e PropertyCreated) EventName() string     { return "property.created" }
func (e PropertyCreated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyCreated) OccurredAt() time.Time { return e.At }

type PropertyPublished struct {
	PropertyID ID
	At         time.Time
}

func (e PropertyPublished) EventName() string     { return "property.published" }
func (e PropertyPublished) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyPublished) OccurredAt() time.Time { return e.At }

type PropertyUnpublished struct {
	PropertyID ID
	At         time.Time
}

func (e PropertyUnpublished) EventName() string     { return "property.unpublished" }
func (e PropertyUnpublished) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyUnpublished) OccurredAt() time.Time { return e.At }

type PricingUpdated struct {
	PropertyID ID
	At         time.Time
}

func (e PricingUpdated) EventName() string     { return "property.pricing_updated" }
func (e PricingUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e PricingUpdated) OccurredAt() time.Time { return e.At }

type AvailabilityAdded struct {
	PropertyID ID
	StartDate  time.Time
	EndDate    time.Time
	At         time.Time
}

func (e AvailabilityAdded) EventName() string     { return "property.availability_added" }
func (e AvailabilityAdded) AggregateID() string   { return string(e.PropertyID) }
func (e AvailabilityAdded) OccurredAt() time.Time { return e.At }

type AvailabilityRemoved struct {
	PropertyID ID
	StartDate  time.Time
	EndDate    time.Time
	At         time.Time
}

func (e AvailabilityRemoved) EventName() string     { return "property.availability_removed" }
func (e AvailabilityRemoved) AggregateID() string   { return string(e.PropertyID) }
func (e AvailabilityRemoved) OccurredAt() time.Time { return e.At }

type DatesBlocked struct {
	PropertyID ID
	Range      daterange.DateRange
	Reason     BlockReason
	At         time.Time
}

func (e DatesBlocked) EventName() string     { return "property.dates_blocked" }
func (e DatesBlocked) AggregateID() string   { return string(e.PropertyID) }
func (e DatesBlocked) OccurredAt() time.Time { return e.At }

type DatesUnblocked struct {
	PropertyID ID
	Range      daterange.DateRange
	Reason     BlockReason
	At         time.Time
}

func (e DatesUnblocked) EventName() string     { return "property.dates_unblocked" }
func (e DatesUnblocked) AggregateID() string   { return string(e.PropertyID) }
func (e DatesUnblocked) OccurredAt() time.Time { return e.At }
