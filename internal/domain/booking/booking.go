package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staynest/internal/domain/pricing"
	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/events"
	"staynest/internal/domain/shared/money"
)

var (
	ErrInvalidGuests     = errors.New("booking: guests count must be positive")
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	ErrNotAuthorized     = errors.New("booking: actor not authorized for transition")
	ErrNotFound          = errors.New("booking: not found")
	ErrConflict          = errors.New("booking: concurrent booking detected")
	ErrUnknownStatus     = errors.New("booking: unknown status")
)

type ID string

type Status string

const (
	StatusPending          Status = "pending"
	StatusConfirmed        Status = "confirmed"
	StatusRejected         Status = "rejected"
	StatusCompleted        Status = "completed"
	StatusCancelledByGuest Status = "cancelled_by_guest"
	StatusCancelledByHost  Status = "cancelled_by_host"
)

// Terminal reports whether no further lifecycle transition is permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelledByGuest, StatusCancelledByHost:
		return true
	}
	return false
}

// Open reports whether the booking still holds its nights on the property.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusConfirmed
}

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelledByGuest:
		return StatusCancelledByGuest, nil
	case StatusCancelledByHost:
		return StatusCancelledByHost, nil
	}
	return "", ErrUnknownStatus
}

// Actor identifies who is performing an operation. Identity is passed in
// explicitly rather than read from ambient session state.
type ActorRole string

const (
	RoleGuest ActorRole = "guest"
	RoleHost  ActorRole = "host"
	RoleAdmin ActorRole = "admin"
)

type Actor struct {
	ID   string
	Role ActorRole
}

type Booking struct {
	ID                 ID
	PropertyID         property.ID
	GuestID            string
	HostID             string
	Range              daterange.DateRange
	Guests             int
	TotalNights        int
	Price              pricing.Breakdown
	Status             Status
	Policy             CancellationPolicy
	CancellationReason string
	CancellationDate   time.Time
	RefundAmount       money.Money
	PenaltyAmount      money.Money
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByProperty(ctx context.Context, propertyID property.ID) ([]*Booking, error)
	// OpenOverlapping returns pending/confirmed bookings on the property whose
	// half-open range overlaps the given one. Backing stores must serve this
	// inside the same transaction as booking inserts.
	OpenOverlapping(ctx context.Context, propertyID property.ID, r daterange.DateRange) ([]*Booking, error)
}

type CreateParams struct {
	ID         ID
	PropertyID property.ID
	GuestID    string
	HostID     string
	Range      daterange.DateRange
	Guests     int
	Price      pricing.Breakdown
	Policy     CancellationPolicy
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, errors.New("booking: guest id required")
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, errors.New("booking: property id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Price.Total.Amount <= 0 {
		return nil, errors.New("booking: total must be positive")
	}
	policy := params.Policy
	if policy == (CancellationPolicy{}) {
		policy = DefaultCancellationPolicy(params.Range.CheckIn)
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		PropertyID:  params.PropertyID,
		GuestID:     params.GuestID,
		HostID:      params.HostID,
		Range:       params.Range,
		Guests:      params.Guests,
		TotalNights: params.Range.Nights(),
		Price:       params.Price,
		Status:      StatusPending,
		Policy:      policy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{BookingID: b.ID, PropertyID: b.PropertyID, GuestID: b.GuestID, Range: b.Range, GuestsCount: b.Guests, QuotedTotal: b.Price.Total, At: now})
	return b, nil
}

// BlockReference names the blocked-dates entry a confirmed booking owns on
// its property.
func (b *Booking) BlockReference() string {
	return "booking-" + string(b.ID)
}

// Transition applies the requested status change after checking both the
// state machine and the actor's authority. Side effects on the property
// (block/unblock) are the caller's responsibility and must share the same
// transaction.
func (b *Booking) Transition(to Status, actor Actor, reason string, now time.Time) error {
	if b.Status.Terminal() {
		return ErrInvalidTransition
	}
	switch to {
	case StatusConfirmed:
		return b.Confirm(actor, now)
	case StatusRejected:
		return b.Reject(actor, reason, now)
	case StatusCancelledByGuest:
		return b.CancelByGuest(actor, reason, now)
	case StatusCancelledByHost:
		return b.CancelByHost(actor, reason, now)
	case StatusCompleted:
		return b.Complete(actor, now)
	default:
		return ErrInvalidTransition
	}
}

func (b *Booking) Confirm(actor Actor, now time.Time) error {
	if !b.actorIsHost(actor) {
		return ErrNotAuthorized
	}
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Reject(actor Actor, reason string, now time.Time) error {
	if !b.actorIsHost(actor) {
		return ErrNotAuthorized
	}
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.Status = StatusRejected
	b.recordCancellation(reason, now)
	// A rejected request was never held against the calendar, so the guest
	// gets everything back regardless of the policy window.
	b.RefundAmount = b.Price.Total
	b.PenaltyAmount = money.Money{Currency: b.Price.Total.Currency}
	b.Record(BookingRejected{BookingID: b.ID, Reason: b.CancellationReason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CancelByGuest(actor Actor, reason string, now time.Time) error {
	if actor.Role != RoleAdmin && !(actor.Role == RoleGuest && actor.ID == b.GuestID) {
		return ErrNotAuthorized
	}
	return b.cancel(StatusCancelledByGuest, reason, now)
}

func (b *Booking) CancelByHost(actor Actor, reason string, now time.Time) error {
	if !b.actorIsHost(actor) {
		return ErrNotAuthorized
	}
	return b.cancel(StatusCancelledByHost, reason, now)
}

// Complete is host-triggered once the stay is over. The engine does not hard
// block on the checkout date.
func (b *Booking) Complete(actor Actor, now time.Time) error {
	if !b.actorIsHost(actor) {
		return ErrNotAuthorized
	}
	if b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, PropertyID: b.PropertyID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) cancel(to Status, reason string, now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	wasConfirmed := b.Status == StatusConfirmed
	b.Status = to
	b.recordCancellation(reason, now)
	refund, penalty, err := b.Policy.Refund(b.Price.Total, b.CancellationDate, b.Range.CheckIn)
	if err != nil {
		return err
	}
	b.RefundAmount = refund
	b.PenaltyAmount = penalty
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, By: to, Reason: b.CancellationReason, WasConfirmed: wasConfirmed, Refund: refund, At: b.UpdatedAt})
	return nil
}

func (b *Booking) recordCancellation(reason string, now time.Time) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unspecified"
	}
	b.CancellationReason = reason
	b.CancellationDate = now.UTC()
	b.UpdatedAt = now.UTC()
}

func (b *Booking) actorIsHost(actor Actor) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.Role == RoleHost && actor.ID == b.HostID
}
