package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	"staynest/internal/app/outbox"
	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
)

const transitionBookingKey = "booking.transition"

type TransitionBookingCommand struct {
	BookingID string
	ActorID   string
	ActorRole string
	Status    string
	Reason    string
	Now       time.Time
}

func (c TransitionBookingCommand) Key() string { return transitionBookingKey }

type TransitionBookingResult struct {
	Booking dto.BookingDetail `json:"booking"`
}

type TransitionBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle moves a booking through its lifecycle and keeps the property's
// blocked dates in step: a confirmation blocks the stay, leaving confirmed
// releases it. Both saves ride the same unit of work, so a reader never sees
// one without the other.
func (h *TransitionBookingHandler) Handle(ctx context.Context, cmd TransitionBookingCommand) (*TransitionBookingResult, error) {
	bookingID := strings.TrimSpace(cmd.BookingID)
	if bookingID == "" {
		return nil, errors.New("booking id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	target, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	actor := domainbooking.Actor{
		ID:   strings.TrimSpace(cmd.ActorID),
		Role: domainbooking.ActorRole(strings.ToLower(strings.TrimSpace(cmd.ActorRole))),
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(bookingID))
	if err != nil {
		return nil, err
	}
	wasConfirmed := b.Status == domainbooking.StatusConfirmed

	if err := b.Transition(target, actor, cmd.Reason, now); err != nil {
		return nil, err
	}

	var prop *domainproperty.Property
	switch {
	case target == domainbooking.StatusConfirmed:
		prop, err = unit.Properties().ByID(ctx, b.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := prop.Block(b.Range, domainproperty.ReasonBooked, b.BlockReference(), now); err != nil {
			return nil, err
		}
	case wasConfirmed && target != domainbooking.StatusCompleted:
		prop, err = unit.Properties().ByID(ctx, b.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := prop.Unblock(b.BlockReference(), now); err != nil && !errors.Is(err, domainproperty.ErrRangeNotFound) {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if prop != nil {
		if err := unit.Properties().Save(ctx, prop); err != nil {
			return nil, err
		}
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if prop != nil {
		pending = append(pending, prop.PendingEvents()...)
		prop.ClearEvents()
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking transitioned", "booking_id", b.ID, "status", b.Status, "actor_role", actor.Role)
	}

	return &TransitionBookingResult{Booking: dto.MapBookingDetail(b)}, nil
}

func (h *TransitionBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[TransitionBookingCommand, *TransitionBookingResult] = (*TransitionBookingHandler)(nil)
