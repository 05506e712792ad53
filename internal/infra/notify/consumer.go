package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"staynest/internal/app/policies"
	domainbooking "staynest/internal/domain/booking"
	domainuser "staynest/internal/domain/user"
)

// Deduper remembers event IDs that were already handled so redelivered
// messages do not produce duplicate emails.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// BookingEventsConsumer turns booking lifecycle events from the broker into
// guest and host notifications.
type BookingEventsConsumer struct {
	Dedupe   Deduper
	Bookings domainbooking.Repository
	Users    domainuser.Repository
	Notifier policies.Notifier
	Logger   *slog.Logger
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (c *BookingEventsConsumer) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env eventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger().Warn("notification event undecodable, skipping", "error", err)
		return nil
	}
	if c.Dedupe != nil && env.ID != "" {
		seen, err := c.Dedupe.Seen(ctx, env.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	bookingID := domainbooking.ID(msg.Key)
	b, err := c.Bookings.ByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domainbooking.ErrNotFound) {
			c.logger().Warn("notification for unknown booking, skipping", "booking_id", bookingID)
			return nil
		}
		return err
	}

	template, recipientID := c.route(env.Type, b)
	if template == "" {
		return nil
	}
	recipient, err := c.Users.ByID(ctx, domainuser.ID(recipientID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			c.logger().Warn("notification recipient missing, skipping", "user_id", recipientID)
			return nil
		}
		return err
	}

	data := map[string]any{
		"booking_id": string(b.ID),
		"check_in":   b.Range.CheckIn.Format("2006-01-02"),
		"check_out":  b.Range.CheckOut.Format("2006-01-02"),
		"guests":     b.Guests,
		"reason":     b.CancellationReason,
	}
	if err := c.Notifier.Send(ctx, recipient.Email, template, data); err != nil {
		c.logger().Error("notification delivery failed", "template", template, "booking_id", b.ID, "error", err)
		return err
	}
	return nil
}

// route picks the email template and the recipient for an event type. An
// empty template means the event carries no notification.
func (c *BookingEventsConsumer) route(eventType string, b *domainbooking.Booking) (string, string) {
	switch strings.TrimSuffix(eventType, ".v1") {
	case "booking.requested":
		return "booking_requested", b.HostID
	case "booking.confirmed":
		return "booking_confirmed", b.GuestID
	case "booking.rejected":
		return "booking_rejected", b.GuestID
	case "booking.cancelled":
		if b.Status == domainbooking.StatusCancelledByGuest {
			return "booking_cancelled", b.HostID
		}
		return "booking_cancelled", b.GuestID
	}
	return "", ""
}

func (c *BookingEventsConsumer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
