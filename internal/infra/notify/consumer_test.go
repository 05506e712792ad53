package notify

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staynest/internal/domain/booking"
	"staynest/internal/domain/pricing"
	domainproperty "staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
	domainuser "staynest/internal/domain/user"
	"staynest/internal/infra/storage/memory"
)

type memoryDeduper struct{ seen map[string]bool }

func (d *memoryDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[eventID] {
		return true, nil
	}
	d.seen[eventID] = true
	return false, nil
}

type sentMail struct {
	to       string
	template string
	data     any
}

type recordingNotifier struct{ sent []sentMail }

func (n *recordingNotifier) Send(ctx context.Context, to string, template string, data any) error {
	n.sent = append(n.sent, sentMail{to: to, template: template, data: data})
	return nil
}

type consumerFixture struct {
	consumer *BookingEventsConsumer
	notifier *recordingNotifier
}

func newConsumerFixture(t *testing.T) consumerFixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	for _, u := range []struct{ id, email string }{
		{"guest-1", "guest@example.com"},
		{"host-1", "host@example.com"},
	} {
		user, err := domainuser.New(domainuser.CreateParams{
			ID:           domainuser.ID(u.id),
			Email:        u.email,
			Name:         u.id,
			PasswordHash: "hash",
			Roles:        []domainuser.Role{domainuser.RoleGuest},
			CreatedAt:    time.Now(),
		})
		require.NoError(t, err)
		require.NoError(t, users.Save(ctx, user))
	}

	bookings := memory.NewBookingRepository()
	dr, err := daterange.New(
		time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         "bk-1",
		PropertyID: domainproperty.ID("prop-1"),
		GuestID:    "guest-1",
		HostID:     "host-1",
		Range:      dr,
		Guests:     2,
		Price:      pricing.Breakdown{Total: money.Rupees(7906)},
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, bookings.Save(ctx, b))

	notifier := &recordingNotifier{}
	return consumerFixture{
		consumer: &BookingEventsConsumer{
			Dedupe:   &memoryDeduper{},
			Bookings: bookings,
			Users:    users,
			Notifier: notifier,
		},
		notifier: notifier,
	}
}

func message(eventID, eventType, bookingID string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Key:   []byte(bookingID),
		Value: []byte(`{"id":"` + eventID + `","type":"` + eventType + `"}`),
	}
}

func TestConsumerRoutesRequestToHost(t *testing.T) {
	f := newConsumerFixture(t)
	err := f.consumer.Handle(context.Background(), message("ev-1", "booking.requested.v1", "bk-1"))
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "host@example.com", f.notifier.sent[0].to)
	assert.Equal(t, "booking_requested", f.notifier.sent[0].template)
	data, ok := f.notifier.sent[0].data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bk-1", data["booking_id"])
	assert.Equal(t, "2026-03-05", data["check_in"])
	assert.Equal(t, "2026-03-08", data["check_out"])
}

func TestConsumerRoutesConfirmationToGuest(t *testing.T) {
	f := newConsumerFixture(t)
	err := f.consumer.Handle(context.Background(), message("ev-1", "booking.confirmed.v1", "bk-1"))
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "guest@example.com", f.notifier.sent[0].to)
	assert.Equal(t, "booking_confirmed", f.notifier.sent[0].template)
}

func TestConsumerNotifiesHostOnGuestCancellation(t *testing.T) {
	f := newConsumerFixture(t)

	b, err := f.consumer.Bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	b.Status = domainbooking.StatusCancelledByGuest
	b.CancellationReason = "change of plans"
	require.NoError(t, f.consumer.Bookings.Save(context.Background(), b))

	err = f.consumer.Handle(context.Background(), message("ev-1", "booking.cancelled.v1", "bk-1"))
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "host@example.com", f.notifier.sent[0].to)
	data := f.notifier.sent[0].data.(map[string]any)
	assert.Equal(t, "change of plans", data["reason"])
}

func TestConsumerDeduplicatesRedelivery(t *testing.T) {
	f := newConsumerFixture(t)
	msg := message("ev-1", "booking.requested.v1", "bk-1")

	require.NoError(t, f.consumer.Handle(context.Background(), msg))
	require.NoError(t, f.consumer.Handle(context.Background(), msg))

	assert.Len(t, f.notifier.sent, 1)
}

func TestConsumerSkipsUnroutedAndBrokenMessages(t *testing.T) {
	f := newConsumerFixture(t)

	require.NoError(t, f.consumer.Handle(context.Background(), message("ev-1", "booking.completed.v1", "bk-1")))
	require.NoError(t, f.consumer.Handle(context.Background(), message("ev-2", "booking.requested.v1", "bk-missing")))
	require.NoError(t, f.consumer.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")}))

	assert.Empty(t, f.notifier.sent)
}
