package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
)

var (
	guest = Actor{ID: "guest-1", Role: RoleGuest}
	host  = Actor{ID: "host-1", Role: RoleHost}
	admin = Actor{ID: "admin-1", Role: RoleAdmin}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPendingBooking(t *testing.T) *Booking {
	t.Helper()
	dr, err := daterange.New(date(2026, time.January, 5), date(2026, time.January, 8))
	require.NoError(t, err)
	b, err := New(CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		GuestID:    guest.ID,
		HostID:     host.ID,
		Range:      dr,
		Guests:     2,
		Price:      pricing.Breakdown{Total: money.Rupees(7906)},
		CreatedAt:  date(2026, time.January, 1),
	})
	require.NoError(t, err)
	return b
}

func TestNewStartsPendingAndRecordsEvent(t *testing.T) {
	b := newPendingBooking(t)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, 3, b.TotalNights)

	pending := b.PendingEvents()
	require.Len(t, pending, 1)
	assert.Equal(t, "booking.requested", pending[0].EventName())
}

func TestNewRejectsBadParams(t *testing.T) {
	dr, err := daterange.New(date(2026, time.January, 5), date(2026, time.January, 8))
	require.NoError(t, err)
	valid := CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		Range:      dr,
		Guests:     2,
		Price:      pricing.Breakdown{Total: money.Rupees(100)},
	}

	p := valid
	p.Guests = 0
	_, err = New(p)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	p = valid
	p.GuestID = "  "
	_, err = New(p)
	assert.Error(t, err)

	p = valid
	p.Price = pricing.Breakdown{}
	_, err = New(p)
	assert.Error(t, err)
}

func TestHostConfirmThenComplete(t *testing.T) {
	b := newPendingBooking(t)
	b.ClearEvents()

	require.NoError(t, b.Transition(StatusConfirmed, host, "", date(2026, time.January, 2)))
	assert.Equal(t, StatusConfirmed, b.Status)

	require.NoError(t, b.Transition(StatusCompleted, host, "", date(2026, time.January, 9)))
	assert.Equal(t, StatusCompleted, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "booking.confirmed", events[0].EventName())
	assert.Equal(t, "booking.completed", events[1].EventName())
}

func TestGuestCannotConfirmOrComplete(t *testing.T) {
	b := newPendingBooking(t)
	assert.ErrorIs(t, b.Transition(StatusConfirmed, guest, "", date(2026, time.January, 2)), ErrNotAuthorized)

	require.NoError(t, b.Transition(StatusConfirmed, host, "", date(2026, time.January, 2)))
	assert.ErrorIs(t, b.Transition(StatusCompleted, guest, "", date(2026, time.January, 9)), ErrNotAuthorized)
}

func TestWrongHostIsNotAuthorized(t *testing.T) {
	b := newPendingBooking(t)
	other := Actor{ID: "host-2", Role: RoleHost}
	assert.ErrorIs(t, b.Confirm(other, date(2026, time.January, 2)), ErrNotAuthorized)
}

func TestAdminActsWithFullAuthority(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Transition(StatusConfirmed, admin, "", date(2026, time.January, 2)))

	b2 := newPendingBooking(t)
	require.NoError(t, b2.Transition(StatusCancelledByGuest, admin, "ops request", date(2026, time.January, 2)))
	assert.Equal(t, StatusCancelledByGuest, b2.Status)
}

func TestGuestCancelOwnBookingOnly(t *testing.T) {
	b := newPendingBooking(t)
	stranger := Actor{ID: "guest-2", Role: RoleGuest}
	assert.ErrorIs(t, b.Transition(StatusCancelledByGuest, stranger, "", date(2026, time.January, 2)), ErrNotAuthorized)

	require.NoError(t, b.Transition(StatusCancelledByGuest, guest, "change of plans", date(2026, time.January, 2)))
	assert.Equal(t, StatusCancelledByGuest, b.Status)
	assert.Equal(t, "change of plans", b.CancellationReason)
	assert.Equal(t, date(2026, time.January, 2), b.CancellationDate)
}

func TestCancelConfirmedBooking(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Transition(StatusConfirmed, host, "", date(2026, time.January, 2)))
	b.ClearEvents()

	require.NoError(t, b.Transition(StatusCancelledByHost, host, "plumbing failure", date(2026, time.January, 3)))
	assert.Equal(t, StatusCancelledByHost, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	cancelled, ok := events[0].(BookingCancelled)
	require.True(t, ok)
	assert.True(t, cancelled.WasConfirmed)
}

func TestRejectOnlyFromPending(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Transition(StatusConfirmed, host, "", date(2026, time.January, 2)))
	assert.ErrorIs(t, b.Transition(StatusRejected, host, "", date(2026, time.January, 3)), ErrInvalidTransition)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	b := newPendingBooking(t)
	assert.ErrorIs(t, b.Transition(StatusCompleted, host, "", date(2026, time.January, 9)), ErrInvalidTransition)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusCompleted, StatusCancelledByGuest, StatusCancelledByHost}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), string(s))
		b := newPendingBooking(t)
		b.Status = s
		assert.ErrorIs(t, b.Transition(StatusConfirmed, admin, "", date(2026, time.January, 2)), ErrInvalidTransition)
	}
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
}

func TestCancellationReasonDefaultsToUnspecified(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Transition(StatusRejected, host, "   ", date(2026, time.January, 2)))
	assert.Equal(t, "unspecified", b.CancellationReason)
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("  Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestValidateDateRange(t *testing.T) {
	dr, err := daterange.New(date(2026, time.January, 5), date(2026, time.January, 8))
	require.NoError(t, err)

	assert.NoError(t, ValidateDateRange(dr, date(2026, time.January, 5)))
	assert.ErrorIs(t, ValidateDateRange(dr, date(2026, time.January, 6)), ErrCheckInInPast)
}

func TestBlockReference(t *testing.T) {
	b := newPendingBooking(t)
	assert.Equal(t, "booking-bk-1", b.BlockReference())
}
