package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
)

func (f *fixture) createBooking(t *testing.T, id string) {
	t.Helper()
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := h.Handle(context.Background(), requestCommand(id))
	require.NoError(t, err)
}

func (f *fixture) transition(t *testing.T, cmd TransitionBookingCommand) (*TransitionBookingResult, error) {
	t.Helper()
	h := &TransitionBookingHandler{Outbox: f.outbox}
	unit, err := f.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.ContextWithUnitOfWork(context.Background(), unit)
	res, err := h.Handle(ctx, cmd)
	if err != nil {
		require.NoError(t, unit.Rollback(ctx))
		return nil, err
	}
	require.NoError(t, unit.Commit(ctx))
	return res, nil
}

func hostTransition(id string, status domainbooking.Status) TransitionBookingCommand {
	return TransitionBookingCommand{
		BookingID: id,
		ActorID:   "host-1",
		ActorRole: "host",
		Status:    string(status),
		Now:       date(2026, time.January, 15),
	}
}

func TestConfirmBlocksPropertyDates(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	res, err := f.transition(t, hostTransition("bk-1", domainbooking.StatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusConfirmed), res.Booking.Status)

	prop, err := f.properties.ByID(context.Background(), "prop-1")
	require.NoError(t, err)
	require.Len(t, prop.BlockedDates, 1)
	block := prop.BlockedDates[0]
	assert.Equal(t, domainproperty.ReasonBooked, block.Reason)
	assert.Equal(t, "booking-bk-1", block.Reference)
	assert.Equal(t, date(2026, time.March, 5), block.Range.CheckIn)
	assert.Equal(t, date(2026, time.March, 8), block.Range.CheckOut)
}

func TestCancelConfirmedReleasesBlock(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	_, err := f.transition(t, hostTransition("bk-1", domainbooking.StatusConfirmed))
	require.NoError(t, err)

	cancel := TransitionBookingCommand{
		BookingID: "bk-1",
		ActorID:   "guest-1",
		ActorRole: "guest",
		Status:    string(domainbooking.StatusCancelledByGuest),
		Reason:    "change of plans",
		Now:       date(2026, time.January, 20),
	}
	res, err := f.transition(t, cancel)
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusCancelledByGuest), res.Booking.Status)
	assert.Equal(t, "change of plans", res.Booking.CancellationReason)

	prop, err := f.properties.ByID(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Empty(t, prop.BlockedDates)
}

func TestCancelPendingLeavesNoBlock(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	cancel := TransitionBookingCommand{
		BookingID: "bk-1",
		ActorID:   "guest-1",
		ActorRole: "guest",
		Status:    string(domainbooking.StatusCancelledByGuest),
		Now:       date(2026, time.January, 20),
	}
	_, err := f.transition(t, cancel)
	require.NoError(t, err)

	prop, err := f.properties.ByID(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Empty(t, prop.BlockedDates)
}

func TestCompleteKeepsBlockInPlace(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	_, err := f.transition(t, hostTransition("bk-1", domainbooking.StatusConfirmed))
	require.NoError(t, err)
	_, err = f.transition(t, hostTransition("bk-1", domainbooking.StatusCompleted))
	require.NoError(t, err)

	prop, err := f.properties.ByID(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Len(t, prop.BlockedDates, 1, "the stay happened, its dates stay blocked")
}

func TestRejectedBookingFreesDatesForOthers(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	_, err := f.transition(t, hostTransition("bk-1", domainbooking.StatusRejected))
	require.NoError(t, err)

	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	second := requestCommand("bk-2")
	second.GuestID = "guest-2"
	_, err = h.Handle(context.Background(), second)
	require.NoError(t, err, "rejected booking no longer reserves the slot")
}

func TestTransitionAuthorityErrors(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	guestConfirm := TransitionBookingCommand{
		BookingID: "bk-1",
		ActorID:   "guest-1",
		ActorRole: "guest",
		Status:    string(domainbooking.StatusConfirmed),
		Now:       date(2026, time.January, 15),
	}
	_, err := f.transition(t, guestConfirm)
	assert.ErrorIs(t, err, domainbooking.ErrNotAuthorized)

	wrongHost := hostTransition("bk-1", domainbooking.StatusConfirmed)
	wrongHost.ActorID = "host-9"
	_, err = f.transition(t, wrongHost)
	assert.ErrorIs(t, err, domainbooking.ErrNotAuthorized)
}

func TestTransitionInvalidTarget(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	cmd := hostTransition("bk-1", "pending")
	_, err := f.transition(t, cmd)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)

	cmd = hostTransition("bk-1", "archived")
	_, err = f.transition(t, cmd)
	assert.ErrorIs(t, err, domainbooking.ErrUnknownStatus)
}

func TestTransitionUnknownBooking(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)

	_, err := f.transition(t, hostTransition("bk-missing", domainbooking.StatusConfirmed))
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestTransitionRequiresUnitOfWork(t *testing.T) {
	h := &TransitionBookingHandler{Outbox: &recordingOutbox{}}
	_, err := h.Handle(context.Background(), hostTransition("bk-1", domainbooking.StatusConfirmed))
	assert.ErrorIs(t, err, uow.ErrUnitOfWorkMissing)
}

func TestAdminTransitionUsesSameRules(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	f.createBooking(t, "bk-1")

	cmd := TransitionBookingCommand{
		BookingID: "bk-1",
		ActorID:   "admin-1",
		ActorRole: "admin",
		Status:    string(domainbooking.StatusConfirmed),
		Now:       date(2026, time.January, 15),
	}
	res, err := f.transition(t, cmd)
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusConfirmed), res.Booking.Status)

	// Even an admin cannot confirm a booking twice.
	_, err = f.transition(t, cmd)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}
