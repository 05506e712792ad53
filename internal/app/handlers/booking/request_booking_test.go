package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "staynest/internal/app/outbox"
	"staynest/internal/app/uow"
	domainavailability "staynest/internal/domain/availability"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
	"staynest/internal/infra/storage/memory"
)

type recordingOutbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func (o *recordingOutbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *recordingOutbox) Flush(context.Context) error { return nil }

func (o *recordingOutbox) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.records))
	for _, r := range o.records {
		out = append(out, r.Name)
	}
	return out
}

type fixture struct {
	factory    memory.Factory
	properties *memory.PropertyRepository
	bookings   *memory.BookingRepository
	outbox     *recordingOutbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		properties: memory.NewPropertyRepository(),
		bookings:   memory.NewBookingRepository(),
		outbox:     &recordingOutbox{},
	}
	f.factory = memory.Factory{
		PropertiesRepo: f.properties,
		BookingsRepo:   f.bookings,
		UsersRepo:      memory.NewUserRepository(),
		ReviewsRepo:    memory.NewReviewsRepository(),
	}
	return f
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) seedProperty(t *testing.T) *domainproperty.Property {
	t.Helper()
	now := date(2025, time.December, 1)
	p, err := domainproperty.New(domainproperty.CreateParams{
		ID:    "prop-1",
		Host:  "host-1",
		Title: "Anjuna villa",
		Address: domainproperty.Address{
			Line1:   "1 Beach Road",
			City:    "Anjuna",
			Country: "IN",
		},
		MaxGuests: 4,
		Pricing: domainproperty.PricingSchedule{
			BasePrice:         money.Rupees(2000),
			CleaningFee:       money.Rupees(500),
			ServiceFee:        money.Rupees(200),
			TaxRatePercent:    18,
			MinimumStayNights: 2,
		},
		Now: now,
	})
	require.NoError(t, err)
	require.NoError(t, p.AddAvailability(date(2026, time.January, 1), date(2026, time.December, 31), now))
	require.NoError(t, p.Publish(now))
	p.ClearEvents()
	require.NoError(t, f.properties.Save(context.Background(), p))
	return p
}

func requestCommand(id string) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID:  id,
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		CheckIn:    date(2026, time.March, 5),
		CheckOut:   date(2026, time.March, 8),
		Guests:     2,
		Now:        date(2026, time.January, 10),
	}
}

func TestRequestBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	res, err := h.Handle(context.Background(), requestCommand("bk-1"))
	require.NoError(t, err)

	assert.Equal(t, "bk-1", res.Booking.ID)
	assert.Equal(t, string(domainbooking.StatusPending), res.Booking.Status)
	assert.Equal(t, 3, res.Booking.TotalNights)
	assert.Equal(t, int64(7906), res.Booking.Price.Total.Amount)

	stored, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "host-1", stored.HostID)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)

	assert.Equal(t, []string{"booking.requested"}, f.outbox.names())
}

func TestRequestBookingOverlapRefused(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	_, err := h.Handle(context.Background(), requestCommand("bk-1"))
	require.NoError(t, err)

	second := requestCommand("bk-2")
	second.GuestID = "guest-2"
	second.CheckIn = date(2026, time.March, 7)
	second.CheckOut = date(2026, time.March, 10)
	_, err = h.Handle(context.Background(), second)

	reason, ok := domainavailability.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, domainavailability.ReasonAlreadyBooked, reason)
}

func TestRequestBookingBackToBackAllowed(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	_, err := h.Handle(context.Background(), requestCommand("bk-1"))
	require.NoError(t, err)

	second := requestCommand("bk-2")
	second.CheckIn = date(2026, time.March, 8)
	second.CheckOut = date(2026, time.March, 11)
	_, err = h.Handle(context.Background(), second)
	require.NoError(t, err)
}

func TestRequestBookingRefusalReasons(t *testing.T) {
	f := newFixture(t)
	prop := f.seedProperty(t)

	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	t.Run("below minimum stay", func(t *testing.T) {
		cmd := requestCommand("bk-min")
		cmd.CheckOut = cmd.CheckIn.AddDate(0, 0, 1)
		_, err := h.Handle(context.Background(), cmd)
		reason, ok := domainavailability.ReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, domainavailability.ReasonBelowMinimumStay, reason)
	})

	t.Run("guest count exceeded", func(t *testing.T) {
		cmd := requestCommand("bk-guests")
		cmd.Guests = 9
		_, err := h.Handle(context.Background(), cmd)
		reason, ok := domainavailability.ReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, domainavailability.ReasonGuestCountExceeded, reason)
	})

	t.Run("outside availability", func(t *testing.T) {
		cmd := requestCommand("bk-outside")
		cmd.CheckIn = date(2027, time.March, 5)
		cmd.CheckOut = date(2027, time.March, 8)
		_, err := h.Handle(context.Background(), cmd)
		reason, ok := domainavailability.ReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, domainavailability.ReasonOutsideAvailability, reason)
	})

	t.Run("unpublished property", func(t *testing.T) {
		require.NoError(t, prop.Unpublish(date(2026, time.January, 9)))
		prop.ClearEvents()
		require.NoError(t, f.properties.Save(context.Background(), prop))

		_, err := h.Handle(context.Background(), requestCommand("bk-draft"))
		reason, ok := domainavailability.ReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, domainavailability.ReasonNotPublished, reason)
	})
}

func TestRequestBookingConcurrentRaceSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	// Both requests want the same three nights. Whether they interleave or
	// serialize, exactly one may end up holding them.
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := requestCommand("bk-racer-" + string(rune('a'+i)))
			cmd.GuestID = "guest-" + string(rune('1'+i))
			_, results[i] = h.Handle(context.Background(), cmd)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		if err == nil {
			won++
			continue
		}
		lost++
		if _, refused := domainavailability.ReasonOf(err); !refused {
			assert.ErrorIs(t, err, domainbooking.ErrConflict)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	stay, err := daterange.New(date(2026, time.March, 5), date(2026, time.March, 8))
	require.NoError(t, err)
	open, err := f.bookings.OpenOverlapping(context.Background(), "prop-1", stay)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestRequestBookingPastCheckIn(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	cmd := requestCommand("bk-past")
	cmd.Now = date(2026, time.March, 6)
	_, err := h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
}

func TestRequestBookingRefusalWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	cmd := requestCommand("bk-guests")
	cmd.Guests = 9
	_, err := h.Handle(context.Background(), cmd)
	require.Error(t, err)

	_, err = f.bookings.ByID(context.Background(), "bk-guests")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	assert.Empty(t, f.outbox.names())
}

func TestRequestBookingUsesUnitOfWorkFromContext(t *testing.T) {
	f := newFixture(t)
	f.seedProperty(t)
	h := &RequestBookingHandler{Outbox: f.outbox}

	unit, err := f.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.ContextWithUnitOfWork(context.Background(), unit)

	res, err := h.Handle(ctx, requestCommand("bk-ctx"))
	require.NoError(t, err)
	assert.Equal(t, "bk-ctx", res.Booking.ID)
}

func TestRequestBookingWithoutFactoryOrUnit(t *testing.T) {
	h := &RequestBookingHandler{Outbox: &recordingOutbox{}}
	_, err := h.Handle(context.Background(), requestCommand("bk-1"))
	assert.ErrorIs(t, err, ErrUnitOfWorkRequired)
}
