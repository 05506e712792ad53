package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func publishedProperty(t *testing.T) *property.Property {
	t.Helper()
	now := date(2025, time.December, 1)
	p, err := property.New(property.CreateParams{
		ID:    "prop-1",
		Host:  "host-1",
		Title: "Test villa",
		Address: property.Address{
			Line1:   "1 Beach Road",
			City:    "Anjuna",
			Country: "IN",
		},
		MaxGuests: 4,
		Pricing: property.PricingSchedule{
			BasePrice:         money.Rupees(2000),
			TaxRatePercent:    18,
			MinimumStayNights: 2,
			MaximumStayNights: 28,
		},
		Now: now,
	})
	require.NoError(t, err)
	require.NoError(t, p.AddAvailability(date(2026, time.January, 1), date(2026, time.January, 31), now))
	require.NoError(t, p.Publish(now))
	return p
}

func TestResolveHappyPath(t *testing.T) {
	p := publishedProperty(t)

	d := Resolve(p, nil, date(2026, time.January, 5), date(2026, time.January, 8), 2)
	assert.True(t, d.Available)
	assert.Equal(t, ReasonNone, d.Reason)
	assert.Equal(t, 3, d.Nights)
	assert.NoError(t, d.Err())
}

func TestResolvePreconditionOrder(t *testing.T) {
	p := publishedProperty(t)
	draft := publishedProperty(t)
	require.NoError(t, draft.Unpublish(date(2025, time.December, 2)))

	booked := []OpenStay{{Range: mustRange(t, date(2026, time.January, 5), date(2026, time.January, 8))}}

	cases := []struct {
		name     string
		prop     *property.Property
		open     []OpenStay
		checkIn  time.Time
		checkOut time.Time
		guests   int
		want     Reason
	}{
		// An unpublished property fails first, even with inverted dates and
		// too many guests on the same request.
		{"not published wins", draft, booked, date(2026, time.January, 8), date(2026, time.January, 5), 99, ReasonNotPublished},
		{"date order before stay bounds", p, booked, date(2026, time.January, 8), date(2026, time.January, 5), 99, ReasonInvalidDateOrder},
		{"min stay before guest count", p, booked, date(2026, time.January, 5), date(2026, time.January, 6), 99, ReasonBelowMinimumStay},
		{"max stay", p, nil, date(2026, time.January, 1), date(2026, time.March, 1), 2, ReasonAboveMaximumStay},
		{"guest count before availability window", p, booked, date(2026, time.February, 10), date(2026, time.February, 13), 99, ReasonGuestCountExceeded},
		{"outside availability before booked overlap", p, booked, date(2026, time.February, 10), date(2026, time.February, 13), 2, ReasonOutsideAvailability},
		{"booked overlap last", p, booked, date(2026, time.January, 6), date(2026, time.January, 9), 2, ReasonAlreadyBooked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Resolve(tc.prop, tc.open, tc.checkIn, tc.checkOut, tc.guests)
			assert.False(t, d.Available)
			assert.Equal(t, tc.want, d.Reason)
		})
	}
}

func TestResolveBlockedRange(t *testing.T) {
	p := publishedProperty(t)
	blocked := mustRange(t, date(2026, time.January, 10), date(2026, time.January, 15))
	require.NoError(t, p.Block(blocked, property.ReasonUpkeep, "maint-1", date(2025, time.December, 5)))

	d := Resolve(p, nil, date(2026, time.January, 12), date(2026, time.January, 14), 2)
	assert.False(t, d.Available)
	assert.Equal(t, ReasonDateRangeBlocked, d.Reason)

	// Checking out the day the block starts is fine under half-open math.
	d = Resolve(p, nil, date(2026, time.January, 8), date(2026, time.January, 10), 2)
	assert.True(t, d.Available)
}

func TestResolveMinimumStayBoundary(t *testing.T) {
	p := publishedProperty(t)

	one := Resolve(p, nil, date(2026, time.January, 5), date(2026, time.January, 6), 2)
	assert.Equal(t, ReasonBelowMinimumStay, one.Reason)

	two := Resolve(p, nil, date(2026, time.January, 5), date(2026, time.January, 7), 2)
	assert.True(t, two.Available)
}

func TestResolveStayMustFitSingleAvailabilityRange(t *testing.T) {
	p := publishedProperty(t)
	now := date(2025, time.December, 10)
	require.NoError(t, p.AddAvailability(date(2026, time.February, 1), date(2026, time.February, 28), now))

	// Jan 30 .. Feb 2 touches both declared ranges but fits neither.
	d := Resolve(p, nil, date(2026, time.January, 30), date(2026, time.February, 2), 2)
	assert.Equal(t, ReasonOutsideAvailability, d.Reason)

	// The availability end date is the last bookable night.
	d = Resolve(p, nil, date(2026, time.January, 29), date(2026, time.February, 1), 2)
	assert.True(t, d.Available)
}

func TestResolveBackToBackBookings(t *testing.T) {
	p := publishedProperty(t)
	open := []OpenStay{{Range: mustRange(t, date(2026, time.January, 5), date(2026, time.January, 8))}}

	d := Resolve(p, open, date(2026, time.January, 8), date(2026, time.January, 11), 2)
	assert.True(t, d.Available, "new check-in on existing checkout day must be allowed")
}

func TestResolveNilProperty(t *testing.T) {
	d := Resolve(nil, nil, date(2026, time.January, 5), date(2026, time.January, 8), 2)
	assert.Equal(t, ReasonNotPublished, d.Reason)
}

func TestReasonOf(t *testing.T) {
	d := Decision{Available: false, Reason: ReasonAlreadyBooked}
	reason, ok := ReasonOf(d.Err())
	require.True(t, ok)
	assert.Equal(t, ReasonAlreadyBooked, reason)

	_, ok = ReasonOf(assert.AnError)
	assert.False(t, ok)
}

func mustRange(t *testing.T, in, out time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}
