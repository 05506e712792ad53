package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staynest/internal/domain/booking"
	"staynest/internal/domain/pricing"
	domainproperty "staynest/internal/domain/property"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
)

func storedProperty(t *testing.T, id string) *domainproperty.Property {
	t.Helper()
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:    domainproperty.ID(id),
		Host:  "host-1",
		Title: "Lakeside cabin",
		Address: domainproperty.Address{
			Line1:   "12 Lake Road",
			City:    "Udaipur",
			Country: "India",
		},
		MaxGuests: 4,
		Pricing: domainproperty.PricingSchedule{
			BasePrice:         money.Rupees(4000),
			CleaningFee:       money.Rupees(600),
			ServiceFee:        money.Rupees(300),
			TaxRatePercent:    12,
			MinimumStayNights: 1,
		},
		Now: time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	prop.ClearEvents()
	return prop
}

func storedBooking(t *testing.T, id, propertyID string, status domainbooking.Status, checkIn, checkOut time.Time) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.ID(id),
		PropertyID: domainproperty.ID(propertyID),
		GuestID:    "guest-1",
		HostID:     "host-1",
		Range:      dr,
		Guests:     2,
		Price:      pricing.Breakdown{Total: money.Rupees(9000)},
		CreatedAt:  time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	b.Status = status
	b.ClearEvents()
	return b
}

func TestPropertySaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository()

	prop := storedProperty(t, "prop-1")
	require.NoError(t, repo.Save(ctx, prop))
	assert.Equal(t, int64(1), prop.Version)

	first, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)

	first.Title = "Lakeside cabin, renovated"
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Title = "Lakeside cabin, stale"
	err = repo.Save(ctx, second)
	require.ErrorIs(t, err, domainbooking.ErrConflict)

	current, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "Lakeside cabin, renovated", current.Title)
	assert.Equal(t, int64(2), current.Version)
}

func TestPropertyByIDReturnsIsolatedCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository()
	require.NoError(t, repo.Save(ctx, storedProperty(t, "prop-1")))

	loaded, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	loaded.Title = "mutated without saving"

	again, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "Lakeside cabin", again.Title)
}

func TestPropertyByIDUnknown(t *testing.T) {
	repo := NewPropertyRepository()
	_, err := repo.ByID(context.Background(), "missing")
	require.ErrorIs(t, err, domainproperty.ErrNotFound)
}

func TestBookingSaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

	b := storedBooking(t, "bk-1", "prop-1", domainbooking.StatusPending,
		time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, b))
	assert.Equal(t, int64(1), b.Version)

	first, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)

	first.Status = domainbooking.StatusConfirmed
	require.NoError(t, repo.Save(ctx, first))

	second.Status = domainbooking.StatusRejected
	err = repo.Save(ctx, second)
	require.ErrorIs(t, err, domainbooking.ErrConflict)

	current, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, current.Status)
}

func TestOpenOverlappingFiltersStatusAndRange(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}

	seed := []*domainbooking.Booking{
		storedBooking(t, "bk-pending", "prop-1", domainbooking.StatusPending, day(5), day(7)),
		storedBooking(t, "bk-confirmed", "prop-1", domainbooking.StatusConfirmed, day(7), day(10)),
		storedBooking(t, "bk-cancelled", "prop-1", domainbooking.StatusCancelledByGuest, day(5), day(8)),
		storedBooking(t, "bk-completed", "prop-1", domainbooking.StatusCompleted, day(5), day(8)),
		storedBooking(t, "bk-elsewhere", "prop-2", domainbooking.StatusPending, day(5), day(8)),
		storedBooking(t, "bk-later", "prop-1", domainbooking.StatusPending, day(10), day(13)),
	}
	for _, b := range seed {
		require.NoError(t, repo.Save(ctx, b))
	}

	stay, err := daterange.New(day(6), day(9))
	require.NoError(t, err)

	open, err := repo.OpenOverlapping(ctx, "prop-1", stay)
	require.NoError(t, err)
	require.Len(t, open, 2)
	ids := []domainbooking.ID{open[0].ID, open[1].ID}
	assert.ElementsMatch(t, []domainbooking.ID{"bk-pending", "bk-confirmed"}, ids)
}

func TestBookingSaveRejectsOverlappingOpenStay(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, repo.Save(ctx, storedBooking(t, "bk-1", "prop-1", domainbooking.StatusPending, day(5), day(8))))

	rival := storedBooking(t, "bk-2", "prop-1", domainbooking.StatusPending, day(7), day(9))
	require.ErrorIs(t, repo.Save(ctx, rival), domainbooking.ErrConflict)
	_, err := repo.ByID(ctx, "bk-2")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	backToBack := storedBooking(t, "bk-3", "prop-1", domainbooking.StatusPending, day(8), day(10))
	assert.NoError(t, repo.Save(ctx, backToBack))

	elsewhere := storedBooking(t, "bk-4", "prop-2", domainbooking.StatusConfirmed, day(5), day(8))
	assert.NoError(t, repo.Save(ctx, elsewhere))

	closed := storedBooking(t, "bk-5", "prop-1", domainbooking.StatusCancelledByGuest, day(5), day(8))
	assert.NoError(t, repo.Save(ctx, closed))

	held, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	held.Status = domainbooking.StatusCancelledByGuest
	require.NoError(t, repo.Save(ctx, held))

	retry := storedBooking(t, "bk-2", "prop-1", domainbooking.StatusPending, day(7), day(9))
	assert.NoError(t, repo.Save(ctx, retry))
}

func TestOpenOverlappingIgnoresBackToBack(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, repo.Save(ctx, storedBooking(t, "bk-1", "prop-1", domainbooking.StatusConfirmed, day(5), day(8))))

	stay, err := daterange.New(day(8), day(11))
	require.NoError(t, err)

	open, err := repo.OpenOverlapping(ctx, "prop-1", stay)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestSearchFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository()

	cheap := storedProperty(t, "prop-cheap")
	cheap.Pricing.BasePrice = money.Rupees(2000)
	require.NoError(t, cheap.Publish(time.Now()))
	cheap.ClearEvents()

	pricey := storedProperty(t, "prop-pricey")
	pricey.Pricing.BasePrice = money.Rupees(9000)
	require.NoError(t, pricey.Publish(time.Now()))
	pricey.ClearEvents()

	draft := storedProperty(t, "prop-draft")

	for _, p := range []*domainproperty.Property{cheap, pricey, draft} {
		require.NoError(t, repo.Save(ctx, p))
	}

	res, err := repo.Search(ctx, domainproperty.SearchParams{
		OnlyPublished: true,
		Sort:          domainproperty.SortByPriceAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, domainproperty.ID("prop-cheap"), res.Items[0].ID)
	assert.Equal(t, domainproperty.ID("prop-pricey"), res.Items[1].ID)

	res, err = repo.Search(ctx, domainproperty.SearchParams{
		OnlyPublished: true,
		PriceMin:      5000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, domainproperty.ID("prop-pricey"), res.Items[0].ID)

	res, err = repo.Search(ctx, domainproperty.SearchParams{
		City:          "udaipur",
		OnlyPublished: true,
		Sort:          domainproperty.SortByPriceDesc,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, domainproperty.ID("prop-pricey"), res.Items[0].ID)
}
