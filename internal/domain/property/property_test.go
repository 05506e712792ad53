package property

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validSchedule() PricingSchedule {
	return PricingSchedule{
		BasePrice:         money.Rupees(2000),
		CleaningFee:       money.Rupees(500),
		TaxRatePercent:    18,
		MinimumStayNights: 1,
	}
}

func draftProperty(t *testing.T) *Property {
	t.Helper()
	p, err := New(CreateParams{
		ID:    "prop-1",
		Host:  "host-1",
		Title: "Orchard cottage",
		Address: Address{
			Line1:   "Orchard Lane",
			City:    "Manali",
			Country: "IN",
		},
		MaxGuests: 4,
		Pricing:   validSchedule(),
		Now:       date(2026, time.January, 1),
	})
	require.NoError(t, err)
	return p
}

func TestNewValidation(t *testing.T) {
	_, err := New(CreateParams{ID: "p", Host: "h", Title: "  ", MaxGuests: 2})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = New(CreateParams{ID: "p", Host: " ", Title: "x", MaxGuests: 2})
	assert.ErrorIs(t, err, ErrHostRequired)

	_, err = New(CreateParams{ID: "p", Host: "h", Title: "x", MaxGuests: 0})
	assert.ErrorIs(t, err, ErrMaxGuests)
}

func TestPublishRequiresAddressAndPricing(t *testing.T) {
	now := date(2026, time.January, 2)

	p, err := New(CreateParams{ID: "p", Host: "h", Title: "x", MaxGuests: 2, Now: now})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Publish(now), ErrAddressRequired)

	p.Address = Address{Line1: "1 Main St", City: "Goa", Country: "IN"}
	assert.ErrorIs(t, p.Publish(now), ErrPricingRequired)

	require.NoError(t, p.SetPricing(validSchedule(), now))
	require.NoError(t, p.Publish(now))
	assert.Equal(t, StatusPublished, p.Status)

	assert.ErrorIs(t, p.Publish(now), ErrInvalidState, "double publish")
	require.NoError(t, p.Unpublish(now))
	assert.Equal(t, StatusDraft, p.Status)
	assert.ErrorIs(t, p.Unpublish(now), ErrInvalidState)
}

func TestAddAvailabilityRejectsOverlap(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)

	require.NoError(t, p.AddAvailability(date(2026, time.March, 1), date(2026, time.March, 31), now))
	err := p.AddAvailability(date(2026, time.March, 31), date(2026, time.April, 15), now)
	assert.ErrorIs(t, err, ErrOverlappingRange, "inclusive end date overlaps a range starting that day")

	// The day after the inclusive end is free.
	require.NoError(t, p.AddAvailability(date(2026, time.April, 1), date(2026, time.April, 15), now))
	assert.Len(t, p.AvailabilityRanges, 2)
}

func TestRemoveAvailabilityExactMatchOnly(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)
	require.NoError(t, p.AddAvailability(date(2026, time.March, 1), date(2026, time.March, 31), now))

	err := p.RemoveAvailability(date(2026, time.March, 1), date(2026, time.March, 30), now)
	assert.ErrorIs(t, err, ErrRangeNotFound)

	require.NoError(t, p.RemoveAvailability(date(2026, time.March, 1), date(2026, time.March, 31), now))
	assert.Empty(t, p.AvailabilityRanges)
}

func TestBlockRejectsOverlappingBlocks(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)

	first := mustRange(t, date(2026, time.March, 10), date(2026, time.March, 15))
	require.NoError(t, p.Block(first, ReasonHostBlock, "hb-1", now))

	overlapping := mustRange(t, date(2026, time.March, 14), date(2026, time.March, 20))
	assert.ErrorIs(t, p.Block(overlapping, ReasonUpkeep, "hb-2", now), ErrOverlappingRange)

	adjacent := mustRange(t, date(2026, time.March, 15), date(2026, time.March, 20))
	require.NoError(t, p.Block(adjacent, ReasonUpkeep, "hb-3", now))
}

func TestBlockDefaultsToHostBlockReason(t *testing.T) {
	p := draftProperty(t)
	r := mustRange(t, date(2026, time.March, 10), date(2026, time.March, 15))
	require.NoError(t, p.Block(r, "", "hb-1", date(2026, time.January, 2)))
	require.Len(t, p.BlockedDates, 1)
	assert.Equal(t, ReasonHostBlock, p.BlockedDates[0].Reason)
}

func TestUnblockByReference(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)
	r := mustRange(t, date(2026, time.March, 10), date(2026, time.March, 15))
	require.NoError(t, p.Block(r, ReasonBooked, "booking-bk-1", now))

	assert.ErrorIs(t, p.Unblock("booking-other", now), ErrRangeNotFound)
	require.NoError(t, p.Unblock("booking-bk-1", now))
	assert.Empty(t, p.BlockedDates)
}

func TestUnblockRangeExactMatch(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)
	r := mustRange(t, date(2026, time.March, 10), date(2026, time.March, 15))
	require.NoError(t, p.Block(r, ReasonHostBlock, "hb-1", now))

	shorter := mustRange(t, date(2026, time.March, 10), date(2026, time.March, 14))
	assert.ErrorIs(t, p.UnblockRange(shorter, now), ErrRangeNotFound)
	require.NoError(t, p.UnblockRange(r, now))
	assert.Empty(t, p.BlockedDates)
}

func TestAttachPhotoEnforcesLimit(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)
	for i := 0; i < maxPhotos; i++ {
		require.NoError(t, p.AttachPhoto("https://cdn.example/p.jpg", now))
	}
	assert.ErrorIs(t, p.AttachPhoto("https://cdn.example/extra.jpg", now), ErrPhotoLimitExceeded)
}

func TestUpdateValidation(t *testing.T) {
	p := draftProperty(t)
	now := date(2026, time.January, 2)

	err := p.Update(UpdateParams{Title: " ", MaxGuests: 2}, now)
	assert.ErrorIs(t, err, ErrTitleRequired)

	require.NoError(t, p.Update(UpdateParams{
		Title:        "Renamed cottage",
		PropertyType: "cottage",
		Address:      p.Address,
		MaxGuests:    6,
	}, now))
	assert.Equal(t, "Renamed cottage", p.Title)
	assert.Equal(t, 6, p.MaxGuests)
}

func mustRange(t *testing.T, in, out time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}
