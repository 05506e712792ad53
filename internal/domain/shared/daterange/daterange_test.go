package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesToUTCMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	dr, err := New(
		time.Date(2026, time.January, 5, 14, 30, 0, 0, loc),
		time.Date(2026, time.January, 8, 9, 0, 0, 0, loc),
	)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.January, 5), dr.CheckIn)
	assert.Equal(t, date(2026, time.January, 8), dr.CheckOut)
	assert.Equal(t, 3, dr.Nights())
}

func TestNewRejectsInvertedAndZeroLengthRanges(t *testing.T) {
	_, err := New(date(2026, time.January, 8), date(2026, time.January, 5))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2026, time.January, 5), date(2026, time.January, 5))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOverlapsHalfOpen(t *testing.T) {
	base, err := New(date(2026, time.January, 10), date(2026, time.January, 15))
	require.NoError(t, err)

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{"identical", date(2026, time.January, 10), date(2026, time.January, 15), true},
		{"contained", date(2026, time.January, 11), date(2026, time.January, 13), true},
		{"straddles start", date(2026, time.January, 8), date(2026, time.January, 11), true},
		{"straddles end", date(2026, time.January, 14), date(2026, time.January, 17), true},
		{"back to back before", date(2026, time.January, 5), date(2026, time.January, 10), false},
		{"back to back after", date(2026, time.January, 15), date(2026, time.January, 20), false},
		{"disjoint", date(2026, time.February, 1), date(2026, time.February, 3), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.checkIn, tc.checkOut)
			require.NoError(t, err)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestContainsAndContainsDate(t *testing.T) {
	dr, err := New(date(2026, time.March, 1), date(2026, time.March, 10))
	require.NoError(t, err)

	inner, err := New(date(2026, time.March, 3), date(2026, time.March, 10))
	require.NoError(t, err)
	assert.True(t, dr.Contains(inner))
	assert.False(t, inner.Contains(dr))

	assert.True(t, dr.ContainsDate(date(2026, time.March, 1)))
	assert.True(t, dr.ContainsDate(date(2026, time.March, 9)))
	assert.False(t, dr.ContainsDate(date(2026, time.March, 10)), "checkout day is not occupied")
}

func TestFromInclusiveAddsOneDay(t *testing.T) {
	dr, err := FromInclusive(date(2026, time.April, 1), date(2026, time.April, 30))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.April, 1), dr.CheckIn)
	assert.Equal(t, date(2026, time.May, 1), dr.CheckOut)
	assert.Equal(t, date(2026, time.April, 30), dr.LastNight())
}

func TestAdjacent(t *testing.T) {
	a, err := New(date(2026, time.May, 1), date(2026, time.May, 5))
	require.NoError(t, err)
	b, err := New(date(2026, time.May, 5), date(2026, time.May, 9))
	require.NoError(t, err)

	assert.True(t, a.Adjacent(b))
	assert.True(t, b.Adjacent(a))
	assert.False(t, a.Overlaps(b))
}
