package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Reference date for all resolver tests: Wednesday 2025-09-03.
var ref = day(2025, time.September, 3)

func newTestResolver() *Resolver {
	return NewResolver(NewCalendar(nil), zap.NewNop())
}

func TestResolveSingleDates(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"day-month-year", "25/12/2025", day(2025, time.December, 25)},
		{"year-month-day", "2025-12-25", day(2025, time.December, 25)},
		{"day-month current year", "5/10", day(2025, time.October, 5)},
		{"today", "today", day(2025, time.September, 3)},
		{"tomorrow", "tomorrow", day(2025, time.September, 4)},
		{"day after tomorrow", "day after tomorrow", day(2025, time.September, 5)},
		{"yesterday", "yesterday", day(2025, time.September, 2)},
		{"day before yesterday", "day before yesterday", day(2025, time.September, 1)},
		{"bare weekday is next occurrence", "monday", day(2025, time.September, 8)},
		{"next weekday", "next friday", day(2025, time.September, 5)},
		{"same weekday rolls a week forward", "wednesday", day(2025, time.September, 10)},
		{"last weekday", "last friday", day(2025, time.August, 29)},
		{"last same weekday rolls a week back", "last wednesday", day(2025, time.August, 27)},
		{"next week weekday", "next week monday", day(2025, time.September, 15)},
		{"last week weekday", "last week friday", day(2025, time.August, 29)},
		{"days from now", "3 days from now", day(2025, time.September, 6)},
		{"days ago", "2 days ago", day(2025, time.September, 1)},
		{"month name", "dec 25", day(2025, time.December, 25)},
		{"day month year words", "25 dec 2025", day(2025, time.December, 25)},
		{"noise words are ignored", "i want to apply el for 25/12/2025", day(2025, time.December, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveRangeInclusive(tt.text, ref)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestResolveUnparseableReturnsEmpty(t *testing.T) {
	r := newTestResolver()

	for _, text := range []string{"", "   ", "gibberish"} {
		assert.Empty(t, r.ResolveRangeInclusive(text, ref), "text=%q", text)
	}
}

func TestResolvePastMonthNameDiscarded(t *testing.T) {
	r := newTestResolver()

	// January is before the September reference; without a year the date is
	// dropped rather than rolled to next year.
	assert.Empty(t, r.ResolveRangeInclusive("jan 5 pls", ref))
}

func TestResolveRangeInclusive(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name string
		text string
		want []time.Time
	}{
		{
			"weekday range over a weekend",
			"friday to monday",
			[]time.Time{
				day(2025, time.September, 5),
				day(2025, time.September, 6),
				day(2025, time.September, 7),
				day(2025, time.September, 8),
			},
		},
		{
			"numeric range",
			"25/12/2025 to 28/12/2025",
			[]time.Time{
				day(2025, time.December, 25),
				day(2025, time.December, 26),
				day(2025, time.December, 27),
				day(2025, time.December, 28),
			},
		},
		{
			"dash range",
			"5/10-7/10",
			[]time.Time{
				day(2025, time.October, 5),
				day(2025, time.October, 6),
				day(2025, time.October, 7),
			},
		},
		{
			"range embedded in a sentence",
			"apply el from 25/12/2025 to 29/12/2025",
			[]time.Time{
				day(2025, time.December, 25),
				day(2025, time.December, 26),
				day(2025, time.December, 27),
				day(2025, time.December, 28),
				day(2025, time.December, 29),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveRangeInclusive(tt.text, ref))
		})
	}
}

func TestResolveRangeWorkdaysOnly(t *testing.T) {
	r := newTestResolver()

	// Saturday and Sunday fall out of the expansion.
	got := r.ResolveRangeWorkdaysOnly("friday to monday", ref)
	want := []time.Time{
		day(2025, time.September, 5),
		day(2025, time.September, 8),
	}
	assert.Equal(t, want, got)

	// Thu 25 Dec and Fri 26 Dec survive, the weekend does not.
	got = r.ResolveRangeWorkdaysOnly("25/12/2025 to 28/12/2025", ref)
	want = []time.Time{
		day(2025, time.December, 25),
		day(2025, time.December, 26),
	}
	assert.Equal(t, want, got)
}

func TestResolveDeduplicatesAndSorts(t *testing.T) {
	r := newTestResolver()

	got := r.ResolveRangeInclusive("26/12/2025 and 25/12/2025 and 25/12/2025", ref)
	want := []time.Time{
		day(2025, time.December, 25),
		day(2025, time.December, 26),
	}
	assert.Equal(t, want, got)
}
