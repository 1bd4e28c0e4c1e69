package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestWeekNumberFirstDay(t *testing.T) {
	tests := []struct {
		week     WeekNumber
		expected string
	}{
		{WeekNumber{Number: 46, Part: WeekPartWhole, Year: 2024}, "2024-11-11"},
		{WeekNumber{Number: 1, Part: WeekPartA, Year: 2030}, "2029-12-31"},
		{WeekNumber{Number: 23, Part: WeekPartWhole, Year: 2028}, "2028-06-05"},
		{WeekNumber{Number: 1, Part: WeekPartB, Year: 2025}, "2025-01-01"},
		{WeekNumber{Number: 53, Part: WeekPartB, Year: 2026}, "2027-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.week.String(), func(t *testing.T) {
			assert.Equal(t, date(t, tt.expected), tt.week.FirstDay())
		})
	}
}

func TestWeekNumberOf(t *testing.T) {
	tests := []struct {
		date     string
		expected WeekNumber
	}{
		{"2024-11-11", WeekNumber{Number: 46, Part: WeekPartWhole, Year: 2024}},
		{"2029-12-31", WeekNumber{Number: 1, Part: WeekPartA, Year: 2030}},
		{"2028-06-05", WeekNumber{Number: 23, Part: WeekPartWhole, Year: 2028}},

		// year transitions
		{"2022-12-31", WeekNumber{Number: 52, Part: WeekPartA, Year: 2022}},
		{"2023-01-01", WeekNumber{Number: 52, Part: WeekPartB, Year: 2022}},
		{"2023-12-31", WeekNumber{Number: 52, Part: WeekPartWhole, Year: 2023}},
		{"2024-01-01", WeekNumber{Number: 1, Part: WeekPartWhole, Year: 2024}},
		{"2024-12-31", WeekNumber{Number: 1, Part: WeekPartA, Year: 2025}},
		{"2025-01-01", WeekNumber{Number: 1, Part: WeekPartB, Year: 2025}},
		{"2025-12-31", WeekNumber{Number: 1, Part: WeekPartA, Year: 2026}},
		{"2026-01-01", WeekNumber{Number: 1, Part: WeekPartB, Year: 2026}},
		{"2026-12-31", WeekNumber{Number: 53, Part: WeekPartA, Year: 2026}},
		{"2027-01-01", WeekNumber{Number: 53, Part: WeekPartB, Year: 2026}},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeekNumberOf(date(t, tt.date)))
		})
	}
}

func TestWeekNumberOfContainsDate(t *testing.T) {
	start := date(t, "2023-11-20")
	for i := 0; i < 900; i++ {
		d := start.AddDate(0, 0, i)
		week := WeekNumberOf(d)
		first := week.FirstDay()

		assert.False(t, d.Before(first), "%s starts after %s", week, d)
		assert.False(t, d.After(first.AddDate(0, 0, 6)), "%s ends before %s", week, d)
		assert.Contains(t, week.Days(), d)

		_, err := NewWeekNumber(week.Number, week.Part, week.Year)
		assert.NoError(t, err, "derived week %s must be constructible", week)
	}
}

func TestHalfWeekDaysAreSubsetOfISOWeek(t *testing.T) {
	week := WeekNumber{Number: 1, Part: WeekPartA, Year: 2025}
	dates := week.Dates()

	a := week.Days()
	b := WeekNumber{Number: 1, Part: WeekPartB, Year: 2025}.Days()

	assert.Len(t, a, 2)
	assert.Len(t, b, 5)
	for _, d := range append(a, b...) {
		assert.Contains(t, dates[:], d)
	}
}

func TestNewWeekNumber(t *testing.T) {
	t.Run("whole week within a month", func(t *testing.T) {
		week, err := NewWeekNumber(46, WeekPartWhole, 2024)
		require.NoError(t, err)
		assert.Equal(t, WeekNumber{Number: 46, Part: WeekPartWhole, Year: 2024}, week)
	})

	t.Run("rejects whole for week spanning two months", func(t *testing.T) {
		_, err := NewWeekNumber(1, WeekPartWhole, 2025)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "spans a new month")
	})

	t.Run("rejects halves for week within a month", func(t *testing.T) {
		for _, part := range []WeekPart{WeekPartA, WeekPartB} {
			_, err := NewWeekNumber(46, part, 2024)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not span a new month")
		}
	})

	t.Run("accepts halves for week spanning two months", func(t *testing.T) {
		for _, part := range []WeekPart{WeekPartA, WeekPartB} {
			_, err := NewWeekNumber(1, part, 2025)
			assert.NoError(t, err)
		}
	})

	t.Run("rejects out of range week numbers", func(t *testing.T) {
		_, err := NewWeekNumber(0, WeekPartWhole, 2024)
		assert.Error(t, err)
		_, err = NewWeekNumber(53, WeekPartWhole, 2024)
		assert.Error(t, err)
		_, err = NewWeekNumber(53, WeekPartA, 2026)
		assert.NoError(t, err)
	})

	t.Run("validity matches month boundaries for every week", func(t *testing.T) {
		for year := 2022; year <= 2030; year++ {
			for number := 1; number <= isoWeeksInYear(year); number++ {
				dates := (WeekNumber{Number: number, Year: year}).Dates()
				spans := dates[0].Month() != dates[6].Month()

				_, wholeErr := NewWeekNumber(number, WeekPartWhole, year)
				_, aErr := NewWeekNumber(number, WeekPartA, year)
				_, bErr := NewWeekNumber(number, WeekPartB, year)

				assert.Equal(t, spans, wholeErr != nil, "%dW%d whole", year, number)
				assert.Equal(t, !spans, aErr != nil, "%dW%d A", year, number)
				assert.Equal(t, !spans, bErr != nil, "%dW%d B", year, number)
			}
		}
	})
}

func TestWeekNumberPrevious(t *testing.T) {
	tests := []struct {
		current  WeekNumber
		expected WeekNumber
	}{
		// B -> A of the same week
		{WeekNumber{1, WeekPartB, 2025}, WeekNumber{1, WeekPartA, 2025}},
		{WeekNumber{52, WeekPartB, 2022}, WeekNumber{52, WeekPartA, 2022}},
		{WeekNumber{53, WeekPartB, 2026}, WeekNumber{53, WeekPartA, 2026}},

		// A -> previous week
		{WeekNumber{1, WeekPartA, 2025}, WeekNumber{52, WeekPartWhole, 2024}},
		{WeekNumber{1, WeekPartA, 2026}, WeekNumber{52, WeekPartWhole, 2025}},

		// Whole -> previous week
		{WeekNumber{46, WeekPartWhole, 2024}, WeekNumber{45, WeekPartWhole, 2024}},
		{WeekNumber{2, WeekPartWhole, 2024}, WeekNumber{1, WeekPartWhole, 2024}},
		{WeekNumber{1, WeekPartWhole, 2024}, WeekNumber{52, WeekPartWhole, 2023}},
		{WeekNumber{2, WeekPartWhole, 2026}, WeekNumber{1, WeekPartB, 2026}},
	}

	for _, tt := range tests {
		t.Run(tt.current.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.current.Previous())
		})
	}
}

func TestWeekNumberPreviousIsContiguous(t *testing.T) {
	week := WeekNumber{Number: 10, Part: WeekPartWhole, Year: 2027}

	for i := 0; i < 160; i++ {
		previous := week.Previous()
		previousDays := previous.Days()
		require.NotEmpty(t, previousDays)

		lastOfPrevious := previousDays[len(previousDays)-1]
		assert.Equal(t, week.Days()[0], lastOfPrevious.AddDate(0, 0, 1),
			"%s should end right before %s", previous, week)
		week = previous
	}
}

func TestWeekNumberPreviousReachesPriorYear(t *testing.T) {
	week := WeekNumber{Number: 10, Part: WeekPartWhole, Year: 2024}
	for i := 0; i < 52; i++ {
		week = week.Previous()
	}
	assert.Equal(t, 2023, week.Year)
}

func TestWeekNumberString(t *testing.T) {
	assert.Equal(t, "2024W46", WeekNumber{46, WeekPartWhole, 2024}.String())
	assert.Equal(t, "2025W1A", WeekNumber{1, WeekPartA, 2025}.String())
	assert.Equal(t, "2025W1B", WeekNumber{1, WeekPartB, 2025}.String())
}

func TestParseWeekPart(t *testing.T) {
	part, err := ParseWeekPart("b")
	require.NoError(t, err)
	assert.Equal(t, WeekPartB, part)

	part, err = ParseWeekPart("")
	require.NoError(t, err)
	assert.Equal(t, WeekPartWhole, part)

	_, err = ParseWeekPart("C")
	assert.Error(t, err)
}
