package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maconomy-cli/maconomy/internal/models"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		input    string
		expected []models.Day
	}{
		{"mon-thu", []models.Day{models.Monday, models.Tuesday, models.Wednesday, models.Thursday}},
		{"mon, mon-wed", []models.Day{models.Monday, models.Tuesday, models.Wednesday}},
		{"mon, wed-fri", []models.Day{models.Monday, models.Wednesday, models.Thursday, models.Friday}},
		{"tu th", []models.Day{models.Tuesday, models.Thursday}},
		{"Saturday,sunday", []models.Day{models.Saturday, models.Sunday}},
		{"", []models.Day{}},
		{"   ", []models.Day{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			days, err := ParseDays(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, days.Sorted())
		})
	}
}

func TestParseDaysRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"tue-mon", "mon-mon", "funday", "mon-", "m"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDays(input)
			assert.Error(t, err)
		})
	}
}

func TestParseWeek(t *testing.T) {
	week, err := ParseWeek("46", 2024)
	require.NoError(t, err)
	assert.Equal(t, models.WeekNumber{Number: 46, Part: models.WeekPartWhole, Year: 2024}, week)

	week, err = ParseWeek("1a", 2025)
	require.NoError(t, err)
	assert.Equal(t, models.WeekNumber{Number: 1, Part: models.WeekPartA, Year: 2025}, week)

	week, err = ParseWeek("1B", 2025)
	require.NoError(t, err)
	assert.Equal(t, models.WeekPartB, week.Part)
}

func TestParseWeekErrors(t *testing.T) {
	tests := map[string]string{
		"empty":              "",
		"bad part":           "12C",
		"not a number":       "abc",
		"whole across month": "1",
		"half within month":  "46A",
		"out of range":       "60",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWeek(input, 2025)
			assert.Error(t, err)
		})
	}
}

func TestParseLineNumber(t *testing.T) {
	line, err := ParseLineNumber("last")
	require.NoError(t, err)
	assert.True(t, line.IsLast())

	line, err = ParseLineNumber("2")
	require.NoError(t, err)
	row, err := line.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	_, err = ParseLineNumber("0")
	assert.Error(t, err)

	_, err = ParseLineNumber("two")
	assert.Error(t, err)
}
