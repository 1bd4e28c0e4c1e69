package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := map[string]Day{
		"mon":       Monday,
		"Tu":        Tuesday,
		"wednesday": Wednesday,
		"th":        Thursday,
		"FRI":       Friday,
		"sa":        Saturday,
		"sun":       Sunday,
	}

	for input, expected := range tests {
		day, err := ParseDay(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, day, input)
	}

	for _, input := range []string{"", "m", "x", "mondays"} {
		_, err := ParseDay(input)
		assert.Error(t, err, input)
	}
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, Monday, DayOf(date(t, "2024-11-11")))
	assert.Equal(t, Sunday, DayOf(date(t, "2024-11-17")))
}

func TestDayFieldName(t *testing.T) {
	assert.Equal(t, "numberday1", Monday.FieldName())
	assert.Equal(t, "numberday7", Sunday.FieldName())
}

func TestDaysSet(t *testing.T) {
	days := NewDays(Wednesday, Monday, Wednesday)
	assert.Len(t, days, 2)
	assert.True(t, days.Contains(Monday))
	assert.False(t, days.Contains(Tuesday))
	assert.Equal(t, []Day{Monday, Wednesday}, days.Sorted())
	assert.Equal(t, "Mon, Wed", days.String())
}
