package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// WeekPart addresses one half of a week that straddles a month boundary.
// Maconomy keeps one time sheet per calendar month, so such weeks are split
// into an A part (Monday's month) and a B part (Sunday's month).
type WeekPart int

const (
	WeekPartWhole WeekPart = iota
	WeekPartA
	WeekPartB
)

func (p WeekPart) String() string {
	switch p {
	case WeekPartA:
		return "A"
	case WeekPartB:
		return "B"
	default:
		return ""
	}
}

// MarshalText renders the part the way it shows up in JSON output
func (p WeekPart) MarshalText() ([]byte, error) {
	switch p {
	case WeekPartA:
		return []byte("A"), nil
	case WeekPartB:
		return []byte("B"), nil
	default:
		return []byte("WHOLE"), nil
	}
}

// ParseWeekPart parses "A", "B" (any case) and "" / "WHOLE"
func ParseWeekPart(s string) (WeekPart, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "WHOLE":
		return WeekPartWhole, nil
	case "A":
		return WeekPartA, nil
	case "B":
		return WeekPartB, nil
	default:
		return WeekPartWhole, goerr.New("invalid week part, expected 'A' or 'B'", goerr.V("part", s))
	}
}

// WeekNumber is an ISO week, or half of one when its Monday and Sunday lie in
// different months.
type WeekNumber struct {
	Number int      `json:"number"`
	Part   WeekPart `json:"part"`
	Year   int      `json:"year"`
}

// WeekNumberOf returns the addressable week (or half week) containing date
func WeekNumberOf(date time.Time) WeekNumber {
	date = truncateToDay(date)
	year, week := date.ISOWeek()

	monday := isoWeekday(year, week, time.Monday)
	if !spansNewMonth(year, week) {
		return WeekNumber{Number: week, Part: WeekPartWhole, Year: year}
	}
	if date.Month() == monday.Month() {
		return WeekNumber{Number: week, Part: WeekPartA, Year: year}
	}
	return WeekNumber{Number: week, Part: WeekPartB, Year: year}
}

// NewWeekNumber validates the combination of number, part and ISO year.
// Whole is only valid for weeks within one month, A and B only for weeks
// spanning two.
func NewWeekNumber(number int, part WeekPart, year int) (WeekNumber, error) {
	if number < 1 || number > isoWeeksInYear(year) {
		return WeekNumber{}, goerr.New("invalid week number",
			goerr.V("week", number), goerr.V("year", year))
	}

	monday := isoWeekday(year, number, time.Monday)
	sunday := isoWeekday(year, number, time.Sunday)
	spans := monday.Month() != sunday.Month()

	switch {
	case spans && part == WeekPartWhole:
		return WeekNumber{}, goerr.New(fmt.Sprintf(
			"week part 'WHOLE' is not valid for week %d because it spans a new month (Monday is in month %d, Sunday is in month %d)",
			number, monday.Month(), sunday.Month()))
	case !spans && part != WeekPartWhole:
		return WeekNumber{}, goerr.New(fmt.Sprintf(
			"week part '%s' is not valid for week %d because it does not span a new month (both Monday and Sunday are in month %d)",
			part, number, monday.Month()))
	}

	return WeekNumber{Number: number, Part: part, Year: year}, nil
}

// FirstDay is the Monday for Whole and A weeks, and the first day of
// Sunday's month for B weeks.
func (w WeekNumber) FirstDay() time.Time {
	if w.Part == WeekPartB {
		sunday := isoWeekday(w.Year, w.Number, time.Sunday)
		return time.Date(sunday.Year(), sunday.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return isoWeekday(w.Year, w.Number, time.Monday)
}

// Dates returns Monday..Sunday of the full ISO week
func (w WeekNumber) Dates() [7]time.Time {
	var dates [7]time.Time
	monday := isoWeekday(w.Year, w.Number, time.Monday)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// Days returns only the dates addressed by this week or half week
func (w WeekNumber) Days() []time.Time {
	var days []time.Time
	for _, d := range w.Dates() {
		if WeekNumberOf(d) == w {
			days = append(days, d)
		}
	}
	return days
}

// Previous returns the chronologically preceding addressable week or half
func (w WeekNumber) Previous() WeekNumber {
	if w.Part == WeekPartB {
		return WeekNumber{Number: w.Number, Part: WeekPartA, Year: w.Year}
	}

	previous := w.FirstDay().AddDate(0, 0, -7)
	year, week := previous.ISOWeek()
	if spansNewMonth(year, week) {
		return WeekNumber{Number: week, Part: WeekPartB, Year: year}
	}
	return WeekNumber{Number: week, Part: WeekPartWhole, Year: year}
}

// String renders e.g. 2024W46, 2025W1A
func (w WeekNumber) String() string {
	return fmt.Sprintf("%dW%d%s", w.Year, w.Number, w.Part)
}

func spansNewMonth(year, week int) bool {
	return isoWeekday(year, week, time.Monday).Month() != isoWeekday(year, week, time.Sunday).Month()
}

// isoWeekday returns the given weekday of ISO week `week` in ISO year `year`
func isoWeekday(year, week int, day time.Weekday) time.Time {
	// January 4th is always in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	dayOffset := (int(day) + 6) % 7
	return monday.AddDate(0, 0, dayOffset)
}

func isoWeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
