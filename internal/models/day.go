package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Day is a weekday numbered the way Maconomy numbers its numberday1..7 fields
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// AllDays lists Monday through Sunday in order
var AllDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay accepts a full day name or any prefix of at least two letters
func ParseDay(s string) (Day, error) {
	prefix := strings.ToLower(strings.TrimSpace(s))
	if len(prefix) >= 2 {
		for i, name := range dayNames {
			if strings.HasPrefix(name, prefix) {
				return Day(i + 1), nil
			}
		}
	}
	return 0, goerr.New("unrecognized day", goerr.V("day", s))
}

// DayOf maps a date to its weekday
func DayOf(t time.Time) Day {
	return Day((int(t.Weekday())+6)%7 + 1)
}

// Valid reports whether d is one of Monday..Sunday
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// FieldName is the Maconomy table field holding hours for this day
func (d Day) FieldName() string {
	return fmt.Sprintf("numberday%d", int(d))
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	name := dayNames[d-1]
	return strings.ToUpper(name[:1]) + name[1:]
}

// Short returns a three letter abbreviation, e.g. "Mon"
func (d Day) Short() string {
	return d.String()[:3]
}

// Days is an unordered set of weekdays
type Days map[Day]struct{}

// NewDays builds a set from the given days, dropping duplicates
func NewDays(days ...Day) Days {
	set := make(Days, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

func (s Days) Add(d Day) {
	s[d] = struct{}{}
}

func (s Days) Contains(d Day) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days Monday first
func (s Days) Sorted() []Day {
	days := make([]Day, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func (s Days) String() string {
	names := make([]string, 0, len(s))
	for _, d := range s.Sorted() {
		names = append(names, d.Short())
	}
	return strings.Join(names, ", ")
}
