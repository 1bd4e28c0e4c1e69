package parser

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

var (
	daySeparatorRegex = regexp.MustCompile(`[\s,]+`)
	dayItemRegex      = regexp.MustCompile(`^([a-zA-Z]{2,9})(?:-([a-zA-Z]{2,9}))?$`)
)

// ParseDays parses a day specification into a set of days
// Supported forms (comma and/or space separated):
// - day names or prefixes of at least two letters: "mon", "tu", "friday"
// - ranges: "mon-thu" (the first day must come before the second)
// e.g. "mon, wed-fri" -> {Mon, Wed, Thu, Fri}
func ParseDays(input string) (models.Days, error) {
	days := models.NewDays()

	input = strings.TrimSpace(input)
	if input == "" {
		return days, nil
	}

	for _, item := range daySeparatorRegex.Split(input, -1) {
		if item == "" {
			continue
		}

		matches := dayItemRegex.FindStringSubmatch(item)
		if matches == nil {
			return nil, goerr.New("failed to parse days", goerr.V("input", input), goerr.V("item", item))
		}

		start, err := models.ParseDay(matches[1])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse days", goerr.V("input", input))
		}

		if matches[2] == "" {
			days.Add(start)
			continue
		}

		end, err := models.ParseDay(matches[2])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse days", goerr.V("input", input))
		}

		rangeDays, err := daysInRange(start, end)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse days", goerr.V("input", input))
		}
		for _, d := range rangeDays {
			days.Add(d)
		}
	}

	return days, nil
}

// daysInRange expands start..end inclusive; wrapping around the week is not allowed
func daysInRange(start, end models.Day) ([]models.Day, error) {
	if start >= end {
		return nil, goerr.New("invalid range, the first day must come before the last",
			goerr.V("start", start.String()), goerr.V("end", end.String()))
	}

	var days []models.Day
	for d := start; d <= end; d++ {
		days = append(days, d)
	}
	return days, nil
}
