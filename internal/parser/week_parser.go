package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

var weekRegex = regexp.MustCompile(`^(\d{1,2})([a-zA-Z]?)$`)

// ParseWeek parses a week string such as "46", "1A" or "52b" and validates it
// against the given ISO year.
func ParseWeek(input string, year int) (models.WeekNumber, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.WeekNumber{}, goerr.New("week string cannot be empty")
	}

	matches := weekRegex.FindStringSubmatch(input)
	if matches == nil {
		return models.WeekNumber{}, goerr.New("failed to parse week, expected e.g. 46, 1A or 52B",
			goerr.V("week", input))
	}

	number, err := strconv.Atoi(matches[1])
	if err != nil {
		return models.WeekNumber{}, goerr.Wrap(err, "failed to parse week number", goerr.V("week", input))
	}

	part := models.WeekPartWhole
	if matches[2] != "" {
		part, err = models.ParseWeekPart(matches[2])
		if err != nil {
			return models.WeekNumber{}, err
		}
	}

	week, err := models.NewWeekNumber(number, part, year)
	if err != nil {
		return models.WeekNumber{}, goerr.Wrap(err, "invalid week", goerr.V("week", input), goerr.V("year", year))
	}
	return week, nil
}
