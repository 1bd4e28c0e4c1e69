package commands

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/maconomy-cli/maconomy/internal/models"
	"github.com/maconomy-cli/maconomy/internal/parser"
)

// weekFlags select the week a command works on
type weekFlags struct {
	week         string
	year         int
	previousWeek bool
}

// lineFlags select the line and days that set and clear change
type lineFlags struct {
	weekFlags
	job  string
	task string
	day  string
}

func addWeekFlags(cmd *cobra.Command, f *weekFlags) {
	cmd.Flags().StringVarP(&f.week, "week", "w", "", "Week number, e.g. 46 or 40B (default: current week)")
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "Year of --week (default: current year)")
	cmd.Flags().BoolVarP(&f.previousWeek, "previous-week", "p", false, "Use the week before the selected one")
}

func addLineFlags(cmd *cobra.Command, f *lineFlags) {
	cmd.Flags().StringVarP(&f.job, "job", "j", "", "Job name")
	cmd.Flags().StringVarP(&f.task, "task", "t", "", "Task name")
	cmd.Flags().StringVarP(&f.day, "day", "d", "", "Days, e.g. mon, wed-fri (default: today)")
	addWeekFlags(cmd, &f.weekFlags)
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("task")
}

// resolve returns the selected week. Without --week this is the week (or
// half week) containing now.
func (f weekFlags) resolve(now time.Time) (models.WeekNumber, error) {
	var week models.WeekNumber
	switch {
	case f.week != "":
		year := f.year
		if year == 0 {
			year = now.Year()
		}
		parsed, err := parser.ParseWeek(f.week, year)
		if err != nil {
			return models.WeekNumber{}, err
		}
		week = parsed
	case f.year != 0:
		return models.WeekNumber{}, goerr.New("--year can only be used together with --week", goerr.V("year", f.year))
	default:
		week = models.WeekNumberOf(now)
	}

	if f.previousWeek {
		week = week.Previous()
	}
	return week, nil
}

// resolve returns the week and days to change. With an explicit --week every
// day must lie in it; otherwise the half week is picked from the days.
func (f lineFlags) resolve(now time.Time) (models.WeekNumber, models.Days, error) {
	days := models.NewDays(models.DayOf(now))
	if f.day != "" {
		parsed, err := parser.ParseDays(f.day)
		if err != nil {
			return models.WeekNumber{}, nil, err
		}
		days = parsed
	}

	if f.week != "" || f.year != 0 {
		week, err := f.weekFlags.resolve(now)
		if err != nil {
			return models.WeekNumber{}, nil, err
		}
		dates := week.Dates()
		for _, d := range days.Sorted() {
			if models.WeekNumberOf(dates[d-1]) != week {
				return models.WeekNumber{}, nil, goerr.New(fmt.Sprintf("%s is not part of week %s", d, week),
					goerr.V("day", d.String()), goerr.V("week", week.String()))
			}
		}
		return week, days, nil
	}

	base := now
	if f.previousWeek {
		base = now.AddDate(0, 0, -7)
	}
	dates := models.WeekNumberOf(base).Dates()

	var week models.WeekNumber
	for i, d := range days.Sorted() {
		dayWeek := models.WeekNumberOf(dates[d-1])
		if i > 0 && dayWeek != week {
			return models.WeekNumber{}, nil, goerr.New(fmt.Sprintf(
				"the days span both halves of week %d. Register them separately using --week %dA and --week %dB",
				week.Number, week.Number, week.Number), goerr.V("days", days.String()))
		}
		week = dayWeek
	}
	if len(days) == 0 {
		week = models.WeekNumberOf(base)
	}
	return week, days, nil
}
