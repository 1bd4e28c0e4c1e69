package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// Column layout: line number, job, task, Monday..Sunday, total
const (
	colLine = iota
	colJob
	colTask
	colFirstDay
	colTotal = colFirstDay + 7
)

// RenderTimeSheet draws the sheet as a table. Lines without hours are hidden
// unless full is set; line numbers always match what `line delete` expects.
func RenderTimeSheet(sheet *models.TimeSheet, full bool) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))
	title := titleStyle.Render(fmt.Sprintf("Week %s (%s)", sheet.WeekNumber, FormatWeekRange(sheet.WeekNumber)))

	var shown []models.Line
	for _, line := range sheet.Lines {
		if full || line.Hours.Total() != 0 {
			shown = append(shown, line)
		}
	}

	if len(shown) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true)
		msg := "No hours registered"
		if sheet.NeedsInitialization {
			msg = "No time sheet has been created for this week yet"
		}
		return title + "\n" + emptyStyle.Render(msg) + "\n"
	}

	inWeek := map[models.Day]bool{}
	for _, d := range sheet.WeekNumber.Days() {
		inWeek[models.DayOf(d)] = true
	}

	headers := []string{"#", "Job", "Task"}
	for i, date := range sheet.WeekNumber.Dates() {
		headers = append(headers, fmt.Sprintf("%s %s", models.Day(i+1).Short(), date.Format("02/01")))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(shown)+1)
	for _, line := range shown {
		job := line.Job
		if line.Approved() {
			job += " ✓"
		}
		row := []string{strconv.Itoa(line.RowIndex + 1), job, line.Task}
		for _, hours := range line.Hours {
			row = append(row, formatHours(hours))
		}
		rows = append(rows, append(row, formatHours(line.Hours.Total())))
	}

	totals := models.DayTotals(shown)
	sum := []string{"", "Sum", ""}
	for _, hours := range totals {
		sum = append(sum, formatHours(hours))
	}
	rows = append(rows, append(sum, formatHours(totals.Total())))
	sumRow := len(rows) - 1

	approved := map[int]bool{}
	for i, line := range shown {
		approved[i] = line.Approved()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if col >= colFirstDay {
				style = style.Align(lipgloss.Right)
			}

			day := models.Day(col - colFirstDay + 1)
			if col >= colFirstDay && col < colTotal {
				if day == models.Saturday || day == models.Sunday {
					style = style.Background(lipgloss.Color(ColorWeekendBackground))
				}
				if !inWeek[day] {
					style = style.Foreground(lipgloss.Color(ColorDisabledText))
				}
			}

			switch {
			case row == table.HeaderRow:
				return style.Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
			case row == sumRow:
				return style.Bold(true).Foreground(lipgloss.Color(ColorPrimaryText))
			case approved[row] && col == colJob:
				return style.Foreground(lipgloss.Color(ColorSuccess))
			}
			return style
		})

	return title + "\n" + t.Render() + "\n"
}

// RenderJSON renders the sheet with every line, including empty ones
func RenderJSON(sheet *models.TimeSheet) (string, error) {
	out := *sheet
	if out.Lines == nil {
		out.Lines = []models.Line{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode time sheet")
	}
	return string(data) + "\n", nil
}

func formatHours(hours float64) string {
	if hours == 0 {
		return ""
	}
	s := strconv.FormatFloat(hours, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatWeekRange describes the dates a week covers, e.g. "11/11 - 17/11"
func FormatWeekRange(week models.WeekNumber) string {
	days := week.Days()
	if len(days) == 0 {
		return ""
	}
	return days[0].Format("02/01") + " - " + days[len(days)-1].Format("02/01")
}
