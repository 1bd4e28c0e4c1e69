package models

import (
	"encoding/json"
	"strings"
)

// WeekHours holds hours per day, index 0 is Monday
type WeekHours [7]float64

// Get returns the hours registered on day d
func (h WeekHours) Get(d Day) float64 {
	if !d.Valid() {
		return 0
	}
	return h[d-1]
}

// Total sums all seven days
func (h WeekHours) Total() float64 {
	var sum float64
	for _, v := range h {
		sum += v
	}
	return sum
}

func (h WeekHours) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Monday    float64 `json:"monday"`
		Tuesday   float64 `json:"tuesday"`
		Wednesday float64 `json:"wednesday"`
		Thursday  float64 `json:"thursday"`
		Friday    float64 `json:"friday"`
		Saturday  float64 `json:"saturday"`
		Sunday    float64 `json:"sunday"`
	}{h[0], h[1], h[2], h[3], h[4], h[5], h[6]})
}

// Line is one (job, task) row of a time sheet
type Line struct {
	// RowIndex is the server's 0-based row position. It shifts when rows
	// above it are deleted.
	RowIndex       int       `json:"-"`
	JobNumber      string    `json:"number"`
	Job            string    `json:"job"`
	Task           string    `json:"task"`
	// TaskName is the short task name rows are created with
	TaskName       string    `json:"-"`
	Hours          WeekHours `json:"week"`
	ApprovalStatus string    `json:"approval_status"`
}

// Matches compares job and task names case-insensitively
func (l Line) Matches(job, task string) bool {
	return strings.EqualFold(l.Job, job) && strings.EqualFold(l.Task, task)
}

// Approved reports whether the line has been approved
func (l Line) Approved() bool {
	return strings.EqualFold(l.ApprovalStatus, "approved")
}

// TimeSheet is one week (or half week) of registered hours
type TimeSheet struct {
	Lines      []Line     `json:"lines"`
	WeekNumber WeekNumber `json:"week_number"`
	// NeedsInitialization is set when the server has no time sheet for the
	// week yet and offers the create action instead.
	NeedsInitialization bool `json:"-"`
}

// FindLine returns the row index of the line for job and task
func (t *TimeSheet) FindLine(job, task string) (int, bool) {
	for i, line := range t.Lines {
		if line.Matches(job, task) {
			return i, true
		}
	}
	return 0, false
}

// FindLineByKey returns the row index of the line created for jobNumber and
// the short task name
func (t *TimeSheet) FindLineByKey(jobNumber, taskName string) (int, bool) {
	for i, line := range t.Lines {
		if line.JobNumber == jobNumber && line.TaskName == taskName {
			return i, true
		}
	}
	return 0, false
}

// DayTotals sums hours per day across the given lines
func DayTotals(lines []Line) WeekHours {
	var totals WeekHours
	for _, line := range lines {
		for i, v := range line.Hours {
			totals[i] += v
		}
	}
	return totals
}
