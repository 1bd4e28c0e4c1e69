package maconomy

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// Document is the timeregistration container data returned by most instance calls
type Document struct {
	Meta  DocumentMeta `json:"meta"`
	Panes Panes        `json:"panes"`
}

type DocumentMeta struct {
	ContainerName       string `json:"containerName"`
	ContainerInstanceID string `json:"containerInstanceId"`
}

type Panes struct {
	Card  CardPane  `json:"card"`
	Table TablePane `json:"table"`
}

type PaneMeta struct {
	PaneName  string `json:"paneName"`
	RowCount  int    `json:"rowCount"`
	RowOffset int    `json:"rowOffset"`
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type CardPane struct {
	Meta    PaneMeta        `json:"meta"`
	Links   map[string]Link `json:"links"`
	Records []CardRecord    `json:"records"`
}

type CardRecord struct {
	Data CardData `json:"data"`
}

// CardData is the week header of the time sheet
type CardData struct {
	EmployeeNumber string `json:"employeenumber"`
	EmployeeName   string `json:"employeenamevar"`
	PeriodStart    string `json:"periodstartvar"`
	PeriodEnd      string `json:"periodendvar"`
	Date           string `json:"datevar"`
	WeekNumber     int    `json:"weeknumbervar"`
	Part           string `json:"partvar"`
}

type TablePane struct {
	Meta    PaneMeta      `json:"meta"`
	Records []TableRecord `json:"records"`
}

type TableRecord struct {
	Data TableData `json:"data"`
}

// TableData is one time sheet row. JobName and TaskText are the long,
// user-facing names; TaskName is the short name used when creating rows.
type TableData struct {
	JobNumber            string  `json:"jobnumber"`
	NumberDay1           float64 `json:"numberday1"`
	NumberDay2           float64 `json:"numberday2"`
	NumberDay3           float64 `json:"numberday3"`
	NumberDay4           float64 `json:"numberday4"`
	NumberDay5           float64 `json:"numberday5"`
	NumberDay6           float64 `json:"numberday6"`
	NumberDay7           float64 `json:"numberday7"`
	EntryText            string  `json:"entrytext"`
	TaskName             string  `json:"taskname"`
	ApprovalStatus       string  `json:"approvalstatus"`
	InstanceKey          string  `json:"instancekey"`
	TimeRegistrationUnit string  `json:"timeregistrationunit"`
	JobName              string  `json:"jobnamevar"`
	TaskText             string  `json:"tasktextvar"`
}

const createTimeSheetLink = "action:createtimesheet"

// NeedsInitialization reports whether the server offers to create a time
// sheet for the current week, meaning none exists yet.
func (d *Document) NeedsInitialization() bool {
	_, ok := d.Panes.Card.Links[createTimeSheetLink]
	return ok
}

// TimeSheet converts the document into the domain time sheet
func (d *Document) TimeSheet() (*models.TimeSheet, error) {
	if len(d.Panes.Card.Records) == 0 {
		return nil, goerr.New("time registration contains no card records")
	}
	card := d.Panes.Card.Records[0].Data

	week, err := card.week()
	if err != nil {
		return nil, err
	}

	lines := make([]models.Line, 0, len(d.Panes.Table.Records))
	for i, record := range d.Panes.Table.Records {
		lines = append(lines, record.Data.line(i))
	}

	return &models.TimeSheet{
		Lines:               lines,
		WeekNumber:          week,
		NeedsInitialization: d.NeedsInitialization(),
	}, nil
}

func (c CardData) week() (models.WeekNumber, error) {
	date, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return models.WeekNumber{}, goerr.Wrap(err, "datevar should be in YYYY-MM-DD format", goerr.V("datevar", c.Date))
	}
	year, _ := date.ISOWeek()

	part, err := models.ParseWeekPart(c.Part)
	if err != nil {
		part = models.WeekPartWhole
	}

	week, err := models.NewWeekNumber(c.WeekNumber, part, year)
	if err != nil {
		return models.WeekNumber{}, goerr.Wrap(err, "time registration has an invalid week",
			goerr.V("weeknumbervar", c.WeekNumber), goerr.V("partvar", c.Part), goerr.V("datevar", c.Date))
	}
	return week, nil
}

func (t TableData) line(row int) models.Line {
	return models.Line{
		RowIndex:  row,
		JobNumber: t.JobNumber,
		Job:       t.JobName,
		Task:      t.TaskText,
		TaskName:  t.TaskName,
		Hours: models.WeekHours{
			t.NumberDay1, t.NumberDay2, t.NumberDay3, t.NumberDay4,
			t.NumberDay5, t.NumberDay6, t.NumberDay7,
		},
		ApprovalStatus: t.ApprovalStatus,
	}
}

// SearchResponse is the envelope of foreign key searches
type SearchResponse[T any] struct {
	Panes struct {
		Filter struct {
			Meta    PaneMeta `json:"meta"`
			Records []struct {
				Data T `json:"data"`
			} `json:"records"`
		} `json:"filter"`
	} `json:"panes"`
}

type JobRecord struct {
	JobNumber string `json:"jobnumber"`
}

// Task is a task of a job. Description is the long name users know;
// Name is the short name row creation needs.
type Task struct {
	Name        string `json:"taskname"`
	TaskList    string `json:"tasklist"`
	Description string `json:"description"`
}

// instanceFields lists the fields requested when acquiring an instance
var instanceFields = map[string]any{
	"panes": map[string]any{
		"card": map[string]any{
			"fields": []string{
				"employeenumber", "employeenamevar", "periodstartvar", "periodendvar",
				"datevar", "weeknumbervar", "partvar",
			},
		},
		"table": map[string]any{
			"fields": []string{
				"jobnumber", "numberday1", "numberday2", "numberday3", "numberday4",
				"numberday5", "numberday6", "numberday7", "entrytext", "taskname",
				"approvalstatus", "instancekey", "timeregistrationunit", "jobnamevar", "tasktextvar",
			},
		},
	},
}
