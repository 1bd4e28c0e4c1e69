package maconomy_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maconomy-cli/maconomy/internal/maconomy"
	"github.com/maconomy-cli/maconomy/internal/models"
)

func newRawServer(t *testing.T, handler http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

const sampleDocument = `{
  "meta": {"containerName": "timeregistration", "containerInstanceId": "e9dcec2c-ba66-4b4b-a970-162455905253"},
  "panes": {
    "card": {
      "meta": {"paneName": "card", "rowCount": 1, "rowOffset": 0},
      "records": [{"data": {
        "employeenumber": "12345",
        "periodstartvar": "2024-10-21",
        "periodendvar": "2024-10-27",
        "employeenamevar": "John Smith",
        "datevar": "2024-10-24",
        "weeknumbervar": 43,
        "partvar": "",
        "fixednumberday1var": 8
      }}]
    },
    "table": {
      "meta": {"paneName": "table", "rowCount": 2, "rowOffset": 0},
      "records": [
        {"data": {"jobnumber": "ABC123", "numberday1": 8, "numberday2": 0, "numberday3": 0, "numberday4": 0,
          "numberday5": 0, "numberday6": 0, "numberday7": 0, "entrytext": "Some task one", "taskname": "300",
          "approvalstatus": "", "instancekey": "1579ecb8", "timeregistrationunit": "hours",
          "jobnamevar": "Job One", "tasktextvar": "Some task one"}},
        {"data": {"jobnumber": "DEF456", "numberday1": 0, "numberday2": 0, "numberday3": 0, "numberday4": 0,
          "numberday5": 2.5, "numberday6": 0, "numberday7": 0, "entrytext": "Job Two", "taskname": "Some task two",
          "approvalstatus": "approved", "instancekey": "265123e0", "timeregistrationunit": "hours",
          "jobnamevar": "Job Two", "tasktextvar": "Some task two"}}
      ]
    }
  }
}`

func TestDocumentTimeSheet(t *testing.T) {
	var doc maconomy.Document
	require.NoError(t, json.Unmarshal([]byte(sampleDocument), &doc))

	sheet, err := doc.TimeSheet()
	require.NoError(t, err)

	assert.Equal(t, models.WeekNumber{Number: 43, Part: models.WeekPartWhole, Year: 2024}, sheet.WeekNumber)
	assert.False(t, sheet.NeedsInitialization)
	require.Len(t, sheet.Lines, 2)

	second := sheet.Lines[1]
	assert.Equal(t, 1, second.RowIndex)
	assert.Equal(t, "DEF456", second.JobNumber)
	assert.Equal(t, "Job Two", second.Job)
	assert.Equal(t, "Some task two", second.Task)
	assert.Equal(t, 2.5, second.Hours.Get(models.Friday))
	assert.True(t, second.Approved())
}

func TestDocumentNeedsInitialization(t *testing.T) {
	var doc maconomy.Document
	require.NoError(t, json.Unmarshal([]byte(sampleDocument), &doc))
	doc.Panes.Card.Links = map[string]maconomy.Link{
		"action:createtimesheet": {Rel: "action:createtimesheet", Href: "https://example.com/action"},
	}

	sheet, err := doc.TimeSheet()
	require.NoError(t, err)
	assert.True(t, sheet.NeedsInitialization)
}

func TestDocumentYearFromISOWeek(t *testing.T) {
	var doc maconomy.Document
	require.NoError(t, json.Unmarshal([]byte(sampleDocument), &doc))
	// 2024-12-30 belongs to ISO week 1 of 2025, in the A half
	doc.Panes.Card.Records[0].Data.Date = "2024-12-30"
	doc.Panes.Card.Records[0].Data.WeekNumber = 1
	doc.Panes.Card.Records[0].Data.Part = "A"

	sheet, err := doc.TimeSheet()
	require.NoError(t, err)
	assert.Equal(t, models.WeekNumber{Number: 1, Part: models.WeekPartA, Year: 2025}, sheet.WeekNumber)
}

func TestDocumentErrors(t *testing.T) {
	var empty maconomy.Document
	_, err := empty.TimeSheet()
	assert.Error(t, err)

	var doc maconomy.Document
	require.NoError(t, json.Unmarshal([]byte(sampleDocument), &doc))
	doc.Panes.Card.Records[0].Data.Date = "24/10/2024"
	_, err = doc.TimeSheet()
	assert.Error(t, err)
}
