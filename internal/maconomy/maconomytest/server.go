// Package maconomytest provides an in-memory Maconomy timeregistration
// server for tests.
package maconomytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maconomy-cli/maconomy/internal/models"
)

const tokenHeader = "Maconomy-Concurrency-Control"

type Task struct {
	Name        string
	Description string
}

type Job struct {
	Number string
	Name   string
	Tasks  []Task
}

type Row struct {
	JobNumber      string
	TaskName       string
	Hours          [7]float64
	ApprovalStatus string
}

// Call records one request as the server saw it
type Call struct {
	Method string
	Path   string
	Body   string
	// Sent is the concurrency control token the client sent
	Sent string
	// Issued is the token returned in the response
	Issued string
}

// Server keeps one time sheet per week (or half week) and enforces the
// concurrency control token on every instance request.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	jobs        []Job
	token       string
	instanceID  string
	date        time.Time
	sheets      map[string][]Row
	initialized map[string]bool
	submitted   map[string]bool
	calls       []Call

	// FailCreateRowUninitialized makes the next N row creations report an
	// uninitialized week even if it was initialized.
	FailCreateRowUninitialized int
}

// NewServer starts a server whose current date is today
func NewServer(jobs ...Job) *Server {
	s := &Server{
		jobs:        jobs,
		date:        time.Now(),
		sheets:      map[string][]Row{},
		initialized: map[string]bool{},
		submitted:   map[string]bool{},
	}

	r := chi.NewRouter()
	r.Route("/containers/{company}/timeregistration", func(r chi.Router) {
		r.Post("/instances", s.handleAcquire)
		r.Route("/instances/{id}", func(r chi.Router) {
			r.Use(s.requireToken)
			r.Post("/data;any", s.handleFetch)
			r.Post("/data/panes/card/0", s.handleAdvance)
			r.Post("/data/panes/card/0/action;name=createtimesheet", s.handleCreateTimeSheet)
			r.Post("/data/panes/card/0/action;name=submittimesheet", s.handleSubmit)
			r.Post("/data/panes/table/", s.handleCreateRow)
			r.Post("/data/panes/table/{row}", s.handleSetFields)
			r.Delete("/data/panes/table/{row}", s.handleDeleteRow)
		})
		r.Post("/search/table;foreignkey=notblockedjobnumber_jobheader", s.handleJobSearch)
		r.Post("/search/table;foreignkey=taskname_tasklistline", s.handleTaskSearch)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// InitializeWeek creates the time sheet of the week containing date
func (s *Server) InitializeWeek(date time.Time, rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := weekKey(date)
	s.initialized[key] = true
	s.sheets[key] = append(s.sheets[key], rows...)
}

// Rows returns the rows of the week containing date
func (s *Server) Rows(date time.Time) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.sheets[weekKey(date)]...)
}

// Submitted reports whether the week containing date was submitted
func (s *Server) Submitted(date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted[weekKey(date)]
}

// Calls returns all recorded requests in order
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts requests whose path ends with suffix
func (s *Server) CallCount(method, suffix string) int {
	count := 0
	for _, call := range s.Calls() {
		if call.Method == method && strings.HasSuffix(call.Path, suffix) {
			count++
		}
	}
	return count
}

func weekKey(date time.Time) string {
	return models.WeekNumberOf(date).String()
}

func (s *Server) rotate() string {
	s.token = uuid.NewString()
	return s.token
}

func (s *Server) record(r *http.Request, body []byte, issued string) {
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   string(body),
		Sent:   r.Header.Get(tokenHeader),
		Issued: issued,
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		valid := chi.URLParam(r, "id") == s.instanceID && r.Header.Get(tokenHeader) == s.token
		if !valid {
			s.record(r, nil, "")
			s.mu.Unlock()
			writeJSON(w, http.StatusConflict, "", map[string]string{"errorMessage": "The data has been changed by another user"})
			return
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instanceID = uuid.NewString()
	token := s.rotate()
	s.record(r, readBody(r), token)
	writeJSON(w, http.StatusOK, token, map[string]any{
		"meta": map[string]string{
			"containerName":       "timeregistration",
			"containerInstanceId": s.instanceID,
		},
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.rotate()
	s.record(r, readBody(r), token)
	writeJSON(w, http.StatusOK, token, s.document())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := readBody(r)
	var req struct {
		Data struct {
			Date string `json:"datevar"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &req)
	date, err := time.Parse(time.DateOnly, req.Data.Date)
	if err != nil {
		s.record(r, body, "")
		writeJSON(w, http.StatusBadRequest, "", map[string]string{"errorMessage": "invalid date"})
		return
	}

	s.date = date
	token := s.rotate()
	s.record(r, body, token)
	writeJSON(w, http.StatusOK, token, s.document())
}

func (s *Server) handleCreateTimeSheet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized[weekKey(s.date)] = true
	token := s.rotate()
	s.record(r, readBody(r), token)
	writeJSON(w, http.StatusOK, token, s.document())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitted[weekKey(s.date)] = true
	token := s.rotate()
	s.record(r, readBody(r), token)
	writeJSON(w, http.StatusOK, token, s.document())
}

func (s *Server) handleCreateRow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := readBody(r)
	key := weekKey(s.date)
	token := s.rotate()
	s.record(r, body, token)

	if r.URL.Query().Get("row") != "end" {
		writeJSON(w, http.StatusBadRequest, token, map[string]string{"errorMessage": "unsupported row position"})
		return
	}

	if !s.initialized[key] || s.FailCreateRowUninitialized > 0 {
		if s.FailCreateRowUninitialized > 0 {
			s.FailCreateRowUninitialized--
		}
		writeJSON(w, http.StatusInternalServerError, token, map[string]string{
			"errorMessage": "Maconomy system error: no time sheet exists for the period",
		})
		return
	}

	var req struct {
		Data struct {
			JobNumber string `json:"jobnumber"`
			TaskName  string `json:"taskname"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &req)
	s.sheets[key] = append(s.sheets[key], Row{JobNumber: req.Data.JobNumber, TaskName: req.Data.TaskName})
	writeJSON(w, http.StatusOK, token, s.document())
}

func (s *Server) handleSetFields(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := readBody(r)
	key := weekKey(s.date)
	token := s.rotate()
	s.record(r, body, token)

	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 || row >= len(s.sheets[key]) {
		writeJSON(w, http.StatusNotFound, token, map[string]string{"errorMessage": "row not found"})
		return
	}

	var req struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, token, map[string]string{"errorMessage": "invalid body"})
		return
	}
	for field, value := range req.Data {
		var day int
		if _, err := fmt.Sscanf(field, "numberday%d", &day); err != nil || day < 1 || day > 7 {
			writeJSON(w, http.StatusBadRequest, token, map[string]string{"errorMessage": "unknown field " + field})
			return
		}
		s.sheets[key][row].Hours[day-1] = value
	}
	writeJSON(w, http.StatusOK, token, s.document())
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := weekKey(s.date)
	token := s.rotate()
	s.record(r, nil, token)

	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	rows := s.sheets[key]
	if err != nil || row < 0 || row >= len(rows) {
		writeJSON(w, http.StatusNotFound, token, map[string]string{"errorMessage": "row not found"})
		return
	}
	s.sheets[key] = append(rows[:row:row], rows[row+1:]...)
	writeJSON(w, http.StatusOK, token, s.document())
}

var likeRegex = regexp.MustCompile(`like '\*(.*?)\*'`)

func (s *Server) handleJobSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := readBody(r)
	s.record(r, body, "")

	var req struct {
		Restriction string `json:"restriction"`
	}
	_ = json.Unmarshal(body, &req)
	fragment := ""
	if m := likeRegex.FindStringSubmatch(req.Restriction); m != nil {
		fragment = strings.ToLower(strings.ReplaceAll(m[1], "''", "'"))
	}

	records := []map[string]any{}
	for _, job := range s.jobs {
		if strings.Contains(strings.ToLower(job.Name), fragment) || strings.Contains(strings.ToLower(job.Number), fragment) {
			records = append(records, map[string]any{"data": map[string]string{"jobnumber": job.Number}})
		}
	}
	writeJSON(w, http.StatusOK, "", searchResponse(records))
}

func (s *Server) handleTaskSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := readBody(r)
	s.record(r, body, "")

	var req struct {
		Data struct {
			JobNumber string `json:"jobnumber"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &req)

	records := []map[string]any{}
	if job, ok := s.job(req.Data.JobNumber); ok {
		for _, task := range job.Tasks {
			records = append(records, map[string]any{"data": map[string]string{
				"taskname":    task.Name,
				"tasklist":    "DEFAULT",
				"description": task.Description,
			}})
		}
	}
	writeJSON(w, http.StatusOK, "", searchResponse(records))
}

func (s *Server) job(number string) (Job, bool) {
	for _, job := range s.jobs {
		if job.Number == number {
			return job, true
		}
	}
	return Job{}, false
}

func (s *Server) taskDescription(job Job, name string) string {
	for _, task := range job.Tasks {
		if task.Name == name {
			return task.Description
		}
	}
	return name
}

// document renders the state of the current week the way the server does
func (s *Server) document() map[string]any {
	key := weekKey(s.date)
	week := models.WeekNumberOf(s.date)

	links := map[string]any{}
	if !s.initialized[key] {
		links["action:createtimesheet"] = map[string]string{
			"rel":  "action:createtimesheet",
			"href": s.URL + "/action;name=createtimesheet",
		}
	}

	records := []map[string]any{}
	for _, row := range s.sheets[key] {
		job, _ := s.job(row.JobNumber)
		data := map[string]any{
			"jobnumber":            row.JobNumber,
			"entrytext":            "",
			"taskname":             row.TaskName,
			"approvalstatus":       row.ApprovalStatus,
			"instancekey":          uuid.NewString(),
			"timeregistrationunit": "hours",
			"jobnamevar":           job.Name,
			"tasktextvar":          s.taskDescription(job, row.TaskName),
		}
		for i, hours := range row.Hours {
			data[fmt.Sprintf("numberday%d", i+1)] = hours
		}
		records = append(records, map[string]any{"data": data})
	}

	return map[string]any{
		"meta": map[string]string{
			"containerName":       "timeregistration",
			"containerInstanceId": s.instanceID,
		},
		"panes": map[string]any{
			"card": map[string]any{
				"meta":  map[string]any{"paneName": "card", "rowCount": 1, "rowOffset": 0},
				"links": links,
				"records": []map[string]any{{"data": map[string]any{
					"employeenumber":  "12345",
					"employeenamevar": "John Smith",
					"datevar":         s.date.Format(time.DateOnly),
					"weeknumbervar":   week.Number,
					"partvar":         week.Part.String(),
				}}},
			},
			"table": map[string]any{
				"meta":    map[string]any{"paneName": "table", "rowCount": len(records), "rowOffset": 0},
				"records": records,
			},
		},
	}
}

func searchResponse(records []map[string]any) map[string]any {
	return map[string]any{
		"panes": map[string]any{
			"filter": map[string]any{
				"meta":    map[string]any{"paneName": "filter", "rowCount": len(records), "rowOffset": 0},
				"records": records,
			},
		},
	}
}

func readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, _ := io.ReadAll(r.Body)
	return body
}

func writeJSON(w http.ResponseWriter, status int, token string, body any) {
	w.Header().Set("Content-Type", "application/vnd.deltek.maconomy.containers+json")
	if token != "" {
		w.Header().Set(tokenHeader, token)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
