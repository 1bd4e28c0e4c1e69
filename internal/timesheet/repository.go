package timesheet

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/maconomy"
	"github.com/maconomy-cli/maconomy/internal/models"
)

// Protocol is the subset of the Maconomy container protocol the repository drives
type Protocol interface {
	AcquireInstance(ctx context.Context) (maconomy.ContainerInstance, error)
	Fetch(ctx context.Context, instance maconomy.ContainerInstance) (*maconomy.Document, string, error)
	AdvanceToWeek(ctx context.Context, instance maconomy.ContainerInstance, date time.Time) (*maconomy.Document, string, error)
	CreateTimeSheet(ctx context.Context, instance maconomy.ContainerInstance) (*maconomy.Document, string, error)
	SetFields(ctx context.Context, instance maconomy.ContainerInstance, row int, fields map[string]any) (string, error)
	CreateRow(ctx context.Context, instance maconomy.ContainerInstance, jobNumber, taskName string) (*maconomy.Document, string, error)
	DeleteRow(ctx context.Context, instance maconomy.ContainerInstance, row int) (*maconomy.Document, string, error)
	Submit(ctx context.Context, instance maconomy.ContainerInstance) (string, error)
	SearchJob(ctx context.Context, name string) (string, bool, error)
	SearchTasks(ctx context.Context, jobNumber string) ([]maconomy.Task, error)
}

// Repository owns the container instance of one CLI run and keeps its
// concurrency control token current. Every call must carry the token of the
// previous response, so a Repository must not be used concurrently.
type Repository struct {
	client    Protocol
	instance  *maconomy.ContainerInstance
	lastSheet *models.TimeSheet
}

func NewRepository(client Protocol) *Repository {
	return &Repository{client: client}
}

// containerInstance acquires the instance on first use. The server expects
// the instance data to be read once before the week can be changed.
func (r *Repository) containerInstance(ctx context.Context) (maconomy.ContainerInstance, error) {
	if r.instance != nil {
		return *r.instance, nil
	}

	ctxlog.From(ctx).Debug("Acquiring container instance")
	instance, err := r.client.AcquireInstance(ctx)
	if err != nil {
		return maconomy.ContainerInstance{}, err
	}
	r.instance = &instance

	_, token, err := r.client.Fetch(ctx, instance)
	r.updateToken(token)
	if err != nil {
		return maconomy.ContainerInstance{}, goerr.Wrap(err, "failed to read time registration")
	}

	return *r.instance, nil
}

func (r *Repository) updateToken(token string) {
	if token != "" && r.instance != nil {
		r.instance.ConcurrencyControl = token
	}
}

func (r *Repository) invalidate() {
	r.lastSheet = nil
}

// GetTimeSheet moves the instance to week and returns its time sheet. The
// sheet is served from cache until the next mutation or week change.
func (r *Repository) GetTimeSheet(ctx context.Context, week models.WeekNumber) (*models.TimeSheet, error) {
	sheet, err := r.getTimeSheet(ctx, week)
	if err != nil {
		return nil, classify(err, "failed to get time sheet", goerr.V("week", week.String()))
	}
	return sheet, nil
}

func (r *Repository) getTimeSheet(ctx context.Context, week models.WeekNumber) (*models.TimeSheet, error) {
	if r.lastSheet != nil && r.lastSheet.WeekNumber == week {
		ctxlog.From(ctx).Debug("Using cached time sheet", "week", week.String())
		return r.lastSheet, nil
	}

	instance, err := r.containerInstance(ctx)
	if err != nil {
		return nil, err
	}

	doc, token, err := r.client.AdvanceToWeek(ctx, instance, week.FirstDay())
	r.updateToken(token)
	if err != nil {
		return nil, err
	}

	sheet, err := doc.TimeSheet()
	if err != nil {
		return nil, err
	}
	r.lastSheet = sheet
	return sheet, nil
}

func (r *Repository) createTimeSheet(ctx context.Context) error {
	instance, err := r.containerInstance(ctx)
	if err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Creating time sheet for week")
	_, token, err := r.client.CreateTimeSheet(ctx, instance)
	r.updateToken(token)
	r.invalidate()
	return err
}

// recovery is a condition SetTime recovers from by retrying once
type recovery int

const (
	recoverInitWeek recovery = iota
	recoverCreateLine
	recoverInitOnCreate
)

type retryBudget map[recovery]int

func newRetryBudget() retryBudget {
	return retryBudget{
		recoverInitWeek:     1,
		recoverCreateLine:   1,
		recoverInitOnCreate: 1,
	}
}

// spend consumes one retry of kind, reporting false once it is exhausted
func (b retryBudget) spend(kind recovery) bool {
	if b[kind] <= 0 {
		return false
	}
	b[kind]--
	return true
}

type setTimeState int

const (
	stateFetchSheet setTimeState = iota
	stateInitWeek
	stateResolveLine
	stateLookupLine
	stateCreateLine
	stateInitOnCreate
	stateSetHours
	stateDone
)

// SetTime registers hours on days for the (job, task) line of week. A week
// without a time sheet is initialized and a missing line is created; each of
// these recoveries happens at most once.
func (r *Repository) SetTime(ctx context.Context, hours float64, days models.Days, week models.WeekNumber, job, task string) error {
	logger := ctxlog.From(ctx)
	budget := newRetryBudget()

	var (
		sheet     *models.TimeSheet
		row       int
		created   bool
		jobNumber string
		shortTask string
		createErr error
	)

	for state := stateFetchSheet; state != stateDone; {
		switch state {
		case stateFetchSheet:
			var err error
			sheet, err = r.getTimeSheet(ctx, week)
			if err != nil {
				return classify(err, "failed to get time sheet", goerr.V("week", week.String()))
			}
			state = stateResolveLine
			if sheet.NeedsInitialization {
				state = stateInitWeek
			}

		case stateInitWeek:
			if !budget.spend(recoverInitWeek) {
				return &UnknownError{Err: goerr.New("time sheet still needs initialization after creating it",
					goerr.V("week", week.String()))}
			}
			logger.Info("Time sheet has not been created yet", "week", week.String())
			if err := r.createTimeSheet(ctx); err != nil {
				return classify(err, "failed to create time sheet", goerr.V("week", week.String()))
			}
			state = stateFetchSheet

		case stateResolveLine:
			i, ok := sheet.FindLine(job, task)
			if !ok && jobNumber != "" {
				// Job search matches partial names; find the row by its key instead
				i, ok = sheet.FindLineByKey(jobNumber, shortTask)
			}
			if ok {
				row = sheet.Lines[i].RowIndex
				state = stateSetHours
				break
			}
			switch {
			case created:
				return &UnknownError{Err: goerr.New("did not find line even after creating it",
					goerr.V("job", job), goerr.V("task", task))}
			case jobNumber != "":
				state = stateCreateLine
			default:
				state = stateLookupLine
			}

		case stateLookupLine:
			if !budget.spend(recoverCreateLine) {
				return &UnknownError{Err: goerr.New("gave up creating line", goerr.V("job", job), goerr.V("task", task))}
			}
			logger.Info("Found no line for job and task, creating it", "job", job, "task", task)

			var err error
			jobNumber, shortTask, err = r.lookupLine(ctx, job, task)
			if err != nil {
				return classify(err, "failed to look up job and task", goerr.V("job", job), goerr.V("task", task))
			}
			state = stateResolveLine

		case stateCreateLine:
			var err error
			sheet, err = r.createLine(ctx, jobNumber, shortTask)
			var uninitialized *maconomy.UninitializedWeekError
			switch {
			case errors.As(err, &uninitialized):
				createErr = err
				state = stateInitOnCreate
			case err != nil:
				return classify(err, "failed to add line to time sheet", goerr.V("job", job), goerr.V("task", task))
			default:
				created = true
				state = stateResolveLine
			}

		case stateInitOnCreate:
			if !budget.spend(recoverInitOnCreate) {
				return &UnknownError{Err: goerr.Wrap(createErr, "week is still uninitialized after creating time sheet",
					goerr.V("week", week.String()))}
			}
			logger.Info("Week was not initialized when adding line", "week", week.String())
			if err := r.createTimeSheet(ctx); err != nil {
				return classify(err, "failed to create time sheet", goerr.V("week", week.String()))
			}
			state = stateCreateLine

		case stateSetHours:
			if err := r.setHours(ctx, row, hours, days); err != nil {
				return classify(err, "failed to set hours", goerr.V("row", row), goerr.V("hours", hours))
			}
			state = stateDone
		}
	}

	return nil
}

// lookupLine resolves the job name to its number and the long task name to
// the short name row creation needs.
func (r *Repository) lookupLine(ctx context.Context, job, task string) (string, string, error) {
	jobNumber, ok, err := r.client.SearchJob(ctx, job)
	if err != nil {
		return "", "", err
	}
	if !ok {
		ctxlog.From(ctx).Info("Did not find a job number", "job", job)
		return "", "", &JobNotFoundError{Name: job}
	}
	ctxlog.From(ctx).Debug("Found job number", "job", job, "job_number", jobNumber)

	tasks, err := r.client.SearchTasks(ctx, jobNumber)
	if err != nil {
		return "", "", err
	}
	shortTask, ok := maconomy.FindShortTaskName(tasks, task)
	if !ok {
		ctxlog.From(ctx).Info("Did not find task for job", "job", job, "task", task)
		return "", "", &TaskNotFoundError{Name: task}
	}

	return jobNumber, shortTask, nil
}

func (r *Repository) createLine(ctx context.Context, jobNumber, shortTask string) (*models.TimeSheet, error) {
	instance, err := r.containerInstance(ctx)
	if err != nil {
		return nil, err
	}

	doc, token, err := r.client.CreateRow(ctx, instance, jobNumber, shortTask)
	r.updateToken(token)
	r.invalidate()
	if err != nil {
		return nil, err
	}
	return doc.TimeSheet()
}

func (r *Repository) setHours(ctx context.Context, row int, hours float64, days models.Days) error {
	instance, err := r.containerInstance(ctx)
	if err != nil {
		return err
	}

	fields := make(map[string]any, len(days))
	for _, day := range days.Sorted() {
		fields[day.FieldName()] = hours
	}

	ctxlog.From(ctx).Debug("Setting hours", "row", row, "hours", hours, "days", days.String())
	token, err := r.client.SetFields(ctx, instance, row, fields)
	r.updateToken(token)
	r.invalidate()
	return err
}

// DeleteLine deletes the 1-based line of week; "last" is resolved against
// the current line count.
func (r *Repository) DeleteLine(ctx context.Context, line models.LineNumber, week models.WeekNumber) error {
	sheet, err := r.getTimeSheet(ctx, week)
	if err != nil {
		return classify(err, "failed to get time sheet", goerr.V("week", week.String()))
	}

	row, err := line.Resolve(len(sheet.Lines))
	if err != nil {
		return &UnknownError{Err: err}
	}
	if line.IsLast() {
		ctxlog.From(ctx).Info("Resolved last line", "line", row+1)
	}

	instance, err := r.containerInstance(ctx)
	if err != nil {
		return classify(err, "failed to get container instance")
	}

	_, token, err := r.client.DeleteRow(ctx, instance, row)
	r.updateToken(token)
	r.invalidate()
	if err != nil {
		return classify(err, "failed to delete line", goerr.V("line", line.String()))
	}
	return nil
}

// Submit submits the time sheet of week
func (r *Repository) Submit(ctx context.Context, week models.WeekNumber) error {
	if _, err := r.getTimeSheet(ctx, week); err != nil {
		return classify(err, "failed to get time sheet", goerr.V("week", week.String()))
	}

	instance, err := r.containerInstance(ctx)
	if err != nil {
		return classify(err, "failed to get container instance")
	}

	token, err := r.client.Submit(ctx, instance)
	r.updateToken(token)
	r.invalidate()
	if err != nil {
		return classify(err, "failed to submit time sheet", goerr.V("week", week.String()))
	}
	return nil
}
