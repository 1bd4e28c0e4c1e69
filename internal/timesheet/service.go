package timesheet

import (
	"context"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// Service applies domain rules on top of the repository
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetTimeSheet(ctx context.Context, week models.WeekNumber) (*models.TimeSheet, error) {
	return s.repo.GetTimeSheet(ctx, week)
}

// SetTime sets hours on each of days for the job and task
func (s *Service) SetTime(ctx context.Context, hours float64, days models.Days, week models.WeekNumber, job, task string) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 || hours > 24 {
		return goerr.New("hours must be between 0 and 24", goerr.V("hours", hours))
	}
	if err := validateLine(days, job, task); err != nil {
		return err
	}
	return s.repo.SetTime(ctx, hours, days, week, job, task)
}

// Clear removes the hours on days, which is setting them to zero
func (s *Service) Clear(ctx context.Context, days models.Days, week models.WeekNumber, job, task string) error {
	if err := validateLine(days, job, task); err != nil {
		return err
	}
	return s.repo.SetTime(ctx, 0, days, week, job, task)
}

func (s *Service) DeleteLine(ctx context.Context, line models.LineNumber, week models.WeekNumber) error {
	return s.repo.DeleteLine(ctx, line, week)
}

func (s *Service) Submit(ctx context.Context, week models.WeekNumber) error {
	return s.repo.Submit(ctx, week)
}

func validateLine(days models.Days, job, task string) error {
	if strings.TrimSpace(job) == "" {
		return goerr.New("job name cannot be empty")
	}
	if strings.TrimSpace(task) == "" {
		return goerr.New("task name cannot be empty")
	}
	if len(days) == 0 {
		return goerr.New("no days given")
	}
	return nil
}
