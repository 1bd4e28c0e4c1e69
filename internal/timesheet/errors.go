package timesheet

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// JobNotFoundError means no job matched the given name
type JobNotFoundError struct {
	Name string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job '%s' not found", e.Name)
}

// TaskNotFoundError means the job has no task with the given name
type TaskNotFoundError struct {
	Name string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

// UnknownError wraps any failure the repository could not recover from
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return e.Err.Error()
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// classify passes user-facing errors through and wraps everything else in
// UnknownError with a message describing what failed.
func classify(err error, msg string, values ...goerr.Option) error {
	if err == nil {
		return nil
	}

	var jobErr *JobNotFoundError
	var taskErr *TaskNotFoundError
	var unknown *UnknownError
	switch {
	case errors.As(err, &jobErr), errors.As(err, &taskErr), errors.As(err, &unknown):
		return err
	}
	return &UnknownError{Err: goerr.Wrap(err, msg, values...)}
}
