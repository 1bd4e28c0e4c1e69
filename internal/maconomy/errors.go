package maconomy

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrTagMissingToken marks responses without a concurrency control header
	ErrTagMissingToken = goerr.NewTag("missing_concurrency_control")
	// ErrTagInvalidResponse marks bodies that do not decode
	ErrTagInvalidResponse = goerr.NewTag("invalid_response")
)

const uninitializedWeekPrefix = "Maconomy system error: "

// UninitializedWeekError is returned when the targeted week has no time
// sheet yet. The server still rotates the concurrency control token on this
// response, so the new token is carried along.
type UninitializedWeekError struct {
	ConcurrencyControl string
}

func (e *UninitializedWeekError) Error() string {
	return "week has not been initialized"
}

// isUninitializedWeek recognizes the error body returned when editing a week
// that has no time sheet
func isUninitializedWeek(body []byte) bool {
	var payload struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return strings.HasPrefix(payload.ErrorMessage, uninitializedWeekPrefix)
}
