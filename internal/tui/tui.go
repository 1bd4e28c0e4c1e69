package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/term"
)

// ErrSignInCancelled is returned when the user leaves the sign-in prompt
var ErrSignInCancelled = goerr.New("sign-in was cancelled")

// PromptCookie runs the interactive sign-in prompt and returns the pasted
// cookie. The prompt draws on stderr so stdout stays clean for command output.
func PromptCookie(ctx context.Context, loginURL string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", goerr.New("interactive sign-in requires a terminal")
	}

	deadline, _ := ctx.Deadline()
	model := NewSignInModel(loginURL, deadline)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", goerr.Wrap(err, "failed to run sign-in prompt")
	}

	m, ok := finalModel.(SignInModel)
	if !ok {
		return "", goerr.New("unexpected sign-in model")
	}

	switch {
	case m.TimedOut():
		// Let the caller's context report the deadline
		<-ctx.Done()
		return "", ctx.Err()
	case m.Cancelled():
		return "", ErrSignInCancelled
	}

	value, submitted := m.Value()
	if !submitted {
		return "", ErrSignInCancelled
	}
	return value, nil
}
