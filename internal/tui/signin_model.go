package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SignInModel asks the user to sign in through the browser and paste the
// resulting Maconomy cookie. It gives up once the deadline passes.
type SignInModel struct {
	width    int
	loginURL string
	deadline time.Time
	now      func() time.Time

	input   textinput.Model
	spinner spinner.Model

	value     string
	errorMsg  string
	submitted bool
	cancelled bool
	timedOut  bool
}

// deadlineTickMsg is sent every second to refresh the countdown
type deadlineTickMsg time.Time

// NewSignInModel creates the prompt; a zero deadline means no time limit
func NewSignInModel(loginURL string, deadline time.Time) SignInModel {
	input := textinput.New()
	input.Placeholder = "Maconomy-…=…"
	input.Prompt = "› "
	input.CharLimit = 4096
	input.Width = 60
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain))

	return SignInModel{
		loginURL: loginURL,
		deadline: deadline,
		now:      time.Now,
		input:    input,
		spinner:  spin,
	}
}

func tickDeadline() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return deadlineTickMsg(t)
	})
}

// Init starts the cursor blink, the spinner and the countdown
func (m SignInModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tickDeadline())
}

func (m SignInModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deadlineTickMsg:
		if m.expired() {
			m.timedOut = true
			return m, tea.Quit
		}
		return m, tickDeadline()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			if !strings.Contains(value, "=") {
				m.errorMsg = "Expected the cookie as name=value"
				return m, nil
			}
			m.value = value
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.errorMsg = ""
	return m, cmd
}

func (m SignInModel) expired() bool {
	return !m.deadline.IsZero() && !m.now().Before(m.deadline)
}

// Value is the pasted cookie once the user submitted it
func (m SignInModel) Value() (string, bool) {
	return m.value, m.submitted
}

func (m SignInModel) Cancelled() bool { return m.cancelled }

func (m SignInModel) TimedOut() bool { return m.timedOut }

func (m SignInModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	urlStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Underline(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in to Maconomy"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("Complete the sign-in in your browser. If it did not open, visit:"))
	b.WriteString("\n")
	b.WriteString(urlStyle.Render(m.loginURL))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("Then paste the Maconomy session cookie (name=value):"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	status := m.spinner.View() + " Waiting for sign-in"
	if !m.deadline.IsZero() {
		remaining := m.deadline.Sub(m.now()).Round(time.Second)
		if remaining < 0 {
			remaining = 0
		}
		countdown := fmt.Sprintf(" (%s left)", remaining)
		if remaining < 30*time.Second {
			countdown = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Render(countdown)
		}
		status += countdown
	}
	b.WriteString(status)

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render(m.errorMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: submit • esc: cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2).
		Render(b.String())
}
