// Package components holds bubbletea models shared by dsdist commands.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows one long-running push: a message, elapsed time and, once a
// backend reports it, how many data files are stored.
type Spinner struct {
	spinner spinner.Model
	message string
	started time.Time
	now     func() time.Time

	stored int
	total  int

	finished bool
	result   string
	err      error
}

var (
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// NewSpinner creates a spinner that starts its clock now.
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Spinner{
		spinner: s,
		message: message,
		started: time.Now(),
		now:     time.Now,
	}
}

// Init starts the animation.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update handles ticks, progress and completion.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	switch msg := msg.(type) {
	case SpinnerDoneMsg:
		s.finished = true
		s.result = msg.Result
		s.err = msg.Err
		return s, nil
	case ProgressMsg:
		s.stored, s.total = msg.Stored, msg.Total
		return s, nil
	case spinner.TickMsg:
		if s.finished {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s Spinner) View() string {
	if s.finished {
		if s.err != nil {
			return failStyle.Render("✗ " + s.err.Error())
		}
		return okStyle.Render("✓ " + s.result)
	}

	var b strings.Builder
	b.WriteString(s.spinner.View())
	b.WriteString(" ")
	b.WriteString(messageStyle.Render(s.message))
	if s.total > 0 {
		b.WriteString(" ")
		b.WriteString(messageStyle.Render(fmt.Sprintf("%d/%d files", s.stored, s.total)))
	}
	elapsed := s.now().Sub(s.started).Truncate(time.Second)
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("(%s)", elapsed)))
	return b.String()
}

// ProgressMsg carries a backend's stored/total data file count.
type ProgressMsg struct {
	Stored int
	Total  int
}

// SpinnerDoneMsg ends the spinner. A nil Err means success.
type SpinnerDoneMsg struct {
	Result string
	Err    error
}

// SpinnerDone ends the spinner with result.
func SpinnerDone(result string) SpinnerDoneMsg {
	return SpinnerDoneMsg{Result: result}
}

// SpinnerFailed ends the spinner with err.
func SpinnerFailed(err error) SpinnerDoneMsg {
	return SpinnerDoneMsg{Err: err}
}

// IsDone reports whether a SpinnerDoneMsg was received.
func (s Spinner) IsDone() bool {
	return s.finished
}

// Error returns the failure, or nil.
func (s Spinner) Error() error {
	return s.err
}
