package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/dsdist/internal/tui/components"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Task is a long-running step. On success it returns the line shown in
// place of the spinner.
type Task func(ctx context.Context) (string, error)

// RunWithSpinner runs task while a spinner with message is drawn on stderr.
// Progress reported through dsdist.ReportProgress on the task's context is
// shown next to the message. Pressing q or ctrl+c cancels the task's
// context. Without a terminal the task runs directly and nothing is drawn.
func RunWithSpinner(ctx context.Context, message string, task Task) (string, error) {
	if !IsInteractive() {
		return task(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result string
		err    error
	}
	done := make(chan outcome, 1)

	p := tea.NewProgram(newTaskModel(message, cancel), tea.WithOutput(os.Stderr))
	ctx = dsdist.WithProgress(ctx, func(stored, total int) {
		p.Send(components.ProgressMsg{Stored: stored, Total: total})
	})
	go func() {
		result, err := task(ctx)
		done <- outcome{result: result, err: err}
		if err != nil {
			p.Send(components.SpinnerFailed(err))
			return
		}
		p.Send(components.SpinnerDone(result))
	}()

	if _, err := p.Run(); err != nil {
		cancel()
	}
	out := <-done
	return out.result, out.err
}

// taskModel draws the spinner until the task reports back. A quit key only
// cancels the task; the program exits once the task has returned.
type taskModel struct {
	spinner components.Spinner
	keys    KeyMap
	cancel  context.CancelFunc
}

func newTaskModel(message string, cancel context.CancelFunc) taskModel {
	return taskModel{
		spinner: components.NewSpinner(message),
		keys:    DefaultKeyMap(),
		cancel:  cancel,
	}
}

func (m taskModel) Init() tea.Cmd {
	return m.spinner.Init()
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) {
			m.cancel()
		}
		return m, nil
	case components.SpinnerDoneMsg:
		m.spinner, _ = m.spinner.Update(msg)
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m taskModel) View() string {
	if m.spinner.IsDone() {
		return m.spinner.View() + "\n"
	}
	return m.spinner.View() + "\n" + HelpStyle.Render(m.keys.HelpText()) + "\n"
}
