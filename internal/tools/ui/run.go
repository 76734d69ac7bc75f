package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const actionTimeout = 2 * time.Minute

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("130"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type actionMsg struct {
	details []string
	err     error
}

type tickMsg time.Time

type model struct {
	title   string
	started time.Time
	elapsed time.Duration
	details []string
	err     error
	done    bool
	action  func(context.Context) ([]string, error)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.runAction, tick())
}

func (m model) runAction() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	details, err := m.action(ctx)
	return actionMsg{details: details, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Time(msg).Sub(m.started)
		return m, tick()
	case actionMsg:
		m.details = msg.details
		m.err = msg.err
		m.done = true
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if !m.done {
		fmt.Fprintf(&b, "\nRunning... %s\n", dimStyle.Render(m.elapsed.Truncate(time.Second).String()))
		return b.String()
	}
	if m.err != nil {
		fmt.Fprintf(&b, "%s: %v\n", failStyle.Render("FAILED"), m.err)
	} else {
		fmt.Fprintf(&b, "%s %s\n", okStyle.Render("OK"), dimStyle.Render(m.elapsed.Truncate(time.Millisecond).String()))
	}
	for _, d := range m.details {
		b.WriteString("- " + d + "\n")
	}
	return b.String()
}

// Run executes action behind a small progress view and returns its result.
func Run(title string, action func(context.Context) ([]string, error)) ([]string, error) {
	m := model{title: title, action: action, started: time.Now()}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	res := final.(model)
	return res.details, res.err
}
