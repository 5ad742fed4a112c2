// Package tui renders the live status dashboard: connectivity, session
// countdown, data source, and sync queue depth, refreshed once a second.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ledgerlite/ledgerlite/internal/session"
)

// Status is one point-in-time reading of everything the dashboard shows.
type Status struct {
	Online           bool
	SessionState     session.State
	SessionRemaining time.Duration
	Warning          string
	UsingOffline     bool
	SnapshotSavedAt  time.Time
	QueueDepth       int
}

// StatusFunc produces the current status. The model calls it on every
// tick so the dashboard is always a fresh point-in-time evaluation.
type StatusFunc func() Status

// Styles for the dashboard.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	bannerStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("130")).
			Padding(0, 1)
	dimStyle = lipgloss.NewStyle().Faint(true)
)

// tickMsg drives the once-a-second refresh.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// StatusModel is the Bubble Tea model for the status dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type StatusModel struct {
	statusFn StatusFunc
	status   Status
	spinner  spinner.Model
	quitting bool
}

// NewStatusModel creates the dashboard model around a status source.
func NewStatusModel(statusFn StatusFunc) StatusModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return StatusModel{
		statusFn: statusFn,
		status:   statusFn(),
		spinner:  sp,
	}
}

// Init starts the refresh tick and the spinner (Bubble Tea interface).
func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick)
}

// Update handles key, tick, and spinner messages (Bubble Tea interface).
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tickMsg:
		m.status = m.statusFn()
		return m, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View renders the dashboard (Bubble Tea interface).
func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.status
	var b []byte

	b = append(b, titleStyle.Render("ledgerlite status")...)
	b = append(b, '\n', '\n')

	if s.Online {
		b = append(b, fmt.Sprintf("  Network:  %s\n", onlineStyle.Render("online"))...)
	} else {
		b = append(b, fmt.Sprintf("  Network:  %s\n", offlineStyle.Render("offline"))...)
	}

	b = append(b, fmt.Sprintf("  Session:  %s", s.SessionState)...)
	if s.SessionRemaining > 0 {
		b = append(b, fmt.Sprintf(" (%s left)", s.SessionRemaining.Round(time.Second))...)
	}
	b = append(b, '\n')

	if s.SnapshotSavedAt.IsZero() {
		b = append(b, "  Backup:   none\n"...)
	} else {
		b = append(b, fmt.Sprintf("  Backup:   saved %s\n", s.SnapshotSavedAt.Format(time.RFC3339))...)
	}

	if s.QueueDepth > 0 {
		b = append(b, fmt.Sprintf("  Pending:  %d queued mutation(s) %s\n", s.QueueDepth, m.spinner.View())...)
	}

	if s.UsingOffline {
		b = append(b, '\n')
		b = append(b, bannerStyle.Render("Using Offline Backup Data")...)
		b = append(b, '\n')
	}
	if s.Warning != "" {
		b = append(b, '\n')
		b = append(b, warnStyle.Render(s.Warning)...)
		b = append(b, '\n')
	}

	b = append(b, '\n')
	b = append(b, dimStyle.Render("press q to quit")...)
	b = append(b, '\n')
	return string(b)
}
