package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/tracker"
)

// HistoryModel lists completed sessions grouped by label and deletes them
type HistoryModel struct {
	width  int
	height int

	ctrl    *tracker.Controller
	timeout time.Duration

	groups []tracker.LabelGroup
	// rows is groups flattened in display order; the cursor moves over it
	rows     []models.Session
	selected int

	showDeleteModal bool
	deleteChoice    bool // true for Yes
	deleting        bool

	status string
	errMsg string
}

type deleteDoneMsg struct {
	clientID int64
	err      error
}

type refreshDoneMsg struct{ err error }

func NewHistoryModel(ctrl *tracker.Controller, timeout time.Duration) HistoryModel {
	m := HistoryModel{ctrl: ctrl, timeout: timeout}
	m.reload()
	return m
}

// reload rebuilds the grouped view from the controller's history
func (m *HistoryModel) reload() {
	m.groups = m.ctrl.Groups()
	m.rows = nil
	for _, g := range m.groups {
		m.rows = append(m.rows, g.Sessions...)
	}
	if m.selected >= len(m.rows) {
		m.selected = max(len(m.rows)-1, 0)
	}
}

func (m HistoryModel) current() (models.Session, bool) {
	if len(m.rows) == 0 {
		return models.Session{}, false
	}
	return m.rows[m.selected], true
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) deleteSession(clientID int64) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := ctrl.DeleteSession(ctx, clientID, nil)
		return deleteDoneMsg{clientID: clientID, err: err}
	}
}

func (m HistoryModel) refresh() tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshDoneMsg{err: ctrl.Refresh(ctx)}
	}
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case deleteDoneMsg:
		m.deleting = false
		switch {
		case msg.err == nil:
			m.status = "Session deleted"
			m.errMsg = ""
		case errors.Is(msg.err, apperr.ErrNotFound):
			m.status = "Session was already gone"
			m.errMsg = ""
		default:
			m.errMsg = apperr.UserMessage("delete session", msg.err)
		}
		m.reload()
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.errMsg = apperr.UserMessage("load sessions", msg.err)
		} else {
			m.errMsg = ""
			m.status = "Refreshed"
		}
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if m.showDeleteModal {
			return m.handleModalKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		case "r":
			return m, m.refresh()
		case "d", "delete":
			if _, ok := m.current(); ok && !m.deleting {
				m.showDeleteModal = true
				m.deleteChoice = false
			}
		}
	}

	return m, nil
}

func (m HistoryModel) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab":
		m.deleteChoice = !m.deleteChoice
	case "y", "Y":
		m.deleteChoice = true
		return m.confirmDelete()
	case "n", "N", "esc":
		m.showDeleteModal = false
	case "enter":
		return m.confirmDelete()
	}
	return m, nil
}

func (m HistoryModel) confirmDelete() (tea.Model, tea.Cmd) {
	m.showDeleteModal = false
	target, ok := m.current()
	if !m.deleteChoice || !ok {
		return m, nil
	}
	m.deleting = true
	m.status = "Deleting..."
	return m, m.deleteSession(target.ClientID)
}

func (m HistoryModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showDeleteModal {
		return m.renderDeleteModal()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTable(m.width-2),
		m.renderStatusLine(),
		m.renderHelpBar(),
	)
	return content
}

func (m HistoryModel) renderTable(width int) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	b.WriteString(header.Render("SESSION HISTORY"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDisabledText)).
			Render("No sessions yet. Use 'timesheet in' to start tracking."))
	}

	groupStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorCardBackground)).
		Bold(true)

	// visible window of rows around the cursor
	perPage := max(m.height-10-2*len(m.groups), 3)
	first := max(m.selected-perPage+1, 0)
	last := first + perPage

	idx := 0
	for _, g := range m.groups {
		fmt.Fprintf(&b, "%s  %s\n",
			groupStyle.Render(truncate(g.Label, width-14)),
			groupStyle.Render(tracker.FormatDuration(g.TotalMs)))
		for _, s := range g.Sessions {
			if idx >= first && idx < last {
				line := fmt.Sprintf("  %s  %s  #%d",
					s.StartTime.Local().Format("Jan 02 15:04"),
					tracker.FormatDuration(s.DurationMs),
					s.ClientID)
				if idx == m.selected {
					b.WriteString(selectedStyle.Render("▸" + line[1:]))
				} else {
					b.WriteString(rowStyle.Render(line))
				}
				b.WriteString("\n")
			}
			idx++
		}
	}

	if len(m.groups) > 0 {
		fmt.Fprintf(&b, "\n%s %s", header.Render("Total:"), groupStyle.Render(tracker.FormatDuration(tracker.GrandTotal(m.groups))))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(max(m.height-4, 1)).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Render(b.String())
}

func (m HistoryModel) renderStatusLine() string {
	if m.errMsg != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true).Render("⚠ " + m.errMsg)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.status)
}

func (m HistoryModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("↑/↓ navigate · d delete · r refresh · esc/q quit")
}

func (m HistoryModel) renderDeleteModal() string {
	target, _ := m.current()

	var content strings.Builder
	content.WriteString(tracker.ConfirmSummary(target))
	content.WriteString("\n\n")

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)
	if m.deleteChoice {
		yesStyle = yesStyle.
			Background(lipgloss.Color(ColorError)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
	} else {
		noStyle = noStyle.
			Background(lipgloss.Color(ColorAccentBright)).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)
	}
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, yesStyle.Render("Delete"), "   ", noStyle.Render("Keep")))
	content.WriteString("\n\n← → or Y/N to choose, Enter to confirm\nEsc to cancel")

	modal := lipgloss.NewStyle().
		Width(56).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentBright)).
		Background(lipgloss.Color(ColorCardBackground)).
		Padding(1).
		Align(lipgloss.Center).
		Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
