package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/parser"
	"github.com/balkashynov/timesheet/internal/tracker"
)

// LabelService is the part of a store the picker needs
type LabelService interface {
	ListLabels(ctx context.Context) ([]string, error)
	CreateLabel(ctx context.Context, name string) error
}

// LabelModel picks the label for the next session or creates a new one
type LabelModel struct {
	width  int
	height int

	ctrl    *tracker.Controller
	labels  LabelService
	timeout time.Duration

	options  []string
	selected int
	input    textinput.Model
	typing   bool

	chosen    string
	cancelled bool
	errMsg    string
}

type labelsLoadedMsg struct {
	labels []string
	err    error
}

type labelCreatedMsg struct {
	name string
	err  error
}

type labelSelectedMsg struct {
	name string
	err  error
}

func NewLabelModel(ctrl *tracker.Controller, labels LabelService, timeout time.Duration) LabelModel {
	input := textinput.New()
	input.Placeholder = "New label name (Enter to create, Esc to go back)"
	input.CharLimit = parser.MaxLabelLength
	input.Width = 50
	input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	return LabelModel{
		ctrl:    ctrl,
		labels:  labels,
		timeout: timeout,
		input:   input,
	}
}

func (m LabelModel) Init() tea.Cmd {
	labels, timeout := m.labels, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		list, err := labels.ListLabels(ctx)
		return labelsLoadedMsg{labels: list, err: err}
	}
}

func (m LabelModel) createLabel(name string) tea.Cmd {
	labels, timeout := m.labels, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := labels.CreateLabel(ctx, name)
		if errors.Is(err, apperr.ErrConflict) {
			// already there, just select it
			err = nil
		}
		return labelCreatedMsg{name: name, err: err}
	}
}

func (m LabelModel) selectLabel(name string) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return labelSelectedMsg{name: name, err: ctrl.Select(ctx, name)}
	}
}

func (m LabelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case labelsLoadedMsg:
		if msg.err != nil {
			m.errMsg = apperr.UserMessage("load labels", msg.err)
			return m, nil
		}
		m.options = msg.labels
		current := m.ctrl.Selected()
		for i, l := range m.options {
			if l == current {
				m.selected = i
			}
		}
		if len(m.options) == 0 {
			return m.startTyping()
		}
		return m, nil

	case labelCreatedMsg:
		if msg.err != nil {
			m.errMsg = apperr.UserMessage("create label", msg.err)
			return m, nil
		}
		return m, m.selectLabel(msg.name)

	case labelSelectedMsg:
		if msg.err != nil {
			m.errMsg = apperr.UserMessage("select label", msg.err)
			return m, nil
		}
		m.chosen = msg.name
		return m, tea.Quit

	case tea.KeyMsg:
		if m.typing {
			return m.handleInputKeys(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.options)-1 {
				m.selected++
			}
		case "n", "tab":
			return m.startTyping()
		case "enter":
			if len(m.options) > 0 {
				return m, m.selectLabel(m.options[m.selected])
			}
		}
	}

	return m, nil
}

func (m LabelModel) startTyping() (tea.Model, tea.Cmd) {
	m.typing = true
	m.errMsg = ""
	m.input.Focus()
	return m, textinput.Blink
}

func (m LabelModel) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	case "esc":
		if len(m.options) == 0 {
			m.cancelled = true
			return m, tea.Quit
		}
		m.typing = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case "enter":
		name, err := parser.NormalizeLabel(m.input.Value())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, m.createLabel(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m LabelModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render("SELECT A LABEL"))
	b.WriteString("\n\n")

	current := m.ctrl.Selected()
	itemStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	for i, l := range m.options {
		marker := "  "
		if l == current {
			marker = "● "
		}
		line := marker + truncate(l, 48)
		if i == m.selected && !m.typing {
			b.WriteString(activeStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.typing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("⚠ " + m.errMsg))
		b.WriteString("\n")
	}

	help := "↑/↓ navigate · enter select · n new label · esc/q cancel"
	if m.typing {
		help = "enter create & select · esc back"
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).Render(help))

	card := lipgloss.NewStyle().
		Width(min(m.width-4, 64)).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

// Chosen reports the label picked, empty when cancelled
func (m LabelModel) Chosen() string {
	return m.chosen
}
