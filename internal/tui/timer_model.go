package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/tracker"
)

// TimerModel shows the running session and lets the user clock out
type TimerModel struct {
	width  int
	height int

	ctrl    *tracker.Controller
	timeout time.Duration

	elapsed        time.Duration
	timerAnimation int

	// stopping is set while a ClockOut is in flight; the stop key is ignored meanwhile
	stopping bool
	stopped  *models.Session
	exiting  bool
	errMsg   string
}

type timerTickMsg struct{}

type animationTickMsg struct{}

type clockOutMsg struct {
	session models.Session
	ok      bool
	err     error
}

func NewTimerModel(ctrl *tracker.Controller, timeout time.Duration) TimerModel {
	elapsed, _ := ctrl.Tick()
	return TimerModel{
		ctrl:    ctrl,
		timeout: timeout,
		elapsed: elapsed,
	}
}

func timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{} })
}

func animationTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return animationTickMsg{} })
}

func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(timerTick(), animationTick())
}

// clockOut runs the store submission off the UI loop
func (m TimerModel) clockOut() tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		session, ok, err := ctrl.ClockOut(ctx)
		return clockOutMsg{session: session, ok: ok, err: err}
	}
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		elapsed, ok := m.ctrl.Tick()
		if !ok {
			return m, nil
		}
		m.elapsed = elapsed
		return m, timerTick()

	case animationTickMsg:
		m.timerAnimation = (m.timerAnimation + 1) % 4
		if m.stopped == nil && !m.exiting {
			return m, animationTick()
		}
		return m, nil

	case clockOutMsg:
		m.stopping = false
		if msg.err != nil {
			// still tracking, the user can retry
			m.errMsg = apperr.UserMessage("end session", msg.err)
			return m, nil
		}
		if msg.ok {
			m.stopped = &msg.session
		}
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "s", "S":
			if m.stopping {
				return m, nil
			}
			m.stopping = true
			m.errMsg = ""
			return m, m.clockOut()
		case "ctrl+c", "esc", "q":
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTimerPanel(m.width, contentHeight), helpBar)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderTotalsPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func (m TimerModel) renderTimerPanel(width, height int) string {
	active, tracking := m.ctrl.Active()
	var components []string

	animChars := []string{"⏱", "⏲", "⏱", "⏲"}
	animChar := animChars[m.timerAnimation]
	header := fmt.Sprintf("%s  TRACKING TIME  %s", animChar, animChar)
	if m.stopping {
		header = "Ending session..."
	}
	components = append(components, lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width).
		Render(header))

	label := "no active session"
	if tracking {
		label = active.Label
	}
	components = append(components, lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width).
		Render(truncate(label, width-4)))

	var clock []string
	for _, line := range strings.Split(renderBigClock(m.elapsed), "\n") {
		clock = append(clock, lipgloss.NewStyle().Align(lipgloss.Center).Width(width).Render(line))
	}
	components = append(components, strings.Join(clock, "\n"))

	if tracking {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Align(lipgloss.Center).
			Width(width).
			Render("Started at "+active.StartTime.Local().Format("15:04:05")))
	}

	if m.errMsg != "" {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width).
			Render("⚠ "+m.errMsg))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

// renderTotalsPanel lists the accumulated time per label from history
func (m TimerModel) renderTotalsPanel(width, height int) string {
	groups := m.ctrl.Groups()
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render("TOTALS BY LABEL"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("─", min(width-4, 40))))
	b.WriteString("\n\n")

	if len(groups) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Render("No sessions recorded yet"))
	}
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	totalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	for _, g := range groups {
		fmt.Fprintf(&b, "%s  %s\n",
			totalStyle.Render(tracker.FormatDuration(g.TotalMs)),
			labelStyle.Render(truncate(g.Label, width-14)))
	}
	if len(groups) > 0 {
		fmt.Fprintf(&b, "\n%s  %s", totalStyle.Render(tracker.FormatDuration(tracker.GrandTotal(groups))), labelStyle.Render("all labels"))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(2, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Render(b.String())
}

func (m TimerModel) renderHelpBar() string {
	text := "s stop & save · esc/q exit (keep running) · ctrl+c force quit"
	if m.stopping {
		text = "saving session..."
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render(text)
}

// bigDigits are 5x5 glyphs for the clock face
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock draws elapsed as HH:MM:SS in block glyphs
func renderBigClock(elapsed time.Duration) string {
	var lines [5]strings.Builder
	for _, char := range tracker.FormatElapsed(elapsed) {
		glyph, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(glyph[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

func truncate(s string, width int) string {
	if width < 4 {
		width = 4
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
