package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/timesheet/internal/tracker"
)

// RunTimerTUI shows the running session until the user clocks out or leaves
func RunTimerTUI(ctrl *tracker.Controller, timeout time.Duration) error {
	p := tea.NewProgram(NewTimerModel(ctrl, timeout), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(TimerModel)
	if !ok {
		return nil
	}
	switch {
	case m.stopped != nil:
		fmt.Printf("⏹️  Stopped tracking %s\n", m.stopped.Label)
		fmt.Printf("📊 Session duration: %s\n", tracker.FormatDuration(m.stopped.DurationMs))
	case m.exiting:
		if active, running := ctrl.Active(); running {
			fmt.Printf("\n💡 Timer is still running for %s\n", active.Label)
			fmt.Printf("   Use 'timesheet status' to check it or 'timesheet out' to stop it.\n")
		}
	}
	return nil
}

// RunHistoryTUI browses the grouped history with delete support
func RunHistoryTUI(ctrl *tracker.Controller, timeout time.Duration) error {
	_, err := tea.NewProgram(NewHistoryModel(ctrl, timeout), tea.WithAltScreen()).Run()
	return err
}

// RunLabelPicker lets the user choose or create the label for the next session.
// It returns the chosen label, or "" when cancelled.
func RunLabelPicker(ctrl *tracker.Controller, labels LabelService, timeout time.Duration) (string, error) {
	p := tea.NewProgram(NewLabelModel(ctrl, labels, timeout), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	if m, ok := finalModel.(LabelModel); ok {
		return m.Chosen(), nil
	}
	return "", nil
}
