package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/timesheet/internal/config"
	"github.com/balkashynov/timesheet/internal/parser"
	"github.com/balkashynov/timesheet/internal/tracker"
	"github.com/balkashynov/timesheet/internal/tui"
)

var selectCmd = &cobra.Command{
	Use:   "select [label]",
	Short: "Choose the label for the next session",
	Long: `Choose the label the next 'timesheet in' will track under.
Without an argument an interactive picker opens, where you can also create a label.
A session that is already running keeps the label it started with.`,
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		if len(args) == 0 {
			chosen, err := tui.RunLabelPicker(s.ctrl, s.backend, s.cfg.RequestTimeout)
			if err != nil {
				fail("select label", err)
				return
			}
			if chosen == "" {
				fmt.Println("❌ Selection cancelled.")
				return
			}
			fmt.Printf("🏷️  Selected %q\n", chosen)
			return
		}

		label, ok := selectLabel(cmd, s, joinArgs(args))
		if ok {
			fmt.Printf("🏷️  Selected %q\n", label)
		}
	}),
}

// selectLabel checks name against the known labels and selects it
func selectLabel(cmd *cobra.Command, s *stores, name string) (string, bool) {
	label, err := parser.NormalizeLabel(name)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		failed = true
		return "", false
	}

	labels, err := s.backend.ListLabels(cmd.Context())
	if err != nil {
		fail("load labels", err)
		return "", false
	}
	if !slices.Contains(labels, label) {
		fmt.Printf("❌ Unknown label %q. Use 'timesheet labels add %q' first.\n", label, label)
		failed = true
		return "", false
	}

	if err := s.ctrl.Select(cmd.Context(), label); err != nil {
		fail("select label", err)
		return "", false
	}
	return label, true
}

var inCmd = &cobra.Command{
	Use:   "in [label]",
	Short: "Clock in and start tracking",
	Long: `Start a session for the selected label. Pass a label to select it first.
Opens the interactive timer by default, use --no-ui to just start.

Examples:
  timesheet in
  timesheet in "Deep work" --no-ui`,
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		if len(args) > 0 {
			if _, ok := selectLabel(cmd, s, joinArgs(args)); !ok {
				return
			}
		}

		active, started, err := s.ctrl.ClockIn(cmd.Context())
		if err != nil {
			fail("start session", err)
			return
		}
		if !started {
			if running, ok := s.ctrl.Active(); ok {
				fmt.Printf("⏱️  Already tracking %s since %s\n", running.Label, running.StartTime.Local().Format("15:04:05"))
			} else {
				fmt.Println("❌ No label selected. Use 'timesheet select' first.")
				failed = true
				return
			}
		} else {
			fmt.Printf("⏱️  Started tracking %s\n", active.Label)
			fmt.Printf("Started at: %s\n", active.StartTime.Local().Format("15:04:05"))
		}

		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			return
		}
		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			s.logger.Warn("could not load history for totals", "error", err)
		}
		if err := tui.RunTimerTUI(s.ctrl, s.cfg.RequestTimeout); err != nil {
			fail("run timer", err)
		}
	}),
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Clock out and save the session",
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		session, ok, err := s.ctrl.ClockOut(cmd.Context())
		if err != nil {
			fail("end session", err)
			if _, running := s.ctrl.Active(); running {
				fmt.Println("   The session is still running, run 'timesheet out' again to retry.")
			}
			return
		}
		if !ok {
			fmt.Println("No active session")
			return
		}

		fmt.Printf("⏹️  Stopped tracking %s\n", session.Label)
		fmt.Printf("Session duration: %s\n", tracker.FormatDuration(session.DurationMs))
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current time tracking status",
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		snap := s.ctrl.Snapshot()

		selected := snap.Selected
		if selected == "" {
			selected = "none"
		}
		fmt.Printf("Selected label: %s\n", selected)

		if snap.Active == nil {
			fmt.Println("No active time tracking session")
		} else {
			fmt.Printf("⏱️  Currently tracking: %s\n", snap.Active.Label)
			fmt.Printf("Started at: %s\n", snap.Active.StartTime.Local().Format("15:04:05"))
			fmt.Printf("Elapsed time: %s\n", tracker.FormatElapsed(snap.Elapsed))
		}

		backend := "local database " + s.cfg.DBPath
		if s.cfg.Mode == config.ModeRemote {
			backend = "server " + s.cfg.APIURL
		}
		if err := s.health(cmd.Context()); err != nil {
			fmt.Printf("⚠️  Backend unreachable: %s\n", backend)
			s.logger.Debug("health check failed", "error", err)
			return
		}
		fmt.Printf("Backend: %s\n", backend)
	}),
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

func init() {
	inCmd.Flags().Bool("no-ui", false, "Start without the interactive timer")
}
