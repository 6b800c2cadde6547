package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/parser"
	"github.com/balkashynov/timesheet/internal/tracker"
	"github.com/balkashynov/timesheet/internal/tui"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "Show completed sessions grouped by label",
	Long: `Show completed sessions grouped by label with the total time per label.

Examples:
  timesheet history
  timesheet history --since today
  timesheet history --since "2 weeks" --label "Deep work"
  timesheet history --json
  timesheet history --ui      # browse and delete interactively`,
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			fail("load sessions", err)
			return
		}

		if ui, _ := cmd.Flags().GetBool("ui"); ui {
			if err := tui.RunHistoryTUI(s.ctrl, s.cfg.RequestTimeout); err != nil {
				fail("browse history", err)
			}
			return
		}

		sinceFlag, _ := cmd.Flags().GetString("since")
		since, err := parser.ParseSince(sinceFlag, time.Now())
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			failed = true
			return
		}
		label, _ := cmd.Flags().GetString("label")

		groups := tracker.GroupByLabel(tracker.FilterSessions(s.ctrl.History(), since, label))

		asJSON, _ := cmd.Flags().GetBool("json")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		switch {
		case asJSON:
			err = writeReportJSON(cmd.OutOrStdout(), buildReport(groups))
		case asYAML:
			err = writeReportYAML(cmd.OutOrStdout(), buildReport(groups))
		default:
			printGroups(cmd.OutOrStdout(), groups)
		}
		if err != nil {
			fail("export history", err)
		}
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm [session-id]",
	Short: "Delete a completed session",
	Long: `Delete a completed session by the id shown in 'timesheet history'.
You are asked to confirm unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		clientID, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
		if err != nil {
			fmt.Printf("❌ Error: invalid session ID '%s'\n", args[0])
			failed = true
			return
		}
		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			fail("load sessions", err)
			return
		}

		var confirm func(models.Session) bool
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		deleted, err := s.ctrl.DeleteSession(cmd.Context(), clientID, confirm)
		switch {
		case err != nil && deleted:
			// the server no longer had it, local history is now in sync
			fmt.Printf("🗑️  Session #%d was already deleted\n", clientID)
		case err != nil:
			fail("delete session", err)
		case !deleted:
			fmt.Println("❌ Deletion cancelled.")
		default:
			fmt.Printf("🗑️  Deleted session #%d\n", clientID)
		}
	}),
}

// promptConfirm asks on out and reads y/N from in
func promptConfirm(in io.Reader, out io.Writer) func(models.Session) bool {
	return func(s models.Session) bool {
		fmt.Fprintf(out, "%s\n\nDelete? [y/N]: ", tracker.ConfirmSummary(s))
		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

func printGroups(w io.Writer, groups []tracker.LabelGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No sessions found. Use 'timesheet in' to start tracking.")
		return
	}

	for _, g := range groups {
		fmt.Fprintf(w, "%s  %s (%d sessions)\n", tracker.FormatDuration(g.TotalMs), g.Label, len(g.Sessions))
		for _, s := range g.Sessions {
			fmt.Fprintf(w, "    %s  %s  #%d\n",
				s.StartTime.Local().Format("Jan 02 15:04"),
				tracker.FormatDuration(s.DurationMs),
				s.ClientID)
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "%s  total\n", tracker.FormatDuration(tracker.GrandTotal(groups)))
}

// ─────────────────────────────────────────────
// Export
// ─────────────────────────────────────────────

type reportSession struct {
	ID         int64      `json:"id" yaml:"id"`
	StartTime  time.Time  `json:"startTime" yaml:"start_time"`
	EndTime    *time.Time `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	Duration   string     `json:"duration" yaml:"duration"`
	DurationMs int64      `json:"durationMs" yaml:"duration_ms"`
}

type reportGroup struct {
	Label    string          `json:"label" yaml:"label"`
	Total    string          `json:"total" yaml:"total"`
	TotalMs  int64           `json:"totalMs" yaml:"total_ms"`
	Sessions []reportSession `json:"sessions" yaml:"sessions"`
}

type report struct {
	Groups  []reportGroup `json:"groups" yaml:"groups"`
	Total   string        `json:"total" yaml:"total"`
	TotalMs int64         `json:"totalMs" yaml:"total_ms"`
}

func buildReport(groups []tracker.LabelGroup) report {
	r := report{Groups: make([]reportGroup, 0, len(groups))}
	for _, g := range groups {
		rg := reportGroup{
			Label:    g.Label,
			Total:    tracker.FormatDuration(g.TotalMs),
			TotalMs:  g.TotalMs,
			Sessions: make([]reportSession, 0, len(g.Sessions)),
		}
		for _, s := range g.Sessions {
			rg.Sessions = append(rg.Sessions, reportSession{
				ID:         s.ClientID,
				StartTime:  s.StartTime,
				EndTime:    s.EndTime,
				Duration:   tracker.FormatDuration(s.DurationMs),
				DurationMs: s.DurationMs,
			})
		}
		r.Groups = append(r.Groups, rg)
	}
	r.TotalMs = tracker.GrandTotal(groups)
	r.Total = tracker.FormatDuration(r.TotalMs)
	return r
}

func writeReportJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeReportYAML(w io.Writer, r report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	historyCmd.Flags().String("since", "", "Only sessions started since: today, yesterday, dd/mm/yyyy, X hours, X days, X weeks")
	historyCmd.Flags().StringP("label", "l", "", "Only sessions with this label")
	historyCmd.Flags().Bool("json", false, "JSON output")
	historyCmd.Flags().Bool("yaml", false, "YAML output")
	historyCmd.Flags().Bool("ui", false, "Browse history interactively")
	historyCmd.MarkFlagsMutuallyExclusive("json", "yaml", "ui")

	rmCmd.Flags().BoolP("yes", "y", false, "Delete without asking")
}
