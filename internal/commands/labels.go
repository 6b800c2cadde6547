package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/timesheet/internal/parser"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage the labels sessions are tracked under",
}

var labelsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List labels",
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		labels, err := s.backend.ListLabels(cmd.Context())
		if err != nil {
			fail("load labels", err)
			return
		}
		if len(labels) == 0 {
			fmt.Println("No labels yet. Use 'timesheet labels add \"name\"' to create one.")
			return
		}

		selected := s.ctrl.Selected()
		for _, label := range labels {
			marker := " "
			if label == selected {
				marker = "●"
			}
			fmt.Printf("%s %s\n", marker, label)
		}
	}),
}

var labelsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a label",
	Args:  cobra.MinimumNArgs(1),
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		name, err := parser.NormalizeLabel(joinArgs(args))
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			failed = true
			return
		}
		if err := s.backend.CreateLabel(cmd.Context(), name); err != nil {
			fail("create label", err)
			return
		}
		fmt.Printf("🏷️  Created label %q\n", name)

		if use, _ := cmd.Flags().GetBool("select"); use {
			if err := s.ctrl.Select(cmd.Context(), name); err != nil {
				fail("select label", err)
				return
			}
			fmt.Printf("Selected %q for the next session\n", name)
		}
	}),
}

var labelsRemoveCmd = &cobra.Command{
	Use:     "rm [name]",
	Aliases: []string{"remove"},
	Short:   "Delete a label (its recorded sessions are kept)",
	Args:    cobra.MinimumNArgs(1),
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		name := joinArgs(args)
		if err := s.backend.DeleteLabel(cmd.Context(), name); err != nil {
			fail("delete label", err)
			return
		}
		if s.ctrl.Selected() == name {
			if err := s.ctrl.Select(cmd.Context(), ""); err != nil {
				s.logger.Warn("clear selected label", "error", err)
			}
		}
		fmt.Printf("🗑️  Deleted label %q\n", name)
	}),
}

func init() {
	labelsAddCmd.Flags().BoolP("select", "s", false, "Also select the new label")

	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsAddCmd)
	labelsCmd.AddCommand(labelsRemoveCmd)
}
