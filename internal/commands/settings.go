package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write shared key/value settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show all settings or a single key",
	Args:  cobra.MaximumNArgs(1),
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		settings, err := s.backend.GetSettings(cmd.Context())
		if err != nil {
			fail("load settings", err)
			return
		}

		if len(args) == 1 {
			value, ok := settings[args[0]]
			if !ok {
				fmt.Printf("❌ No setting named %q\n", args[0])
				failed = true
				return
			}
			fmt.Println(value)
			return
		}

		if len(settings) == 0 {
			fmt.Println("No settings saved")
			return
		}
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, settings[k])
		}
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value [key=value...]",
	Short: "Save settings, merging into the existing ones",
	Args:  cobra.MinimumNArgs(1),
	Run: withStores(func(cmd *cobra.Command, args []string, s *stores) {
		values, err := parseAssignments(args)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			failed = true
			return
		}
		if err := s.backend.SaveSettings(cmd.Context(), values); err != nil {
			fail("save settings", err)
			return
		}
		fmt.Printf("⚙️  Saved %d setting(s)\n", len(values))
	}),
}

// parseAssignments turns key=value arguments into a settings map
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected key=value", arg)
		}
		values[key] = value
	}
	return values, nil
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
