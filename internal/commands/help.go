package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for timesheet",
	Long:  `Display detailed help for all timesheet commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
timesheet - personal time tracker

TRACKING:

  select [label]          Choose the label for the next session
                          (no argument opens the picker, n creates a label)
  in [label]              Clock in under the selected label
    --no-ui               Start without the interactive timer
  out                     Clock out and save the session
  status                  Show the running session and backend health

    Timer keys:
      s             Stop & save (stays running if saving fails)
      esc/q         Leave the timer running in the background

HISTORY:

  history                 Sessions grouped by label with totals
    --since               today, yesterday, dd/mm/yyyy, 6h, 3 days, 2 weeks
    -l, --label           Only one label
    --json / --yaml       Export
    --ui                  Browse interactively (d deletes with confirmation)
  rm <id>                 Delete a session by the #id shown in history
    -y, --yes             Skip the confirmation

LABELS & SETTINGS:

  labels ls               List labels (● marks the selected one)
  labels add <name>       Create a label
    -s, --select          Also select it
  labels rm <name>        Delete a label, its sessions are kept
  settings get [key]      Show settings
  settings set k=v ...    Merge settings

SERVER:

  serve                   Run the REST backend on the local database
    -p, --port            Port (default 3000)

CONFIGURATION:

  ~/.timesheet/config.yaml, overridden by TIMESHEET_MODE, TIMESHEET_DB,
  TIMESHEET_STATE_DIR, TIMESHEET_API_URL, TIMESHEET_AUTH_TOKEN,
  TIMESHEET_PORT, TIMESHEET_TIMEOUT and TIMESHEET_LOG_LEVEL.
  mode: local keeps sessions in sqlite, mode: remote talks to 'timesheet serve'.

`)
}
