package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/timesheet/internal/models"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// FormatDuration renders milliseconds as HH:MM:SS. Hours are not capped.
// Negative input is treated as zero.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / msPerHour
	minutes := (ms % msPerHour) / msPerMinute
	seconds := (ms % msPerMinute) / msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatElapsed renders a running duration the same way as FormatDuration
func FormatElapsed(d time.Duration) string {
	return FormatDuration(d.Milliseconds())
}

// ConfirmSummary describes a session for a delete confirmation prompt
func ConfirmSummary(s models.Session) string {
	var b strings.Builder
	b.WriteString("Are you sure you want to delete this session?\n\n")
	fmt.Fprintf(&b, "Label: %s\n", s.Label)
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(s.DurationMs))
	fmt.Fprintf(&b, "Started: %s", s.StartTime.Local().Format("Jan 02, 2006 15:04:05"))
	return b.String()
}
