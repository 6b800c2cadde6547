package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	sinceDateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	sinceRelativeRegex = regexp.MustCompile(`^(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks)$`)
)

// ParseSince parses the start of a history window relative to now
// Supported formats:
// - today, yesterday
// - dd/mm/yyyy (e.g., "15/12/2025")
// - X hours (e.g., "24 hours", "6h")
// - X days (e.g., "3 days", "7d") counted from the start of today
// - X weeks (e.g., "2 weeks", "1w") counted from the start of today
func ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch input {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if since, err := parseDate(input, now.Location()); err == nil {
		return since, nil
	}

	if since, err := parseRelative(input, now, today); err == nil {
		return since, nil
	}

	return time.Time{}, fmt.Errorf("invalid date format. Use: today, yesterday, dd/mm/yyyy, X hours, X days, or X weeks")
}

// parseDate parses dd/mm/yyyy format
func parseDate(input string, loc *time.Location) (time.Time, error) {
	matches := sinceDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date")
	}

	since := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Reject dates that normalised into another month (31/02 etc.)
	if since.Day() != day || since.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid date")
	}

	return since, nil
}

// parseRelative parses "X unit" windows looking back from now
func parseRelative(input string, now, today time.Time) (time.Time, error) {
	matches := sinceRelativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil || amount < 1 {
		return time.Time{}, fmt.Errorf("amount must be positive")
	}

	switch matches[2] {
	case "h", "hour", "hours":
		return now.Add(-time.Duration(amount) * time.Hour), nil
	case "d", "day", "days":
		return today.AddDate(0, 0, -amount), nil
	default:
		return today.AddDate(0, 0, -amount*7), nil
	}
}
