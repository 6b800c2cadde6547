package tracker

import (
	"time"

	"github.com/balkashynov/timesheet/internal/models"
)

// LabelGroup is the per-label slice of history with its accumulated time
type LabelGroup struct {
	Label    string
	Sessions []models.Session
	TotalMs  int64
}

// GroupByLabel groups sessions by label. Groups appear in the order their
// label is first seen and each group keeps the input order of its sessions.
func GroupByLabel(sessions []models.Session) []LabelGroup {
	var groups []LabelGroup
	index := make(map[string]int)

	for _, s := range sessions {
		i, ok := index[s.Label]
		if !ok {
			i = len(groups)
			index[s.Label] = i
			groups = append(groups, LabelGroup{Label: s.Label})
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
		groups[i].TotalMs += s.DurationMs
	}

	return groups
}

// GrandTotal sums the totals of all groups
func GrandTotal(groups []LabelGroup) int64 {
	var total int64
	for _, g := range groups {
		total += g.TotalMs
	}
	return total
}

// FilterSessions keeps sessions started at or after since (zero means no bound)
// and, when label is non-empty, only that label. Order is preserved.
func FilterSessions(sessions []models.Session, since time.Time, label string) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if !since.IsZero() && s.StartTime.Before(since) {
			continue
		}
		if label != "" && s.Label != label {
			continue
		}
		out = append(out, s)
	}
	return out
}
