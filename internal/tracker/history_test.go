package tracker

import (
	"testing"
	"time"

	"github.com/balkashynov/timesheet/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00"},
		{999, "00:00:00"},
		{59_999, "00:00:59"},
		{3_661_000, "01:01:01"},
		{7_200_000, "02:00:00"},
		{100 * 3_600_000, "100:00:00"},
		{-5000, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestGroupByLabel(t *testing.T) {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{ClientID: 5, Label: "Writing", StartTime: base, DurationMs: 1000},
		{ClientID: 4, Label: "Reading", StartTime: base.Add(-time.Hour), DurationMs: 2500},
		{ClientID: 3, Label: "Writing", StartTime: base.Add(-2 * time.Hour), DurationMs: 4000},
		{ClientID: 2, Label: "", StartTime: base.Add(-3 * time.Hour), DurationMs: 10},
		{ClientID: 1, Label: "Reading", StartTime: base.Add(-4 * time.Hour), DurationMs: 500},
	}

	groups := GroupByLabel(sessions)

	wantOrder := []string{"Writing", "Reading", ""}
	if len(groups) != len(wantOrder) {
		t.Fatalf("expected %d groups, got %d", len(wantOrder), len(groups))
	}
	for i, label := range wantOrder {
		if groups[i].Label != label {
			t.Fatalf("group %d: expected %q, got %q", i, label, groups[i].Label)
		}
	}
	if groups[0].TotalMs != 5000 || groups[1].TotalMs != 3000 {
		t.Fatalf("unexpected totals %d/%d", groups[0].TotalMs, groups[1].TotalMs)
	}
	if groups[0].Sessions[0].ClientID != 5 || groups[0].Sessions[1].ClientID != 3 {
		t.Fatalf("group must keep input order")
	}

	var sum int64
	seen := map[int64]int{}
	for _, s := range sessions {
		sum += s.DurationMs
	}
	for _, g := range groups {
		for _, s := range g.Sessions {
			seen[s.ClientID]++
		}
	}
	if GrandTotal(groups) != sum {
		t.Fatalf("grand total %d != sum %d", GrandTotal(groups), sum)
	}
	for _, s := range sessions {
		if seen[s.ClientID] != 1 {
			t.Fatalf("session %d appears %d times", s.ClientID, seen[s.ClientID])
		}
	}
}

func TestGroupByLabelEmpty(t *testing.T) {
	if groups := GroupByLabel(nil); len(groups) != 0 || GrandTotal(groups) != 0 {
		t.Fatalf("expected no groups")
	}
}

func TestFilterSessions(t *testing.T) {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{ClientID: 3, Label: "Writing", StartTime: base},
		{ClientID: 2, Label: "Reading", StartTime: base.Add(-25 * time.Hour)},
		{ClientID: 1, Label: "Writing", StartTime: base.Add(-48 * time.Hour)},
	}

	if got := FilterSessions(sessions, time.Time{}, ""); len(got) != 3 {
		t.Fatalf("no filter must keep everything, got %d", len(got))
	}
	if got := FilterSessions(sessions, base.Add(-30*time.Hour), ""); len(got) != 2 {
		t.Fatalf("since filter: expected 2, got %d", len(got))
	}
	got := FilterSessions(sessions, time.Time{}, "Writing")
	if len(got) != 2 || got[0].ClientID != 3 || got[1].ClientID != 1 {
		t.Fatalf("label filter: unexpected %+v", got)
	}
}
