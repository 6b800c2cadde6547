package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/timesheet/internal/db"
	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/tracker"
)

func sampleGroups() []tracker.LabelGroup {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Second)
	return tracker.GroupByLabel([]models.Session{
		{ClientID: 2, Label: "Reading", StartTime: start.Add(time.Hour), DurationMs: 3_600_000},
		{ClientID: 1, Label: "Writing", StartTime: start, EndTime: &end, DurationMs: 5000},
	})
}

func TestBuildReport(t *testing.T) {
	r := buildReport(sampleGroups())

	if len(r.Groups) != 2 || r.Groups[0].Label != "Reading" || r.Groups[1].Total != "00:00:05" {
		t.Fatalf("unexpected groups %+v", r.Groups)
	}
	if r.TotalMs != 3_605_000 || r.Total != "01:00:05" {
		t.Fatalf("unexpected total %d %s", r.TotalMs, r.Total)
	}

	var buf bytes.Buffer
	if err := writeReportJSON(&buf, r); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Groups[1].Sessions[0].ID != 1 {
		t.Fatalf("unexpected decoded report %+v", decoded)
	}

	buf.Reset()
	if err := writeReportYAML(&buf, r); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	for _, want := range []string{"label: Reading", "01:00:05", "duration_ms: 5000"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("yaml output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintGroups(t *testing.T) {
	var buf bytes.Buffer
	printGroups(&buf, sampleGroups())
	out := buf.String()

	if !strings.Contains(out, "01:00:00  Reading (1 sessions)") || !strings.Contains(out, "01:00:05  total") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	buf.Reset()
	printGroups(&buf, nil)
	if !strings.Contains(buf.String(), "No sessions found") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}

func TestPromptConfirm(t *testing.T) {
	session := models.Session{Label: "Writing", DurationMs: 5000}

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := promptConfirm(strings.NewReader(tt.input), &out)(session)
		if got != tt.want {
			t.Fatalf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Label: Writing") {
			t.Fatalf("prompt must describe the session, got %q", out.String())
		}
	}
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"theme=dark", "goal=8=h"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if values["theme"] != "dark" || values["goal"] != "8=h" {
		t.Fatalf("unexpected values %v", values)
	}
	if _, err := parseAssignments([]string{"novalue"}); err == nil {
		t.Fatal("expected error for missing '='")
	}
	if _, err := parseAssignments([]string{"=x"}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func run(t *testing.T, args ...string) {
	t.Helper()
	failed = false
	rootCmd.SetArgs(args)
	if err := Execute(); err != nil {
		t.Fatalf("timesheet %s: %v", strings.Join(args, " "), err)
	}
}

func TestLocalModeCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "timesheet.db")
	configPath = filepath.Join(dir, "missing.yaml")
	t.Cleanup(func() { configPath = "" })
	t.Setenv("TIMESHEET_MODE", "local")
	t.Setenv("TIMESHEET_DB", dbPath)
	t.Setenv("TIMESHEET_STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("TIMESHEET_LOG_LEVEL", "error")

	run(t, "labels", "add", "Deep", "work", "--select")
	run(t, "in", "--no-ui")
	run(t, "status")
	run(t, "out")
	run(t, "settings", "set", "theme=dark")

	gdb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := db.NewStore(gdb)
	ctx := context.Background()

	sessions, err := store.ListSessions(ctx)
	if err != nil || len(sessions) != 1 || sessions[0].Label != "Deep work" {
		t.Fatalf("unexpected sessions %+v %v", sessions, err)
	}
	settings, _ := store.GetSettings(ctx)
	if settings["theme"] != "dark" {
		t.Fatalf("unexpected settings %v", settings)
	}

	run(t, "rm", "--yes", "#"+strconv.FormatInt(sessions[0].ClientID, 10))
	if sessions, _ := store.ListSessions(ctx); len(sessions) != 0 {
		t.Fatalf("session must be deleted, got %+v", sessions)
	}
}
