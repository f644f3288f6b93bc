package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/readlog/internal/model"
	"github.com/verte-zerg/readlog/internal/stats"
)

var now = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

type fakeSource struct {
	logs []model.ReadingLogEntry
	err  error
}

func (f *fakeSource) ListLogs(context.Context) ([]model.ReadingLogEntry, error) {
	return f.logs, f.err
}

func (f *fakeSource) ListLogsBetween(_ context.Context, start, end time.Time) ([]model.ReadingLogEntry, error) {
	var out []model.ReadingLogEntry
	for _, entry := range f.logs {
		if !entry.Date.Before(start) && entry.Date.Before(end) {
			out = append(out, entry)
		}
	}
	return out, f.err
}

func (f *fakeSource) ListActiveBooks(context.Context) ([]model.BookProgress, error) {
	return nil, f.err
}

func newTestModel(src stats.Source) *Model {
	cfg := model.StatsConfig{Policy: model.StreakStrict, WeekStart: time.Sunday, Days: 14, Weeks: 4, Months: 3}
	m := NewModel(src, stats.Options{Location: time.UTC, Now: func() time.Time { return now }}, cfg, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func sampleLogs() []model.ReadingLogEntry {
	var out []model.ReadingLogEntry
	for i := 0; i < 3; i++ {
		out = append(out, model.ReadingLogEntry{
			Date:           now.AddDate(0, 0, -i).Add(-time.Hour),
			Duration:       20 * time.Minute,
			WordsRead:      5000,
			WordsPerMinute: 250,
		})
	}
	return out
}

func TestInitLoadsReport(t *testing.T) {
	m := newTestModel(&fakeSource{logs: sampleLogs()})
	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("expected load command")
	}
	if !m.loading {
		t.Fatalf("expected loading state")
	}
	m.Update(cmd())
	if m.loading || !m.loaded || m.errMsg != "" {
		t.Fatalf("unexpected state: loading=%v loaded=%v err=%q", m.loading, m.loaded, m.errMsg)
	}
	if m.report.Stats.TotalSessions != 3 || m.report.Stats.CurrentStreak != 3 {
		t.Fatalf("unexpected stats: %+v", m.report.Stats)
	}
	if len(m.report.Daily) != 14 {
		t.Fatalf("expected 14 daily points, got %d", len(m.report.Daily))
	}
	if len(m.challengeTable.Rows()) != m.report.Challenges.TotalChallenges {
		t.Fatalf("expected a row per challenge, got %d", len(m.challengeTable.Rows()))
	}
	if !strings.Contains(m.View(), "Streak") {
		t.Fatalf("overview should show the streak card")
	}
}

func TestStaleReportIsDropped(t *testing.T) {
	m := newTestModel(&fakeSource{logs: sampleLogs()})
	first := m.refreshReport()
	second := m.refreshReport()

	m.Update(second())
	applied := m.report
	m.Update(reportMsg{gen: 1, err: errors.New("stale failure")})
	if m.errMsg != "" {
		t.Fatalf("stale error must be ignored, got %q", m.errMsg)
	}
	m.Update(first())
	if m.report.GeneratedAt != applied.GeneratedAt || m.report.Stats != applied.Stats {
		t.Fatalf("stale report replaced the newest one")
	}
}

func TestReportErrorIsShown(t *testing.T) {
	m := newTestModel(&fakeSource{err: errors.New("database is locked")})
	m.Update(m.Init()())
	if !strings.Contains(m.errMsg, "database is locked") {
		t.Fatalf("expected store error, got %q", m.errMsg)
	}
	view := m.View()
	if !strings.Contains(view, "Failed to load stats.") || !strings.Contains(view, "database is locked") {
		t.Fatalf("view should report the failure:\n%s", view)
	}
	// A later successful load clears the error.
	m.src.(*fakeSource).err = nil
	m.Update(m.refreshReport()())
	if m.errMsg != "" || !m.loaded {
		t.Fatalf("expected recovery, got err=%q loaded=%v", m.errMsg, m.loaded)
	}
}

func TestApplyFilter(t *testing.T) {
	m := newTestModel(&fakeSource{})
	m.filterInputs[0].SetValue("0")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for zero days")
	}
	m.filterInputs[0].SetValue("30")
	m.filterInputs[3].SetValue("sometimes")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
	oldEngine := m.eng
	m.filterInputs[3].SetValue("lenient")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if m.cfg.Days != 30 || m.cfg.Policy != model.StreakLenient {
		t.Fatalf("unexpected config: %+v", m.cfg)
	}
	if m.eng == oldEngine {
		t.Fatalf("expected a new engine for the new policy")
	}
}

func TestDaysSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{in: 1, next: 7, prev: 1},
		{in: 7, next: 14, prev: 1},
		{in: 10, next: 14, prev: 7},
		{in: 30, next: 35, prev: 28},
	}
	for _, tc := range cases {
		if got := nextDays(tc.in); got != tc.next {
			t.Fatalf("nextDays(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevDays(tc.in); got != tc.prev {
			t.Fatalf("prevDays(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}

func TestBuildChallengeTableData(t *testing.T) {
	done := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	challenges := []model.Challenge{
		{Title: "Reading Streak", Status: model.StatusCompleted, Level: model.LevelSilver, CurrentProgress: 7, TargetProgress: 7, Points: 50, CompletedDate: &done},
		{Title: "Speed Reader", Status: model.StatusInProgress, CurrentProgress: 180, TargetProgress: 250, Points: 75},
	}
	cols, rows := buildChallengeTableData(challenges)
	if len(cols) != 6 || len(rows) != 2 {
		t.Fatalf("unexpected table shape: %d cols %d rows", len(cols), len(rows))
	}
	if rows[0][1] != "completed" || rows[0][2] != "silver" || rows[0][5] != "2024-03-10" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][1] != "in progress" || rows[1][3] != "180/250" || rows[1][5] != "" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestFitLinesAndTruncate(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fit output %q", out)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}
