package stats

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
	"github.com/verte-zerg/readlog/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "readlog.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	entries := []model.ReadingLogEntry{
		session(daysAgo(0, 8), 30, 7500, 250),
		session(daysAgo(1, 21), 20, 4000, 200),
		session(daysAgo(2, 21), 15, 3000, 0),
		session(daysAgo(40, 12), 45, 9000, 200),
	}
	if _, err := st.InsertLogs(ctx, entries); err != nil {
		t.Fatalf("insert logs: %v", err)
	}
	book, err := st.UpsertBook(ctx, "/books/dune.txt", "Dune")
	if err != nil {
		t.Fatalf("upsert book: %v", err)
	}
	if err := st.UpdateBookProgress(ctx, book.ID, 1, daysAgo(1, 22)); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	eng := NewEngine(st, Options{Location: time.UTC, Now: func() time.Time { return testToday }}, nil)
	cfg := model.StatsConfig{Days: 7, Weeks: 4, Months: 3}
	report, err := BuildReport(ctx, eng, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if !report.GeneratedAt.Equal(testToday) {
		t.Fatalf("unexpected generated at: %s", report.GeneratedAt)
	}
	if report.Stats.TotalSessions != 4 || report.Stats.CurrentStreak != 3 || report.Stats.TotalBooksRead != 1 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if len(report.Daily) != 7 || len(report.Weekly) != 4 || len(report.Monthly) != 3 {
		t.Fatalf("unexpected series lengths: %d/%d/%d", len(report.Daily), len(report.Weekly), len(report.Monthly))
	}
	if report.Weekly[3].BooksCompleted != 1 {
		t.Fatalf("expected finished book in current week, got %+v", report.Weekly[3])
	}
	if len(report.Speed) != 2 {
		t.Fatalf("expected 2 measured sessions in the last 7 days, got %d", len(report.Speed))
	}
	if len(report.Hours) != 3 {
		t.Fatalf("expected 3 hour buckets, got %d", len(report.Hours))
	}
	if report.Challenges.TotalChallenges != len(catalog) {
		t.Fatalf("expected %d challenges, got %d", len(catalog), report.Challenges.TotalChallenges)
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 80, 6, false); err != nil {
		t.Fatalf("render report: %v", err)
	}
	for _, want := range []string{"Summary", "Daily Activity", "Weekly", "Monthly", "Time of Day", "Challenges"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("report output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestBuildReportFailsWhole(t *testing.T) {
	cause := errors.New("database is locked")
	eng := newTestEngine(&fakeSource{err: cause}, "")
	report, err := BuildReport(context.Background(), eng, model.StatsConfig{Days: 7, Weeks: 4, Months: 3})
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if report.Daily != nil || report.Challenges.Challenges != nil {
		t.Fatalf("expected empty report on failure, got %+v", report)
	}
}
