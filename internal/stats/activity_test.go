package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

func TestDailyActivityZeroFills(t *testing.T) {
	entries := []model.ReadingLogEntry{
		session(daysAgo(0, 8), 10, 500, 0),
		session(daysAgo(0, 20), 5, 250, 0),
		session(daysAgo(3, 8), 20, 1000, 0),
		session(daysAgo(30, 8), 20, 1000, 0),
	}
	for _, n := range []int{1, 7, 30, 90} {
		points := DailyActivity(entries, n, testToday, testCal)
		if len(points) != n {
			t.Fatalf("expected %d points, got %d", n, len(points))
		}
		for i := 1; i < len(points); i++ {
			if !points[i].Date.After(points[i-1].Date) {
				t.Fatalf("points not ascending at %d", i)
			}
		}
		last := points[len(points)-1]
		if !last.Date.Equal(testCal.Day(testToday)) {
			t.Fatalf("expected series to end today, got %s", last.Date)
		}
		if last.Duration != 15*time.Minute || last.WordsRead != 750 || last.Sessions != 2 {
			t.Fatalf("unexpected today bucket: %+v", last)
		}
	}
	week := DailyActivity(entries, 7, testToday, testCal)
	if week[3].Sessions != 1 || week[3].WordsRead != 1000 {
		t.Fatalf("unexpected bucket three days ago: %+v", week[3])
	}
	if week[0].Sessions != 0 || week[0].Duration != 0 {
		t.Fatalf("expected zero-filled bucket, got %+v", week[0])
	}
	if got := DailyActivity(entries, 0, testToday, testCal); len(got) != 0 {
		t.Fatalf("expected empty series for n=0")
	}
}

func TestWeeklyProgress(t *testing.T) {
	entries := []model.ReadingLogEntry{
		session(daysAgo(0, 8), 10, 500, 0),  // Fri, current week
		session(daysAgo(5, 8), 10, 500, 0),  // Sun, current week
		session(daysAgo(6, 8), 30, 2000, 0), // Sat, previous week
	}
	books := []model.BookProgress{
		{Progress: 1, LastReadDate: timePtr(daysAgo(1, 10))},
		{Progress: 0.9, LastReadDate: timePtr(daysAgo(1, 10))},
		{Progress: 1, LastReadDate: timePtr(daysAgo(60, 10))},
	}
	points := WeeklyProgress(entries, books, 4, testToday, testCal)
	if len(points) != 4 {
		t.Fatalf("expected 4 weeks, got %d", len(points))
	}
	current := points[3]
	if !current.Start.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week to start Sunday Mar 10, got %s", current.Start)
	}
	if current.Sessions != 2 || current.WordsRead != 1000 || current.BooksCompleted != 1 {
		t.Fatalf("unexpected current week: %+v", current)
	}
	if points[2].Sessions != 1 || points[2].Duration != 30*time.Minute {
		t.Fatalf("unexpected previous week: %+v", points[2])
	}

	monday := Calendar{Location: time.UTC, WeekStart: time.Monday}
	points = WeeklyProgress(entries, nil, 1, testToday, monday)
	if !points[0].Start.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) || points[0].Sessions != 1 {
		t.Fatalf("unexpected monday week: %+v", points[0])
	}
}

func TestMonthlyProgress(t *testing.T) {
	entries := []model.ReadingLogEntry{
		session(daysAgo(0, 8), 10, 500, 0),
		session(daysAgo(20, 8), 15, 700, 0), // Feb 24
		session(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), 5, 100, 0),
	}
	points := MonthlyProgress(entries, nil, 3, testToday, testCal)
	if len(points) != 3 {
		t.Fatalf("expected 3 months, got %d", len(points))
	}
	wantStarts := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, want := range wantStarts {
		if !points[i].Start.Equal(want) {
			t.Fatalf("month %d: expected %s, got %s", i, want, points[i].Start)
		}
	}
	if points[0].Sessions != 0 || points[1].WordsRead != 700 || points[2].Sessions != 1 {
		t.Fatalf("unexpected months: %+v", points)
	}
}

func TestTimeDistributionIsSparse(t *testing.T) {
	entries := []model.ReadingLogEntry{
		session(daysAgo(0, 21), 10, 0, 0),
		session(daysAgo(3, 21), 20, 0, 0),
		session(daysAgo(1, 7), 5, 0, 0),
	}
	buckets := TimeDistribution(entries, testCal)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Hour != 7 || buckets[1].Hour != 21 {
		t.Fatalf("unexpected hours: %+v", buckets)
	}
	if buckets[1].Sessions != 2 || buckets[1].Duration != 30*time.Minute {
		t.Fatalf("unexpected 21h bucket: %+v", buckets[1])
	}
	if len(TimeDistribution(nil, testCal)) != 0 {
		t.Fatalf("expected no buckets for no sessions")
	}
}

func TestSpeedTrend(t *testing.T) {
	entries := []model.ReadingLogEntry{
		session(daysAgo(0, 21), 10, 2000, 200),
		session(daysAgo(0, 7), 10, 2500, 250),
		session(daysAgo(1, 7), 10, 0, 0),
		session(daysAgo(10, 7), 10, 1800, 180),
	}
	points := SpeedTrend(entries, 7, testToday, testCal)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].WordsPerMinute != 250 || points[1].WordsPerMinute != 200 {
		t.Fatalf("expected date order, got %+v", points)
	}
	if all := SpeedTrend(entries, 0, testToday, testCal); len(all) != 3 {
		t.Fatalf("expected 3 points all time, got %d", len(all))
	}
}
