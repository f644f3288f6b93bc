package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

func TestCalculateStreak(t *testing.T) {
	cases := []struct {
		name    string
		entries []model.ReadingLogEntry
		policy  model.StreakPolicy
		current int
		longest int
	}{
		{name: "empty", entries: nil, policy: model.StreakStrict},
		{name: "gap after three days", entries: sessionsOnDays(0, 1, 2, 4), policy: model.StreakStrict, current: 3, longest: 3},
		{name: "strict without today", entries: sessionsOnDays(1, 2), policy: model.StreakStrict, current: 0, longest: 2},
		{name: "lenient without today", entries: sessionsOnDays(1, 2), policy: model.StreakLenient, current: 2, longest: 2},
		{name: "lenient needs yesterday", entries: sessionsOnDays(2, 3), policy: model.StreakLenient, current: 0, longest: 2},
		{name: "single today", entries: sessionsOnDays(0), policy: model.StreakStrict, current: 1, longest: 1},
		{name: "single yesterday strict", entries: sessionsOnDays(1), policy: model.StreakStrict, current: 0, longest: 1},
		{name: "single yesterday lenient", entries: sessionsOnDays(1), policy: model.StreakLenient, current: 1, longest: 1},
		{name: "single old", entries: sessionsOnDays(9), policy: model.StreakLenient, current: 0, longest: 1},
		{name: "same day collapses", entries: sessionsOnDays(0, 0, 0, 1), policy: model.StreakStrict, current: 2, longest: 2},
		{name: "longer past run", entries: sessionsOnDays(0, 1, 10, 11, 12, 13, 14), policy: model.StreakStrict, current: 2, longest: 5},
		{name: "unordered input", entries: sessionsOnDays(3, 0, 2, 1), policy: model.StreakStrict, current: 4, longest: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateStreak(tc.entries, testToday, testCal, tc.policy)
			if got.Current != tc.current || got.Longest != tc.longest {
				t.Fatalf("expected current=%d longest=%d, got current=%d longest=%d", tc.current, tc.longest, got.Current, got.Longest)
			}
			if got.Longest < got.Current {
				t.Fatalf("longest %d < current %d", got.Longest, got.Current)
			}
			if got.Current == 0 && got.Start != nil {
				t.Fatalf("expected nil start for zero streak")
			}
		})
	}
}

func TestCalculateStreakStart(t *testing.T) {
	got := CalculateStreak(sessionsOnDays(0, 1, 2, 4), testToday, testCal, model.StreakStrict)
	if got.Start == nil || !got.Start.Equal(testCal.Day(daysAgo(2, 0))) {
		t.Fatalf("expected streak to start two days ago, got %v", got.Start)
	}
}

func TestCalculateStreakUsesLocalDays(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	cal := Calendar{Location: loc}
	// 02:00 UTC on the 15th is still the 14th in UTC-5.
	entries := []model.ReadingLogEntry{
		session(time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC), 5, 100, 0),
		session(time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC), 5, 100, 0),
	}
	got := CalculateStreak(entries, time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC), cal, model.StreakStrict)
	if got.Current != 2 {
		t.Fatalf("expected 2-day streak in local time, got %d", got.Current)
	}
}

func TestCalculateStreakAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cal := Calendar{Location: loc}
	// DST starts on 2024-03-10 in New York; that day has 23 hours.
	var entries []model.ReadingLogEntry
	for d := 8; d <= 12; d++ {
		entries = append(entries, session(time.Date(2024, 3, d, 23, 30, 0, 0, loc), 5, 100, 0))
	}
	got := CalculateStreak(entries, time.Date(2024, 3, 12, 23, 45, 0, 0, loc), cal, model.StreakStrict)
	if got.Current != 5 || got.Longest != 5 {
		t.Fatalf("expected 5/5 across DST, got %d/%d", got.Current, got.Longest)
	}
}
