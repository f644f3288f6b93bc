package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

// Streak holds current and longest runs of consecutive reading days.
type Streak struct {
	Current int
	Longest int
	// Start is the first day of the current streak, nil when Current is 0.
	Start *time.Time
}

// ActiveDays collapses sessions into unique calendar days, ascending.
func ActiveDays(entries []model.ReadingLogEntry, cal Calendar) []time.Time {
	seen := make(map[int64]struct{}, len(entries))
	days := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		day := cal.Day(entry.Date)
		key := dayKey(day)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// CalculateStreak computes the current streak ending today and the longest
// historical streak.
func CalculateStreak(entries []model.ReadingLogEntry, today time.Time, cal Calendar, policy model.StreakPolicy) Streak {
	days := ActiveDays(entries, cal)
	if len(days) == 0 {
		return Streak{}
	}
	active := make(map[int64]struct{}, len(days))
	for _, day := range days {
		active[dayKey(day)] = struct{}{}
	}
	isActive := func(day time.Time) bool {
		_, ok := active[dayKey(day)]
		return ok
	}

	var streak Streak
	cursor := cal.Day(today)
	if !isActive(cursor) && policy == model.StreakLenient {
		cursor = cal.AddDays(cursor, -1)
	}
	for isActive(cursor) {
		streak.Current++
		start := cursor
		streak.Start = &start
		cursor = cal.AddDays(cursor, -1)
	}

	run := 1
	streak.Longest = 1
	for i := 1; i < len(days); i++ {
		if cal.AddDays(days[i-1], 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > streak.Longest {
			streak.Longest = run
		}
	}
	return streak
}
