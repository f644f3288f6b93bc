package stats

import (
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

// 2024-03-15 is a Friday.
var testToday = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

var testCal = Calendar{Location: time.UTC, WeekStart: time.Sunday}

func daysAgo(n, hour int) time.Time {
	return time.Date(2024, 3, 15-n, hour, 0, 0, 0, time.UTC)
}

func session(date time.Time, minutes, words int, wpm float64) model.ReadingLogEntry {
	return model.ReadingLogEntry{
		Date:           date,
		Duration:       time.Duration(minutes) * time.Minute,
		WordsRead:      words,
		WordsPerMinute: wpm,
	}
}

func sessionsOnDays(days ...int) []model.ReadingLogEntry {
	out := make([]model.ReadingLogEntry, 0, len(days))
	for _, d := range days {
		out = append(out, session(daysAgo(d, 9), 10, 1000, 0))
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}
