package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

// DailyActivity returns exactly n days ending today, zero-filled, ascending.
func DailyActivity(entries []model.ReadingLogEntry, n int, today time.Time, cal Calendar) []model.ActivityPoint {
	if n <= 0 {
		return []model.ActivityPoint{}
	}
	first := cal.AddDays(cal.Day(today), -(n - 1))
	points := make([]model.ActivityPoint, n)
	index := make(map[int64]int, n)
	for i := range points {
		day := cal.AddDays(first, i)
		points[i].Date = day
		index[dayKey(day)] = i
	}
	for _, entry := range entries {
		i, ok := index[dayKey(cal.Day(entry.Date))]
		if !ok {
			continue
		}
		points[i].Duration += entry.Duration
		points[i].WordsRead += entry.WordsRead
		points[i].Sessions++
	}
	return points
}

// WeeklyProgress returns exactly n weeks ending with the current week.
func WeeklyProgress(entries []model.ReadingLogEntry, books []model.BookProgress, n int, today time.Time, cal Calendar) []model.WeeklyPoint {
	if n <= 0 {
		return []model.WeeklyPoint{}
	}
	first := cal.AddDays(cal.WeekOf(today), -7*(n-1))
	starts := make([]time.Time, n)
	for i := range starts {
		starts[i] = cal.AddDays(first, 7*i)
	}
	return rollup(entries, books, starts, cal.WeekOf)
}

// MonthlyProgress returns exactly n months ending with the current month.
func MonthlyProgress(entries []model.ReadingLogEntry, books []model.BookProgress, n int, today time.Time, cal Calendar) []model.MonthlyPoint {
	if n <= 0 {
		return []model.MonthlyPoint{}
	}
	first := cal.AddMonths(cal.MonthOf(today), -(n - 1))
	starts := make([]time.Time, n)
	for i := range starts {
		starts[i] = cal.AddMonths(first, i)
	}
	return rollup(entries, books, starts, cal.MonthOf)
}

func rollup(entries []model.ReadingLogEntry, books []model.BookProgress, starts []time.Time, bucketOf func(time.Time) time.Time) []model.PeriodPoint {
	points := make([]model.PeriodPoint, len(starts))
	index := make(map[int64]int, len(starts))
	for i, start := range starts {
		points[i].Start = start
		index[dayKey(start)] = i
	}
	for _, entry := range entries {
		i, ok := index[dayKey(bucketOf(entry.Date))]
		if !ok {
			continue
		}
		points[i].Duration += entry.Duration
		points[i].WordsRead += entry.WordsRead
		points[i].Sessions++
	}
	// A finished book is attributed to the period of its last read.
	for _, book := range books {
		if book.Progress < 1 || book.LastReadDate == nil {
			continue
		}
		if i, ok := index[dayKey(bucketOf(*book.LastReadDate))]; ok {
			points[i].BooksCompleted++
		}
	}
	return points
}

// TimeDistribution buckets all sessions by hour of day. Only hours with
// sessions are returned, ascending by hour.
func TimeDistribution(entries []model.ReadingLogEntry, cal Calendar) []model.HourBucket {
	var hours [24]model.HourBucket
	for _, entry := range entries {
		h := entry.Date.In(cal.loc()).Hour()
		hours[h].Duration += entry.Duration
		hours[h].Sessions++
	}
	out := make([]model.HourBucket, 0, 24)
	for h, bucket := range hours {
		if bucket.Sessions == 0 {
			continue
		}
		bucket.Hour = h
		out = append(out, bucket)
	}
	return out
}

// SpeedTrend returns one point per measured session over the last n days
// (all time when n <= 0), ascending by date.
func SpeedTrend(entries []model.ReadingLogEntry, n int, today time.Time, cal Calendar) []model.SpeedPoint {
	var first time.Time
	if n > 0 {
		first = cal.AddDays(cal.Day(today), -(n - 1))
	}
	end := cal.AddDays(cal.Day(today), 1)
	out := make([]model.SpeedPoint, 0, len(entries))
	for _, entry := range entries {
		if entry.WordsPerMinute <= 0 {
			continue
		}
		if n > 0 && (entry.Date.Before(first) || !entry.Date.Before(end)) {
			continue
		}
		out = append(out, model.SpeedPoint{Date: entry.Date, WordsPerMinute: entry.WordsPerMinute})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
