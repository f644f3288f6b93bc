package stats

import (
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

// ComputeReadingStats reduces all sessions and books into a snapshot.
func ComputeReadingStats(entries []model.ReadingLogEntry, books []model.BookProgress, streak Streak) model.ReadingStats {
	var stats model.ReadingStats
	for _, entry := range entries {
		stats.TotalReadingTime += entry.Duration
		stats.TotalWordsRead += entry.WordsRead
	}
	stats.TotalSessions = len(entries)
	if stats.TotalSessions > 0 {
		stats.AverageSessionLength = stats.TotalReadingTime / time.Duration(stats.TotalSessions)
	}
	stats.AverageReadingSpeed = AverageReadingSpeed(entries)
	stats.TotalBooksRead = BooksRead(books)
	stats.CurrentStreak = streak.Current
	stats.LongestStreak = streak.Longest
	return stats
}

// AverageReadingSpeed is the mean WPM over measured sessions, 0 if none.
func AverageReadingSpeed(entries []model.ReadingLogEntry) float64 {
	var sum float64
	count := 0
	for _, entry := range entries {
		if entry.WordsPerMinute <= 0 {
			continue
		}
		sum += entry.WordsPerMinute
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// BooksRead counts books with any progress.
func BooksRead(books []model.BookProgress) int {
	count := 0
	for _, book := range books {
		if book.Progress > 0 {
			count++
		}
	}
	return count
}
