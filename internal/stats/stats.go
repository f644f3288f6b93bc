// Package stats derives reading statistics, activity series and challenges,
// and renders them as text.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionWPM computes words per minute for a session, 0 when unmeasurable.
func SessionWPM(words int, duration time.Duration) float64 {
	if words <= 0 || duration <= 0 {
		return 0
	}
	minutes := duration.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(words) / minutes
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatDuration renders a duration as hours and minutes.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

// RenderSummary prints the overall stats block.
func RenderSummary(w io.Writer, stats model.ReadingStats) error {
	if stats.TotalSessions == 0 {
		_, err := fmt.Fprintln(w, "No reading sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", stats.TotalSessions),
		fmt.Sprintf("Reading time: %s", FormatDuration(stats.TotalReadingTime)),
		fmt.Sprintf("Avg session: %s", FormatDuration(stats.AverageSessionLength)),
		fmt.Sprintf("Words read: %d", stats.TotalWordsRead),
		fmt.Sprintf("Avg speed: %.1f WPM", stats.AverageReadingSpeed),
		fmt.Sprintf("Books read: %d", stats.TotalBooksRead),
		fmt.Sprintf("Streak: %d days (longest %d)", stats.CurrentStreak, stats.LongestStreak),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderActivity plots daily minutes and words.
func RenderActivity(w io.Writer, daily []model.ActivityPoint, totalWidth, height int, useColor bool) error {
	if len(daily) == 0 {
		return nil
	}
	minutes := make([]float64, len(daily))
	words := make([]float64, len(daily))
	for i, p := range daily {
		minutes[i] = p.Duration.Minutes()
		words[i] = float64(p.WordsRead)
	}
	title := fmt.Sprintf("Daily Activity (%s to %s)", daily[0].Date.Format("Jan 2"), daily[len(daily)-1].Date.Format("Jan 2"))
	return PlotSeriesWithColor(w, title, []Series{
		{Name: "Minutes", Values: minutes, Unit: UnitMinutes},
		{Name: "Words", Values: words},
	}, plotWidth(totalWidth), height, useColor)
}

// RenderSpeedTrend plots measured WPM with a moving average.
func RenderSpeedTrend(w io.Writer, points []model.SpeedPoint, window, totalWidth, height int, useColor bool) error {
	if len(points) == 0 {
		return nil
	}
	wpms := make([]float64, len(points))
	for i, p := range points {
		wpms[i] = p.WordsPerMinute
	}
	return PlotSeriesWithColor(w, "Reading Speed", []Series{
		{Name: "WPM", Values: wpms, Unit: UnitWPM},
		{Name: "Average", Values: MovingAverage(wpms, window), Unit: UnitWPM},
	}, plotWidth(totalWidth), height, useColor)
}

// RenderPeriods prints weekly or monthly rollups as a table with sparklines.
func RenderPeriods(w io.Writer, title, layout string, points []model.PeriodPoint) error {
	if len(points) == 0 {
		return nil
	}
	minutes := make([]float64, len(points))
	headers := []string{"Period", "Time", "Words", "Sessions", "Books"}
	rows := make([][]string, 0, len(points))
	for i, p := range points {
		minutes[i] = p.Duration.Minutes()
		rows = append(rows, []string{
			p.Start.Format(layout),
			FormatDuration(p.Duration),
			fmt.Sprintf("%d", p.WordsRead),
			fmt.Sprintf("%d", p.Sessions),
			fmt.Sprintf("%d", p.BooksCompleted),
		})
	}
	if _, err := fmt.Fprintf(w, "%s  [%s]\n", title, Sparkline(minutes)); err != nil {
		return err
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}))
}

// RenderHours prints the time-of-day distribution.
func RenderHours(w io.Writer, buckets []model.HourBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Time of Day"); err != nil {
		return err
	}
	var longest time.Duration
	for _, b := range buckets {
		if b.Duration > longest {
			longest = b.Duration
		}
	}
	headers := []string{"Hour", "Time", "Sessions", ""}
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		bar := 0
		if longest > 0 {
			bar = int(math.Round(float64(b.Duration) / float64(longest) * 20))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%02d:00", b.Hour),
			FormatDuration(b.Duration),
			fmt.Sprintf("%d", b.Sessions),
			strings.Repeat("#", bar),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 2: true}))
}

// RenderChallenges prints the challenge catalog with status and level.
func RenderChallenges(w io.Writer, cs model.ChallengeStats) error {
	if _, err := fmt.Fprintf(w, "Challenges  level=%s  points=%d  completed=%d/%d\n",
		cs.Level, cs.TotalPoints, cs.CompletedCount, cs.TotalChallenges); err != nil {
		return err
	}
	headers := []string{"Challenge", "Status", "Level", "Progress", "Points"}
	rows := make([][]string, 0, len(cs.Challenges))
	for _, ch := range cs.Challenges {
		rows = append(rows, []string{
			ch.Title,
			string(ch.Status),
			ch.Level.String(),
			fmt.Sprintf("%d/%d", ch.CurrentProgress, ch.TargetProgress),
			fmt.Sprintf("%d", ch.Points),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{3: true, 4: true}))
}

// RenderBooks prints books with their progress and last read date.
func RenderBooks(w io.Writer, books []model.BookProgress) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return err
	}
	headers := []string{"Title", "Progress", "Last read", "Path"}
	rows := make([][]string, 0, len(books))
	for _, book := range books {
		lastRead := "never"
		if book.LastReadDate != nil {
			lastRead = book.LastReadDate.Local().Format("2006-01-02")
		}
		title := book.Title
		if book.IsArchived {
			title += " (archived)"
		}
		rows = append(rows, []string{
			title,
			fmt.Sprintf("%.0f%%", book.Progress*100),
			lastRead,
			book.Path,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{1: true}))
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, report Report, totalWidth, height int, useColor bool) error {
	if err := RenderSummary(w, report.Stats); err != nil {
		return err
	}
	if report.Stats.TotalSessions == 0 {
		return RenderChallenges(w, report.Challenges)
	}
	if err := RenderActivity(w, report.Daily, totalWidth, height, useColor); err != nil {
		return err
	}
	if err := RenderSpeedTrend(w, report.Speed, 5, totalWidth, height, useColor); err != nil {
		return err
	}
	if err := RenderPeriods(w, "Weekly", "2006-01-02", report.Weekly); err != nil {
		return err
	}
	if err := RenderPeriods(w, "Monthly", "2006-01", report.Monthly); err != nil {
		return err
	}
	if err := RenderHours(w, report.Hours); err != nil {
		return err
	}
	return RenderChallenges(w, report.Challenges)
}

func plotWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return 0
	}
	return PlotWidthFor(totalWidth)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
