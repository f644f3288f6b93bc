package stats

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

const (
	recentCompletionsLimit = 5
	upcomingLimit          = 3
)

// ChallengeInput carries everything challenge metrics are derived from.
type ChallengeInput struct {
	Entries  []model.ReadingLogEntry
	Books    []model.BookProgress
	Stats    model.ReadingStats
	Streak   Streak
	Today    time.Time
	Calendar Calendar
}

type challengeDef struct {
	kind        string
	title       string
	description string
	typ         model.ChallengeType
	target      int
	points      int
	// silver, gold, platinum, diamond
	levels      [4]int
	metric      func(in *ChallengeInput) int
	completedAt func(in *ChallengeInput, target int) *time.Time
}

var catalog = []challengeDef{
	{
		kind:        "streak",
		title:       "Reading Streak",
		description: "Read on 7 consecutive days",
		typ:         model.ChallengeStreak,
		target:      7,
		points:      50,
		levels:      [4]int{7, 14, 30, 60},
		metric:      func(in *ChallengeInput) int { return in.Streak.Current },
		completedAt: streakCompletedAt,
	},
	{
		kind:        "weekly",
		title:       "Weekly Reader",
		description: "Read on 5 days this week",
		typ:         model.ChallengeWeekly,
		target:      5,
		points:      30,
		levels:      [4]int{3, 5, 6, 7},
		metric:      func(in *ChallengeInput) int { return len(weekDays(in)) },
		completedAt: weeklyCompletedAt,
	},
	{
		kind:        "books",
		title:       "Book Completion",
		description: "Read 5 books",
		typ:         model.ChallengeReading,
		target:      5,
		points:      100,
		levels:      [4]int{5, 10, 25, 50},
		metric:      func(in *ChallengeInput) int { return in.Stats.TotalBooksRead },
		completedAt: booksCompletedAt,
	},
	{
		kind:        "speed",
		title:       "Speed Reader",
		description: "Average 250 words per minute",
		typ:         model.ChallengeSpeed,
		target:      250,
		points:      75,
		levels:      [4]int{200, 250, 350, 450},
		metric:      func(in *ChallengeInput) int { return int(math.Floor(in.Stats.AverageReadingSpeed)) },
		completedAt: speedCompletedAt,
	},
	{
		kind:        "sessions",
		title:       "Consistent Reader",
		description: "Complete 50 reading sessions",
		typ:         model.ChallengeEngagement,
		target:      50,
		points:      60,
		levels:      [4]int{25, 50, 100, 250},
		metric:      func(in *ChallengeInput) int { return in.Stats.TotalSessions },
		completedAt: func(in *ChallengeInput, target int) *time.Time {
			return crossingDate(sortedByDate(in.Entries), target, func(model.ReadingLogEntry) int { return 1 })
		},
	},
	{
		kind:        "words",
		title:       "Word Devourer",
		description: "Read 100,000 words",
		typ:         model.ChallengeReading,
		target:      100000,
		points:      80,
		levels:      [4]int{50000, 100000, 250000, 500000},
		metric:      func(in *ChallengeInput) int { return in.Stats.TotalWordsRead },
		completedAt: func(in *ChallengeInput, target int) *time.Time {
			return crossingDate(sortedByDate(in.Entries), target, func(e model.ReadingLogEntry) int { return e.WordsRead })
		},
	},
	{
		kind:        "monthly",
		title:       "Monthly Marathon",
		description: "Read 600 minutes this month",
		typ:         model.ChallengeMonthly,
		target:      600,
		points:      100,
		levels:      [4]int{300, 600, 900, 1200},
		metric: func(in *ChallengeInput) int {
			var total time.Duration
			for _, entry := range monthEntries(in) {
				total += entry.Duration
			}
			return int(total.Minutes())
		},
		completedAt: monthlyCompletedAt,
	},
}

// DeriveChallenges maps aggregates onto the fixed challenge catalog, in
// catalog order.
func DeriveChallenges(in ChallengeInput) []model.Challenge {
	out := make([]model.Challenge, 0, len(catalog))
	for _, def := range catalog {
		metric := def.metric(&in)
		ch := model.Challenge{
			Kind:            def.kind,
			Title:           def.title,
			Description:     def.description,
			Type:            def.typ,
			Status:          challengeStatus(metric, def.target),
			Level:           challengeLevel(metric, def.levels),
			CurrentProgress: clampProgress(metric, def.target),
			TargetProgress:  def.target,
			Points:          def.points,
		}
		if ch.Status == model.StatusCompleted {
			ch.CompletedDate = def.completedAt(&in, def.target)
			if ch.CompletedDate == nil {
				today := in.Calendar.Day(in.Today)
				ch.CompletedDate = &today
			}
		}
		out = append(out, ch)
	}
	return out
}

// BuildChallengeStats derives all challenges and the user-level summary.
func BuildChallengeStats(in ChallengeInput) model.ChallengeStats {
	challenges := DeriveChallenges(in)
	stats := model.ChallengeStats{
		CurrentStreak:   in.Streak.Current,
		LongestStreak:   in.Streak.Longest,
		StreakStartDate: in.Streak.Start,
		TotalChallenges: len(challenges),
		Challenges:      challenges,
	}
	completed := make([]model.Challenge, 0, len(challenges))
	upcoming := make([]model.Challenge, 0, upcomingLimit)
	for _, ch := range challenges {
		switch ch.Status {
		case model.StatusCompleted:
			stats.TotalPoints += ch.Points
			completed = append(completed, ch)
		case model.StatusLocked:
			if len(upcoming) < upcomingLimit {
				upcoming = append(upcoming, ch)
			}
		}
	}
	stats.CompletedCount = len(completed)
	stats.Level = UserLevel(stats.TotalPoints)

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedDate.After(*completed[j].CompletedDate)
	})
	if len(completed) > recentCompletionsLimit {
		completed = completed[:recentCompletionsLimit]
	}
	stats.RecentCompletions = completed
	stats.Upcoming = upcoming
	return stats
}

// UserLevel maps total points to a tier.
func UserLevel(points int) model.Level {
	switch {
	case points < 100:
		return model.LevelBronze
	case points < 250:
		return model.LevelSilver
	case points < 500:
		return model.LevelGold
	case points < 1000:
		return model.LevelPlatinum
	default:
		return model.LevelDiamond
	}
}

func challengeStatus(metric, target int) model.ChallengeStatus {
	switch {
	case metric <= 0:
		return model.StatusLocked
	case metric < target:
		return model.StatusInProgress
	default:
		return model.StatusCompleted
	}
}

func challengeLevel(metric int, thresholds [4]int) model.Level {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if metric >= thresholds[i] {
			return model.Level(i + 1)
		}
	}
	return model.LevelBronze
}

func clampProgress(metric, target int) int {
	if metric < 0 {
		return 0
	}
	if metric > target {
		return target
	}
	return metric
}

func streakCompletedAt(in *ChallengeInput, target int) *time.Time {
	if in.Streak.Start == nil {
		return nil
	}
	day := in.Calendar.AddDays(*in.Streak.Start, target-1)
	return &day
}

// weekDays returns active days from the start of the current week to today.
func weekDays(in *ChallengeInput) []time.Time {
	start := in.Calendar.WeekOf(in.Today)
	end := in.Calendar.AddDays(in.Calendar.Day(in.Today), 1)
	var out []time.Time
	for _, day := range ActiveDays(in.Entries, in.Calendar) {
		if day.Before(start) || !day.Before(end) {
			continue
		}
		out = append(out, day)
	}
	return out
}

func weeklyCompletedAt(in *ChallengeInput, target int) *time.Time {
	days := weekDays(in)
	if len(days) < target {
		return nil
	}
	return &days[target-1]
}

func booksCompletedAt(in *ChallengeInput, target int) *time.Time {
	var dates []time.Time
	for _, book := range in.Books {
		if book.Progress > 0 && book.LastReadDate != nil {
			dates = append(dates, *book.LastReadDate)
		}
	}
	if len(dates) < target {
		return nil
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return &dates[target-1]
}

func speedCompletedAt(in *ChallengeInput, _ int) *time.Time {
	var latest *time.Time
	for _, entry := range in.Entries {
		if entry.WordsPerMinute <= 0 {
			continue
		}
		if latest == nil || entry.Date.After(*latest) {
			date := entry.Date
			latest = &date
		}
	}
	return latest
}

func monthEntries(in *ChallengeInput) []model.ReadingLogEntry {
	start := in.Calendar.MonthOf(in.Today)
	end := in.Calendar.AddDays(in.Calendar.Day(in.Today), 1)
	var out []model.ReadingLogEntry
	for _, entry := range in.Entries {
		if entry.Date.Before(start) || !entry.Date.Before(end) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func monthlyCompletedAt(in *ChallengeInput, target int) *time.Time {
	entries := sortedByDate(monthEntries(in))
	var total time.Duration
	for _, entry := range entries {
		total += entry.Duration
		if int(total.Minutes()) >= target {
			date := entry.Date
			return &date
		}
	}
	return nil
}

// crossingDate returns the date of the entry at which the running sum of
// value first reaches target.
func crossingDate(entries []model.ReadingLogEntry, target int, value func(model.ReadingLogEntry) int) *time.Time {
	sum := 0
	for _, entry := range entries {
		sum += value(entry)
		if sum >= target {
			date := entry.Date
			return &date
		}
	}
	return nil
}

func sortedByDate(entries []model.ReadingLogEntry) []model.ReadingLogEntry {
	out := append([]model.ReadingLogEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
