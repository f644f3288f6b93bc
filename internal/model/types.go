// Package model defines shared data structures.
package model

import "time"

// StreakPolicy controls whether a streak survives a day without reading yet.
type StreakPolicy string

const (
	// StreakStrict requires activity today for the current streak to count.
	StreakStrict StreakPolicy = "strict"
	// StreakLenient keeps a streak alive through today if yesterday was active.
	StreakLenient StreakPolicy = "lenient"
)

// StatsConfig defines options for stats fetches and output.
type StatsConfig struct {
	Policy    StreakPolicy
	WeekStart time.Weekday
	Days      int
	Weeks     int
	Months    int
}

// ReadingLogEntry is one recorded reading session.
type ReadingLogEntry struct {
	ID             int64
	Date           time.Time
	Duration       time.Duration
	WordsRead      int
	WordsPerMinute float64
	BookID         string
}

// BookProgress tracks reading progress for one book.
type BookProgress struct {
	ID           string
	Title        string
	Path         string
	Progress     float64
	LastReadDate *time.Time
	IsArchived   bool
}

// ReadingStats is an aggregate snapshot over all sessions and books.
type ReadingStats struct {
	TotalReadingTime     time.Duration `json:"total_reading_time" yaml:"total_reading_time"`
	TotalWordsRead       int           `json:"total_words_read" yaml:"total_words_read"`
	AverageReadingSpeed  float64       `json:"average_reading_speed" yaml:"average_reading_speed"`
	TotalBooksRead       int           `json:"total_books_read" yaml:"total_books_read"`
	TotalSessions        int           `json:"total_sessions" yaml:"total_sessions"`
	AverageSessionLength time.Duration `json:"average_session_length" yaml:"average_session_length"`
	CurrentStreak        int           `json:"current_streak" yaml:"current_streak"`
	LongestStreak        int           `json:"longest_streak" yaml:"longest_streak"`
	ComprehensionScore   *float64      `json:"comprehension_score,omitempty" yaml:"comprehension_score,omitempty"`
	ReadingLevel         *string       `json:"reading_level,omitempty" yaml:"reading_level,omitempty"`
}

// ActivityPoint is one day of reading activity.
type ActivityPoint struct {
	Date      time.Time     `json:"date" yaml:"date"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	WordsRead int           `json:"words_read" yaml:"words_read"`
	Sessions  int           `json:"sessions" yaml:"sessions"`
}

// PeriodPoint is one week or month of reading activity.
type PeriodPoint struct {
	Start          time.Time     `json:"start" yaml:"start"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	WordsRead      int           `json:"words_read" yaml:"words_read"`
	Sessions       int           `json:"sessions" yaml:"sessions"`
	BooksCompleted int           `json:"books_completed" yaml:"books_completed"`
}

// WeeklyPoint is a PeriodPoint keyed by start of week.
type WeeklyPoint = PeriodPoint

// MonthlyPoint is a PeriodPoint keyed by start of month.
type MonthlyPoint = PeriodPoint

// HourBucket aggregates sessions by hour of day.
type HourBucket struct {
	Hour     int           `json:"hour" yaml:"hour"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Sessions int           `json:"sessions" yaml:"sessions"`
}

// SpeedPoint is one measured session speed.
type SpeedPoint struct {
	Date           time.Time `json:"date" yaml:"date"`
	WordsPerMinute float64   `json:"wpm" yaml:"wpm"`
}

// ChallengeType groups challenges by what they measure.
type ChallengeType string

// Challenge types.
const (
	ChallengeStreak     ChallengeType = "streak"
	ChallengeWeekly     ChallengeType = "weekly"
	ChallengeReading    ChallengeType = "reading"
	ChallengeSpeed      ChallengeType = "speed"
	ChallengeEngagement ChallengeType = "engagement"
	ChallengeMonthly    ChallengeType = "monthly"
)

// ChallengeStatus is the state of a challenge.
type ChallengeStatus string

// Challenge statuses.
const (
	StatusLocked     ChallengeStatus = "locked"
	StatusInProgress ChallengeStatus = "inProgress"
	StatusCompleted  ChallengeStatus = "completed"
)

// Level is a tier from bronze to diamond.
type Level int

// Levels, lowest first.
const (
	LevelBronze Level = iota
	LevelSilver
	LevelGold
	LevelPlatinum
	LevelDiamond
)

var levelNames = []string{"bronze", "silver", "gold", "platinum", "diamond"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Challenge is a derived gamification unit.
type Challenge struct {
	Kind            string          `json:"kind" yaml:"kind"`
	Title           string          `json:"title" yaml:"title"`
	Description     string          `json:"description" yaml:"description"`
	Type            ChallengeType   `json:"type" yaml:"type"`
	Status          ChallengeStatus `json:"status" yaml:"status"`
	Level           Level           `json:"level" yaml:"level"`
	CurrentProgress int             `json:"current_progress" yaml:"current_progress"`
	TargetProgress  int             `json:"target_progress" yaml:"target_progress"`
	Points          int             `json:"points" yaml:"points"`
	CompletedDate   *time.Time      `json:"completed_date,omitempty" yaml:"completed_date,omitempty"`
}

// ChallengeStats aggregates all challenges for a user.
type ChallengeStats struct {
	CurrentStreak     int         `json:"current_streak" yaml:"current_streak"`
	LongestStreak     int         `json:"longest_streak" yaml:"longest_streak"`
	StreakStartDate   *time.Time  `json:"streak_start_date,omitempty" yaml:"streak_start_date,omitempty"`
	TotalPoints       int         `json:"total_points" yaml:"total_points"`
	CompletedCount    int         `json:"completed_count" yaml:"completed_count"`
	TotalChallenges   int         `json:"total_challenges" yaml:"total_challenges"`
	Level             Level       `json:"level" yaml:"level"`
	Challenges        []Challenge `json:"challenges" yaml:"challenges"`
	RecentCompletions []Challenge `json:"recent_completions" yaml:"recent_completions"`
	Upcoming          []Challenge `json:"upcoming" yaml:"upcoming"`
}
