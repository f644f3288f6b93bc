package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/readlog/internal/model"
)

// Source is the read side of the reading log and book stores.
type Source interface {
	ListLogs(ctx context.Context) ([]model.ReadingLogEntry, error)
	ListLogsBetween(ctx context.Context, start, end time.Time) ([]model.ReadingLogEntry, error)
	ListActiveBooks(ctx context.Context) ([]model.BookProgress, error)
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Policy    model.StreakPolicy
	WeekStart time.Weekday
	Location  *time.Location
	Now       func() time.Time
}

// Engine derives stats, activity series and challenges from a Source.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	src    Source
	policy model.StreakPolicy
	cal    Calendar
	now    func() time.Time
	log    *zap.SugaredLogger
}

// NewEngine builds an Engine over src. A nil logger disables logging.
func NewEngine(src Source, opts Options, log *zap.SugaredLogger) *Engine {
	if opts.Policy == "" {
		opts.Policy = model.StreakStrict
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		src:    src,
		policy: opts.Policy,
		cal:    Calendar{Location: opts.Location, WeekStart: opts.WeekStart},
		now:    opts.Now,
		log:    log,
	}
}

// Calendar returns the calendar the engine buckets by.
func (e *Engine) Calendar() Calendar {
	return e.cal
}

// FetchOverallStats returns the all-time ReadingStats snapshot.
func (e *Engine) FetchOverallStats(ctx context.Context) (model.ReadingStats, error) {
	entries, books, err := e.loadAll(ctx, "overall stats")
	if err != nil {
		return model.ReadingStats{}, err
	}
	streak := CalculateStreak(entries, e.now(), e.cal, e.policy)
	return ComputeReadingStats(entries, books, streak), nil
}

// FetchDailyActivity returns the last n days, zero-filled.
func (e *Engine) FetchDailyActivity(ctx context.Context, n int) ([]model.ActivityPoint, error) {
	today := e.now()
	if n <= 0 {
		return []model.ActivityPoint{}, nil
	}
	start := e.cal.AddDays(e.cal.Day(today), -(n - 1))
	entries, err := e.loadBetween(ctx, "daily activity", start, e.cal.AddDays(e.cal.Day(today), 1))
	if err != nil {
		return nil, err
	}
	return DailyActivity(entries, n, today, e.cal), nil
}

// FetchWeeklyProgress returns the last n weeks, zero-filled.
func (e *Engine) FetchWeeklyProgress(ctx context.Context, n int) ([]model.WeeklyPoint, error) {
	today := e.now()
	if n <= 0 {
		return []model.WeeklyPoint{}, nil
	}
	start := e.cal.AddDays(e.cal.WeekOf(today), -7*(n-1))
	entries, books, err := e.loadWindow(ctx, "weekly progress", start, today)
	if err != nil {
		return nil, err
	}
	return WeeklyProgress(entries, books, n, today, e.cal), nil
}

// FetchMonthlyProgress returns the last n months, zero-filled.
func (e *Engine) FetchMonthlyProgress(ctx context.Context, n int) ([]model.MonthlyPoint, error) {
	today := e.now()
	if n <= 0 {
		return []model.MonthlyPoint{}, nil
	}
	start := e.cal.AddMonths(e.cal.MonthOf(today), -(n - 1))
	entries, books, err := e.loadWindow(ctx, "monthly progress", start, today)
	if err != nil {
		return nil, err
	}
	return MonthlyProgress(entries, books, n, today, e.cal), nil
}

// FetchTimeDistribution returns sparse hour-of-day buckets over all sessions.
func (e *Engine) FetchTimeDistribution(ctx context.Context) ([]model.HourBucket, error) {
	entries, err := e.loadLogs(ctx, "time distribution")
	if err != nil {
		return nil, err
	}
	return TimeDistribution(entries, e.cal), nil
}

// FetchReadingSpeedTrend returns measured session speeds over the last n
// days, or all time when n <= 0.
func (e *Engine) FetchReadingSpeedTrend(ctx context.Context, n int) ([]model.SpeedPoint, error) {
	today := e.now()
	var (
		entries []model.ReadingLogEntry
		err     error
	)
	if n > 0 {
		start := e.cal.AddDays(e.cal.Day(today), -(n - 1))
		entries, err = e.loadBetween(ctx, "speed trend", start, e.cal.AddDays(e.cal.Day(today), 1))
	} else {
		entries, err = e.loadLogs(ctx, "speed trend")
	}
	if err != nil {
		return nil, err
	}
	return SpeedTrend(entries, n, today, e.cal), nil
}

// FetchChallengeStats derives the challenge catalog and user level.
func (e *Engine) FetchChallengeStats(ctx context.Context) (model.ChallengeStats, error) {
	entries, books, err := e.loadAll(ctx, "challenge stats")
	if err != nil {
		return model.ChallengeStats{}, err
	}
	today := e.now()
	streak := CalculateStreak(entries, today, e.cal, e.policy)
	return BuildChallengeStats(ChallengeInput{
		Entries:  entries,
		Books:    books,
		Stats:    ComputeReadingStats(entries, books, streak),
		Streak:   streak,
		Today:    today,
		Calendar: e.cal,
	}), nil
}

func (e *Engine) loadAll(ctx context.Context, op string) ([]model.ReadingLogEntry, []model.BookProgress, error) {
	entries, err := e.loadLogs(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	books, err := e.loadBooks(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	return entries, books, nil
}

func (e *Engine) loadWindow(ctx context.Context, op string, start, today time.Time) ([]model.ReadingLogEntry, []model.BookProgress, error) {
	entries, err := e.loadBetween(ctx, op, start, e.cal.AddDays(e.cal.Day(today), 1))
	if err != nil {
		return nil, nil, err
	}
	books, err := e.loadBooks(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	return entries, books, nil
}

func (e *Engine) loadLogs(ctx context.Context, op string) ([]model.ReadingLogEntry, error) {
	if err := e.ready(ctx, op); err != nil {
		return nil, err
	}
	entries, err := e.src.ListLogs(ctx)
	if err != nil {
		return nil, e.fail(op, newStoreError(op, err))
	}
	return entries, nil
}

func (e *Engine) loadBetween(ctx context.Context, op string, start, end time.Time) ([]model.ReadingLogEntry, error) {
	if err := e.ready(ctx, op); err != nil {
		return nil, err
	}
	entries, err := e.src.ListLogsBetween(ctx, start, end)
	if err != nil {
		return nil, e.fail(op, newStoreError(op, err))
	}
	return entries, nil
}

func (e *Engine) loadBooks(ctx context.Context, op string) ([]model.BookProgress, error) {
	if err := e.ready(ctx, op); err != nil {
		return nil, err
	}
	books, err := e.src.ListActiveBooks(ctx)
	if err != nil {
		return nil, e.fail(op, newStoreError(op, err))
	}
	return books, nil
}

func (e *Engine) ready(ctx context.Context, op string) error {
	if e == nil || e.src == nil {
		return ErrUnknown
	}
	if err := ctx.Err(); err != nil {
		return e.fail(op, fmt.Errorf("%w: %w", ErrUnknown, err))
	}
	return nil
}

func (e *Engine) fail(op string, err error) error {
	e.log.Warnw("analytics fetch failed", "op", op, "error", err)
	return err
}
