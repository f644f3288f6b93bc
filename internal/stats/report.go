package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/readlog/internal/model"
)

// Report contains every series the dashboard and text report render.
type Report struct {
	GeneratedAt time.Time             `json:"generated_at" yaml:"generated_at"`
	Stats       model.ReadingStats    `json:"stats" yaml:"stats"`
	Daily       []model.ActivityPoint `json:"daily" yaml:"daily"`
	Weekly      []model.WeeklyPoint   `json:"weekly" yaml:"weekly"`
	Monthly     []model.MonthlyPoint  `json:"monthly" yaml:"monthly"`
	Hours       []model.HourBucket    `json:"hours" yaml:"hours"`
	Speed       []model.SpeedPoint    `json:"speed" yaml:"speed"`
	Challenges  model.ChallengeStats  `json:"challenges" yaml:"challenges"`
}

// BuildReport runs all fetches concurrently. Any failure fails the report;
// partial results are never returned.
func BuildReport(ctx context.Context, eng *Engine, cfg model.StatsConfig) (Report, error) {
	if eng == nil {
		return Report{}, ErrUnknown
	}
	report := Report{GeneratedAt: eng.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.Stats, err = eng.FetchOverallStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		report.Daily, err = eng.FetchDailyActivity(gctx, cfg.Days)
		return err
	})
	g.Go(func() error {
		var err error
		report.Weekly, err = eng.FetchWeeklyProgress(gctx, cfg.Weeks)
		return err
	})
	g.Go(func() error {
		var err error
		report.Monthly, err = eng.FetchMonthlyProgress(gctx, cfg.Months)
		return err
	})
	g.Go(func() error {
		var err error
		report.Hours, err = eng.FetchTimeDistribution(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		report.Speed, err = eng.FetchReadingSpeedTrend(gctx, cfg.Days)
		return err
	})
	g.Go(func() error {
		var err error
		report.Challenges, err = eng.FetchChallengeStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return report, nil
}
