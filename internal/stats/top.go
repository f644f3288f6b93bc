package stats

import (
	"sort"

	"github.com/verte-zerg/readlog/internal/model"
)

// PeakHours returns the top N hours of day by total reading time.
func PeakHours(buckets []model.HourBucket, n int) []int {
	if n <= 0 || len(buckets) == 0 {
		return nil
	}
	items := append([]model.HourBucket(nil), buckets...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Duration == items[j].Duration {
			return items[i].Hour < items[j].Hour
		}
		return items[i].Duration > items[j].Duration
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].Hour)
	}
	return out
}
