package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

func TestPeakHours(t *testing.T) {
	buckets := []model.HourBucket{
		{Hour: 7, Duration: 20 * time.Minute, Sessions: 1},
		{Hour: 21, Duration: 45 * time.Minute, Sessions: 2},
		{Hour: 9, Duration: 20 * time.Minute, Sessions: 3},
	}
	top := PeakHours(buckets, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 hours, got %d", len(top))
	}
	if top[0] != 21 || top[1] != 7 {
		t.Fatalf("unexpected order: %v", top)
	}
	if PeakHours(nil, 3) != nil {
		t.Fatalf("expected nil for empty buckets")
	}
}
